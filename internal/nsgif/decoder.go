package nsgif

// frameNone is the sentinel decoder-level "no frame currently prepared or
// materialised" value.
const frameNone = -1

// Info summarises a stream's header-level and survey-derived state, as
// returned by GetInfo.
type Info struct {
	Width, Height uint32
	FrameCount    int
	LoopMax       int
	LoopCount     int
	DelayMin      uint32
}

// DecoderOptions configures a Decoder at construction.
type DecoderOptions struct {
	Bitmap Bitmap
}

// Decoder is the top-level orchestration object: one per GIF stream. It
// owns the container parser, the compositor, and the loop/frame cursor
// state driving FramePrepare.
type Decoder struct {
	ctx  *Context
	comp *compositor

	nextFrame int // index FramePrepare will return next
	loopCount int
}

// NewDecoder zero-initialises a decoder bound to the given bitmap
// capability. No allocation happens beyond the object itself; the canvas
// bitmap is created lazily at first decode.
func NewDecoder(opts DecoderOptions) *Decoder {
	return &Decoder{
		ctx:       NewContext(),
		comp:      newCompositor(&opts.Bitmap),
		nextFrame: 0,
		loopCount: 0,
	}
}

// DataScan registers the latest (possibly grown) source window and drives
// the container parser's survey pass as far as it will go.
func (d *Decoder) DataScan(data []byte) Result {
	d.ctx.SetWindow(data)
	return d.ctx.Survey()
}

// FramePrepare returns the next frame to display given current loop
// state, the redraw rectangle it should be composited into, and its
// delay. It advances the decoder's internal cursor and increments the
// loop counter on wraparound.
func (d *Decoder) FramePrepare() (rect Rect, delayCS uint32, frameIdx int, res Result) {
	count := d.ctx.FrameCount()
	if count == 0 {
		return Rect{}, 0, frameNone, FrameNoDisplay
	}

	idx := d.nextFrame
	if idx >= count {
		idx = 0
		d.loopCount++
		if d.ctx.loopMax > 0 && d.loopCount >= d.ctx.loopMax {
			return Rect{}, 0, frameNone, AnimationComplete
		}
	}

	frame := d.ctx.Frame(idx)
	out := frame.Redraw
	if frame.RedrawRequired && idx > 0 {
		if prev := d.ctx.Frame(idx - 1); prev != nil {
			out = out.union(prev.Redraw)
		}
	}

	d.nextFrame = idx + 1
	return out, frame.DelayCS, idx, OK
}

// FrameDecode materialises frame index's pixels onto the canvas and
// returns the embedder's bitmap handle. Any already-surveyed index is
// accepted, not only the one last returned by FramePrepare.
func (d *Decoder) FrameDecode(index int) (any, Result) {
	frame := d.ctx.Frame(index)
	if frame == nil {
		return nil, FrameInvalid
	}
	if !frame.Displayable {
		return nil, FrameNoDisplay
	}

	if res := d.comp.ensureCanvas(d.ctx.Width(), d.ctx.Height()); res != OK {
		return nil, res
	}

	d.comp.prepareCanvas(&d.ctx.frames, index, d.ctx.bgColour)
	if frame.Disposal == DisposalRestorePrevious {
		d.comp.captureSnapshot(index)
	}

	palette, minCodeSize := d.ctx.paletteFor(index)
	lzw, res := newLZWContext(d.ctx.src, frame.lzwPointer+1, minCodeSize)
	if res != OK {
		return nil, res
	}

	if res := d.comp.decodeFrame(frame, lzw, palette); res != OK {
		return nil, res
	}
	d.comp.postDecode(frame, index)
	return d.comp.handle, OK
}

// Reset zeroes the loop counter and clears the decoder's "currently
// materialised frame" latch, without discarding any per-frame decoded
// history, so a Reset followed by a full replay reproduces identical
// per-frame bitmaps.
func (d *Decoder) Reset() {
	d.nextFrame = 0
	d.loopCount = 0
	d.comp.materialised = frameNone
}

// GetInfo reports the stream's header and survey-derived summary.
func (d *Decoder) GetInfo() Info {
	return Info{
		Width:      d.ctx.Width(),
		Height:     d.ctx.Height(),
		FrameCount: d.ctx.FrameCount(),
		LoopMax:    d.ctx.loopMax,
		LoopCount:  d.loopCount,
		DelayMin:   d.delayMin(),
	}
}

func (d *Decoder) delayMin() uint32 {
	var min uint32
	for i := 0; i < d.ctx.FrameCount(); i++ {
		f := d.ctx.Frame(i)
		if f == nil || f.DelayCS == 0 {
			continue
		}
		if min == 0 || f.DelayCS < min {
			min = f.DelayCS
		}
	}
	return min
}

// Destroy releases the canvas bitmap via the capability table. The frame
// index, colour tables, snapshot and LZW context are ordinary Go values
// owned by d and collected once d is no longer referenced.
func (d *Decoder) Destroy() {
	d.comp.destroy()
}
