package nsgif

// interlacePass describes one of the four passes an interlaced GIF frame
// is rendered in: start row and row stride within the frame.
type interlacePass struct{ start, stride uint32 }

var interlacePasses = [4]interlacePass{
	{0, 8}, {4, 8}, {2, 4}, {1, 2},
}

// interlacedRowOrder returns, for a frame of the given height, the
// canvas-relative row each successively-decoded LZW row belongs to. Index
// j of the result is where the j-th row pulled off the bitstream lands.
func interlacedRowOrder(height uint32) []uint32 {
	order := make([]uint32, 0, height)
	for _, pass := range interlacePasses {
		for r := pass.start; r < height; r += pass.stride {
			order = append(order, r)
		}
	}
	return order
}

// compositor owns the canvas bitmap and the previous-frame snapshot used
// to implement RestorePrevious disposal. It is created once per Decoder
// and outlives individual frame decodes.
type compositor struct {
	cap    *Bitmap
	handle any

	canvasW, canvasH uint32

	snapshot      []uint32
	snapshotW     uint32
	snapshotH     uint32
	snapshotFrame int // -1 when no snapshot has been captured

	materialised int // index of the frame currently on the canvas, -1 if none
}

func newCompositor(cap *Bitmap) *compositor {
	return &compositor{cap: cap, snapshotFrame: -1, materialised: -1}
}

func (co *compositor) destroy() {
	if co.handle != nil {
		co.cap.destroy(co.handle)
		co.handle = nil
	}
}

// ensureCanvas (re)allocates the bitmap to cover w x h, preserving existing
// content at the top-left when growing, matching the canvas-growth rule
// tolerated for compatibility with frames beyond the first.
func (co *compositor) ensureCanvas(w, h uint32) Result {
	if co.handle != nil && w == co.canvasW && h == co.canvasH {
		return OK
	}
	newHandle, res := co.cap.create(w, h)
	if res != OK {
		return res
	}
	newBuf := co.cap.buffer(newHandle)
	if co.handle != nil {
		oldBuf := co.cap.buffer(co.handle)
		copyRect := minu(co.canvasW, w)
		copyRows := minu(co.canvasH, h)
		for y := uint32(0); y < copyRows; y++ {
			srcOff := y * co.canvasW
			dstOff := y * w
			copy(newBuf[dstOff:dstOff+copyRect], oldBuf[srcOff:srcOff+copyRect])
		}
		co.cap.destroy(co.handle)
	}
	co.handle = newHandle
	co.canvasW, co.canvasH = w, h
	return OK
}

func (co *compositor) buffer() []uint32 { return co.cap.buffer(co.handle) }

// prepareCanvas implements the pre-compose step (§4.4 step 1): it fills or
// restores canvas pixels ahead of decoding frame i, based on frame i-1's
// disposal.
func (co *compositor) prepareCanvas(frames *frameIndex, i int, bgColour uint32) {
	buf := co.buffer()
	if i == 0 || co.materialised < 0 {
		fillAll(buf, 0)
		return
	}
	prev := frames.at(i - 1)
	if prev == nil {
		fillAll(buf, 0)
		return
	}
	switch prev.Disposal {
	case DisposalUnspecified, DisposalNone:
		// Leave the canvas as-is.
	case DisposalRestoreBackground:
		co.restoreBackgroundRect(prev, bgColour)
	case DisposalRestorePrevious:
		if co.snapshotFrame >= 0 {
			co.restoreSnapshot()
		} else {
			co.restoreBackgroundRect(prev, bgColour)
		}
	}
}

func (co *compositor) restoreBackgroundRect(prev *Frame, bgColour uint32) {
	fill := bgColour
	if prev.Transparency {
		fill = 0
	}
	rect := clipRect(prev.Redraw, co.canvasW, co.canvasH)
	buf := co.buffer()
	for y := rect.Y0; y < rect.Y1; y++ {
		rowOff := y * co.canvasW
		for x := rect.X0; x < rect.X1; x++ {
			buf[rowOff+x] = fill
		}
	}
}

func (co *compositor) restoreSnapshot() {
	buf := co.buffer()
	rows := minu(co.snapshotH, co.canvasH)
	cols := minu(co.snapshotW, co.canvasW)
	for y := uint32(0); y < rows; y++ {
		srcOff := y * co.snapshotW
		dstOff := y * co.canvasW
		copy(buf[dstOff:dstOff+cols], co.snapshot[srcOff:srcOff+cols])
	}
}

// captureSnapshot implements step 2: snapshotting the canvas ahead of
// decoding a frame that itself declares RestorePrevious disposal, so a
// later frame can restore to this exact composite.
func (co *compositor) captureSnapshot(frameIdx int) {
	need := int(co.canvasW) * int(co.canvasH)
	if len(co.snapshot) < need {
		co.snapshot = make([]uint32, need)
	}
	copy(co.snapshot[:need], co.buffer()[:need])
	co.snapshotW, co.snapshotH = co.canvasW, co.canvasH
	co.snapshotFrame = frameIdx
}

// decodeFrame implements step 3: materialising frame i's pixels onto the
// canvas, choosing the fast or general path per §4.4 step 3.
func (co *compositor) decodeFrame(frame *Frame, lzw *lzwContext, palette *colourTable) Result {
	rect := frame.Redraw
	clipped := clipRect(rect, co.canvasW, co.canvasH)
	if clipped.Width() == 0 || clipped.Height() == 0 {
		return drainFrame(lzw)
	}

	simple := !frame.Flags.interlaced() && rect.X0 == 0 && rect.Width() == co.canvasW
	if simple {
		return co.decodeFastPath(frame, lzw, palette, clipped)
	}
	return co.decodeGeneralPath(frame, lzw, palette, clipped)
}

func (co *compositor) decodeFastPath(frame *Frame, lzw *lzwContext, palette *colourTable, clipped Rect) Result {
	buf := co.buffer()
	start := clipped.Y0 * co.canvasW
	count := clipped.Width() * clipped.Height()
	dst := buf[start : start+count]
	_, res := lzw.mapInto(dst, (*[256]uint32)(palette), frame.TransparencyIndex)
	if res == EndOfFrame {
		return OK
	}
	return res
}

func (co *compositor) decodeGeneralPath(frame *Frame, lzw *lzwContext, palette *colourTable, clipped Rect) Result {
	rect := frame.Redraw
	rowOrder := sequentialRowOrder(rect.Height())
	if frame.Flags.interlaced() {
		rowOrder = interlacedRowOrder(rect.Height())
	}

	buf := co.buffer()
	row := make([]uint8, rect.Width())
	for j := uint32(0); j < rect.Height(); j++ {
		_, res := lzw.readIndices(row)
		if res == EndOfFrame {
			return OK
		}
		if res != OK {
			return res
		}
		canvasY := rect.Y0 + rowOrder[j]
		if canvasY < clipped.Y0 || canvasY >= clipped.Y1 {
			continue
		}
		rowOff := canvasY * co.canvasW
		for x := uint32(0); x < clipped.Width(); x++ {
			idx := row[x]
			if uint32(idx) == frame.TransparencyIndex {
				continue
			}
			buf[rowOff+clipped.X0+x] = palette[idx]
		}
	}
	return OK
}

// drainFrame advances the LZW stream to end-of-frame without writing any
// pixels, used when a frame's clipped rectangle is empty but its data
// must still be consumed.
func drainFrame(lzw *lzwContext) Result {
	for {
		_, res := lzw.nextChunk()
		if res == EndOfFrame {
			return OK
		}
		if res != OK {
			return res
		}
	}
}

// postDecode implements step 4: invoking the modified hook and, on a
// frame's first decode, latching its opacity.
func (co *compositor) postDecode(frame *Frame, frameIdx int) {
	co.materialised = frameIdx
	if !frame.Decoded {
		if opaque, ok := co.cap.testOpaque(co.handle); ok {
			frame.Opaque = opaque
		}
		co.cap.setOpaque(co.handle, frame.Opaque)
		frame.Decoded = true
	}
	co.cap.modified(co.handle)
}

func clipRect(r Rect, canvasW, canvasH uint32) Rect {
	out := r
	if out.X1 > canvasW {
		out.X1 = canvasW
	}
	if out.Y1 > canvasH {
		out.Y1 = canvasH
	}
	if out.X0 > out.X1 {
		out.X0 = out.X1
	}
	if out.Y0 > out.Y1 {
		out.Y0 = out.Y1
	}
	return out
}

func sequentialRowOrder(height uint32) []uint32 {
	order := make([]uint32, height)
	for i := range order {
		order[i] = uint32(i)
	}
	return order
}

func fillAll(buf []uint32, v uint32) {
	for i := range buf {
		buf[i] = v
	}
}

func minu(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
