// Package nsgif decodes progressive animated GIF streams into 32-bit
// RGBA frames. Pixel storage is supplied by the caller through Bitmap so
// decoded data lives in memory the caller owns.
package nsgif

import (
	"errors"

	"github.com/rphrbx/nsgif/internal/nsgif"
)

// Result mirrors the internal decoder's closed error-kind catalogue.
type Result int

const (
	OK                    Result = Result(nsgif.OK)
	Working               Result = Result(nsgif.Working)
	InsufficientData      Result = Result(nsgif.InsufficientData)
	InsufficientFrameData Result = Result(nsgif.InsufficientFrameData)
	FrameDataError        Result = Result(nsgif.FrameDataError)
	DataError             Result = Result(nsgif.DataError)
	InsufficientMemory    Result = Result(nsgif.InsufficientMemory)
	FrameNoDisplay        Result = Result(nsgif.FrameNoDisplay)
	EndOfFrame            Result = Result(nsgif.EndOfFrame)
	FrameInvalid          Result = Result(nsgif.FrameInvalid)
	AnimationComplete     Result = Result(nsgif.AnimationComplete)
)

func (r Result) String() string { return nsgif.Result(r).String() }
func (r Result) Error() string  { return nsgif.Result(r).String() }

// IsError reports whether r represents anything other than a successful
// or in-progress outcome.
func (r Result) IsError() bool { return nsgif.Result(r).IsError() }

// Rect is a canvas-space redraw rectangle with exclusive bottom-right
// coordinates.
type Rect struct {
	X0, Y0, X1, Y1 uint32
}

func (r Rect) Width() uint32  { return r.X1 - r.X0 }
func (r Rect) Height() uint32 { return r.Y1 - r.Y0 }

func toRect(r nsgif.Rect) Rect {
	return Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}
}

// Info summarises a stream's dimensions and loop accounting.
type Info struct {
	Width, Height uint32
	FrameCount    int
	LoopMax       int
	LoopCount     int
	DelayMin      uint32
}

// Bitmap is the capability record an embedder supplies so decoded pixels
// live in memory it owns. Create, Destroy and GetBuffer are required;
// the rest are optional advisory hooks and may be left nil.
type Bitmap struct {
	Create     func(w, h uint32) any
	Destroy    func(handle any)
	GetBuffer  func(handle any) []uint32
	SetOpaque  func(handle any, opaque bool)
	TestOpaque func(handle any) bool
	Modified   func(handle any)
}

func (b Bitmap) toInternal() nsgif.Bitmap {
	return nsgif.Bitmap{
		Create:     b.Create,
		Destroy:    b.Destroy,
		GetBuffer:  b.GetBuffer,
		SetOpaque:  b.SetOpaque,
		TestOpaque: b.TestOpaque,
		Modified:   b.Modified,
	}
}

// Options configures a Decoder at construction.
type Options struct {
	// Bitmap supplies the pixel storage callbacks. Create, Destroy and
	// GetBuffer must be non-nil.
	Bitmap Bitmap
}

// Decoder decodes one animated GIF stream. Create one per stream; it is
// not safe for concurrent use by multiple goroutines.
type Decoder struct {
	decoder *nsgif.Decoder
}

// New constructs a Decoder bound to the supplied bitmap capability.
func New(opts Options) (*Decoder, error) {
	if opts.Bitmap.Create == nil || opts.Bitmap.Destroy == nil || opts.Bitmap.GetBuffer == nil {
		return nil, errors.New("nsgif: Create, Destroy and GetBuffer are required")
	}
	return &Decoder{
		decoder: nsgif.NewDecoder(nsgif.DecoderOptions{Bitmap: opts.Bitmap.toInternal()}),
	}, nil
}

// DataScan registers the latest, possibly-grown source window. Bytes
// 0..old_size must be unchanged from any previous call. It is safe to
// call repeatedly as more bytes of the stream arrive.
func (d *Decoder) DataScan(data []byte) Result {
	return Result(d.decoder.DataScan(data))
}

// FramePrepare returns the next frame to display, its redraw rectangle,
// and its delay in centiseconds, advancing loop state.
func (d *Decoder) FramePrepare() (rect Rect, delayCS uint32, frameIndex int, res Result) {
	r, delay, idx, internalRes := d.decoder.FramePrepare()
	return toRect(r), delay, idx, Result(internalRes)
}

// FrameDecode materialises the pixels of the frame at index and returns
// the embedder's bitmap handle for the composited canvas.
func (d *Decoder) FrameDecode(index int) (any, Result) {
	handle, res := d.decoder.FrameDecode(index)
	return handle, Result(res)
}

// Reset rewinds loop accounting to the start of the animation.
func (d *Decoder) Reset() { d.decoder.Reset() }

// GetInfo reports the stream's current dimensions and loop accounting.
func (d *Decoder) GetInfo() Info {
	info := d.decoder.GetInfo()
	return Info{
		Width:      info.Width,
		Height:     info.Height,
		FrameCount: info.FrameCount,
		LoopMax:    info.LoopMax,
		LoopCount:  info.LoopCount,
		DelayMin:   info.DelayMin,
	}
}

// Destroy releases the canvas bitmap via the capability table.
func (d *Decoder) Destroy() { d.decoder.Destroy() }
