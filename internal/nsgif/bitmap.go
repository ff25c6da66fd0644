package nsgif

// Bitmap is the capability record an embedder supplies so decoded pixels
// live in memory it owns. Create, Destroy and GetBuffer are required;
// the remaining slots are advisory hooks and may be left nil. This is
// deliberately a record of function values rather than an interface: an
// embedder wires only the operations it cares about, and the decoder
// never needs to know the concrete handle type.
type Bitmap struct {
	// Create allocates an opaque bitmap of w*h 32-bit RGBA pixels. A nil
	// return is treated as out-of-memory.
	Create func(w, h uint32) any

	// Destroy frees a bitmap previously returned by Create.
	Destroy func(handle any)

	// GetBuffer returns the mutable pixel storage backing handle, laid
	// out as w*h uint32s in row-major order. The slice must stay valid
	// for the handle's lifetime.
	GetBuffer func(handle any) []uint32

	// SetOpaque advises the embedder that the current composite has no
	// transparent pixels. Optional.
	SetOpaque func(handle any, opaque bool)

	// TestOpaque asks the embedder whether the composite is fully
	// opaque. Optional; when nil the decoder never latches an opacity
	// hint from the embedder side.
	TestOpaque func(handle any) bool

	// Modified fires after every successful decode. Optional.
	Modified func(handle any)
}

func (b *Bitmap) create(w, h uint32) (any, Result) {
	handle := b.Create(w, h)
	if handle == nil {
		return nil, InsufficientMemory
	}
	return handle, OK
}

func (b *Bitmap) destroy(handle any) {
	if handle != nil && b.Destroy != nil {
		b.Destroy(handle)
	}
}

func (b *Bitmap) buffer(handle any) []uint32 {
	return b.GetBuffer(handle)
}

func (b *Bitmap) setOpaque(handle any, opaque bool) {
	if b.SetOpaque != nil {
		b.SetOpaque(handle, opaque)
	}
}

func (b *Bitmap) testOpaque(handle any) (bool, bool) {
	if b.TestOpaque == nil {
		return false, false
	}
	return b.TestOpaque(handle), true
}

func (b *Bitmap) modified(handle any) {
	if b.Modified != nil {
		b.Modified(handle)
	}
}
