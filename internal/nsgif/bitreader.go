package nsgif

// subBlockReader pulls little-endian, variable-width LZW codes across a
// chain of length-prefixed GIF data sub-blocks. It never copies the source
// bytes; it only ever reads from the window it is handed.
//
// GIF packs codes into sub-blocks independently of code-width: a code may
// straddle a sub-block boundary, so the reader keeps a small bit
// accumulator and refills it from the next sub-block's bytes on demand.
type subBlockReader struct {
	src []byte // borrowed source window
	pos uint32 // absolute byte offset of the next unread byte

	blockLeft uint32 // bytes remaining in the current sub-block
	blockSeen bool   // true once the first sub-block length has been read

	acc     uint32 // little-endian bit accumulator
	accBits uint   // number of valid bits currently in acc

	eod bool // true once EOI has been consumed
}

// newSubBlockReader constructs a reader positioned at the first sub-block
// length byte of an image data stream.
func newSubBlockReader(src []byte, pos uint32) *subBlockReader {
	return &subBlockReader{src: src, pos: pos}
}

// Pos returns the reader's current absolute byte offset.
func (r *subBlockReader) Pos() uint32 { return r.pos }

// AtTerminator reports whether the reader is sitting exactly on a
// zero-length sub-block terminator (or has already consumed one).
func (r *subBlockReader) AtTerminator() bool {
	if r.blockSeen && r.blockLeft == 0 {
		return true
	}
	return int(r.pos) < len(r.src) && r.src[r.pos] == 0
}

// fillByte folds one more input byte into the bit accumulator, opening a
// new sub-block when the current one is exhausted. Returns false when the
// source window runs out before a byte can be supplied.
func (r *subBlockReader) fillByte() bool {
	for r.blockLeft == 0 {
		if int(r.pos) >= len(r.src) {
			return false
		}
		length := uint32(r.src[r.pos])
		r.pos++
		r.blockSeen = true
		if length == 0 {
			// Terminator sub-block: the frame's data ends here.
			return false
		}
		r.blockLeft = length
	}
	if int(r.pos) >= len(r.src) {
		return false
	}
	r.acc |= uint32(r.src[r.pos]) << r.accBits
	r.accBits += 8
	r.pos++
	r.blockLeft--
	return true
}

// readCode extracts the next `width`-bit code from the bitstream. ok is
// false when the source window was exhausted before enough bits could be
// gathered (NoData); the caller should leave the reader's position
// unadvanced in spirit by re-parsing from the frame's recorded offset once
// more data has arrived.
func (r *subBlockReader) readCode(width uint) (code uint16, ok bool) {
	for r.accBits < width {
		if !r.fillByte() {
			return 0, false
		}
	}
	code = uint16(r.acc & ((1 << width) - 1))
	r.acc >>= width
	r.accBits -= width
	return code, true
}

// skipSubBlocks drains any remaining sub-blocks without interpreting
// their contents, leaving the cursor positioned just past the terminating
// zero-length sub-block. Used by the survey pass, which never runs LZW.
func skipSubBlocks(src []byte, pos uint32) (next uint32, ok bool) {
	for {
		if int(pos) >= len(src) {
			return pos, false
		}
		length := uint32(src[pos])
		pos++
		if length == 0 {
			return pos, true
		}
		if int(pos)+int(length) > len(src) {
			return pos, false
		}
		pos += length
	}
}
