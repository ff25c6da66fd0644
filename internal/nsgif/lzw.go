package nsgif

const (
	lzwDictCapacity = 4096 // total dictionary slots
	lzwMaxWidth     = 12   // maximum code width in bits

	// LZWCodeMax is the upper bound a minimum code size must respect;
	// checked by the container parser before an LZW context is created.
	LZWCodeMax = lzwMaxWidth - 1
)

// lzwEntry is one dictionary slot, stored as a DAG node rather than a
// linked list of bytes: prefix points at the entry this one extends,
// suffix is the single byte appended to that prefix, and length is
// memoised so a decode never needs to walk further than the entry's own
// depth to learn how many bytes it expands to.
type lzwEntry struct {
	prefix uint16
	suffix uint8
	length uint16
}

// lzwContext is a pull-style GIF LZW decoder. It is re-created for each
// frame decode from the minimum code size recorded alongside the
// frame's image data, and it owns no memory beyond its own dictionary and
// output scratch buffer.
type lzwContext struct {
	minCodeSize uint8

	clearCode uint16
	eoiCode   uint16
	firstFree uint16
	nextFree  uint16
	width     uint

	dict [lzwDictCapacity]lzwEntry

	prevCode  uint16
	havePrev  bool
	prevFirst uint8

	out    []byte // scratch reconstruction buffer, reused per code
	stream *subBlockReader
	done   bool // true once EOI has been consumed

	pending []byte // unconsumed tail of the last decoded chunk
}

// newLZWContext validates the minimum code size and prepares a decoder
// positioned at the first sub-block length of the frame's image data.
func newLZWContext(src []byte, pos uint32, minCodeSize uint8) (*lzwContext, Result) {
	if minCodeSize < 2 || minCodeSize > LZWCodeMax {
		return nil, FrameDataError
	}
	ctx := &lzwContext{
		minCodeSize: minCodeSize,
		out:         make([]byte, lzwDictCapacity),
		stream:      newSubBlockReader(src, pos),
	}
	ctx.reset()
	return ctx, OK
}

func (c *lzwContext) reset() {
	literal := uint16(1) << c.minCodeSize
	c.clearCode = literal
	c.eoiCode = literal + 1
	c.firstFree = literal + 2
	c.nextFree = c.firstFree
	c.width = uint(c.minCodeSize) + 1
	c.havePrev = false
	for i := uint16(0); i < literal; i++ {
		c.dict[i] = lzwEntry{prefix: i, suffix: uint8(i), length: 1}
	}
}

// Pos reports the absolute byte offset the reader has consumed up to.
func (c *lzwContext) Pos() uint32 { return c.stream.Pos() }

// decodeOne reads and expands the next code. When the code is the literal
// CLEAR code the dictionary is reset and the next code is pulled
// transparently. EOI yields (nil, EndOfFrame); a genuinely short source
// window yields (nil, InsufficientData).
func (c *lzwContext) decodeOne() ([]byte, Result) {
	for {
		code, ok := c.stream.readCode(c.width)
		if !ok {
			return nil, InsufficientData
		}
		if code == c.clearCode {
			c.reset()
			continue
		}
		if code == c.eoiCode {
			c.done = true
			c.stream.eod = true
			return nil, EndOfFrame
		}

		if !c.havePrev {
			// The very first non-CLEAR code of a pass must be a literal.
			if code >= c.clearCode {
				return nil, FrameDataError
			}
			out := c.expand(code)
			c.havePrev = true
			c.prevCode = code
			c.prevFirst = out[0]
			return out, OK
		}

		if code > c.nextFree || code >= lzwDictCapacity {
			return nil, FrameDataError
		}

		if code == c.nextFree {
			// KwKwK: the code being defined is referenced before its
			// definition completes. Its expansion is the previous
			// code's bytes followed by the previous code's own first
			// byte.
			if !c.allocate(c.prevCode, c.prevFirst) {
				return nil, FrameDataError
			}
		} else {
			first := c.firstByte(code)
			if !c.allocate(c.prevCode, first) {
				return nil, FrameDataError
			}
		}

		out := c.expand(code)
		c.prevCode = code
		c.prevFirst = out[0]
		return out, OK
	}
}

// allocate appends a new dictionary entry extending prefix with suffix,
// growing the code width whenever the newly allocated index crosses a
// power-of-two boundary. Returns false if the dictionary is exhausted.
func (c *lzwContext) allocate(prefix uint16, suffix uint8) bool {
	if c.nextFree >= lzwDictCapacity {
		return false
	}
	c.dict[c.nextFree] = lzwEntry{
		prefix: prefix,
		suffix: suffix,
		length: c.dict[prefix].length + 1,
	}
	c.nextFree++
	if c.nextFree == (1<<c.width) && c.width < lzwMaxWidth {
		c.width++
	}
	return true
}

// firstByte returns the leading byte of code's expansion without doing a
// full reconstruction.
func (c *lzwContext) firstByte(code uint16) uint8 {
	for c.dict[code].prefix != code {
		code = c.dict[code].prefix
	}
	return c.dict[code].suffix
}

// expand reconstructs code's byte sequence into the shared scratch buffer,
// writing right-to-left (the dictionary chain runs leaf-to-root) and
// returning the populated prefix of the buffer. The buffer is reused by
// the next call, matching the per-code O(length) bound described for the
// decoder: no recursion, and no chain is walked more than once.
func (c *lzwContext) expand(code uint16) []byte {
	length := int(c.dict[code].length)
	i := length
	for {
		i--
		c.out[i] = c.dict[code].suffix
		next := c.dict[code].prefix
		if next == code {
			break
		}
		code = next
	}
	return c.out[:length]
}

// nextChunk returns the next run of decoded index bytes, drawing from any
// tail left over by a previous partial consumption before pulling a fresh
// code from the bitstream.
func (c *lzwContext) nextChunk() ([]byte, Result) {
	if len(c.pending) > 0 {
		out := c.pending
		c.pending = nil
		return out, OK
	}
	return c.decodeOne()
}

// streamNext implements stream mode: it yields the next contiguous run of
// decoded index bytes as a read-only view valid until the following call.
func (c *lzwContext) streamNext() ([]byte, Result) {
	if c.done && len(c.pending) == 0 {
		return nil, EndOfFrame
	}
	return c.nextChunk()
}

// readIndices implements stream mode's row-oriented counterpart: it fills
// dst with exactly len(dst) raw palette indices, drawing from pending
// output before pulling further codes. The compositor's general decode
// path uses this to assemble one destination row at a time so it can
// apply palette lookup and transparency itself.
func (c *lzwContext) readIndices(dst []uint8) (int, Result) {
	written := 0
	for written < len(dst) {
		chunk, res := c.nextChunk()
		if res == EndOfFrame {
			return written, EndOfFrame
		}
		if res != OK {
			return written, res
		}
		take := len(chunk)
		if remaining := len(dst) - written; take > remaining {
			take = remaining
		}
		copy(dst[written:written+take], chunk[:take])
		written += take
		if take < len(chunk) {
			c.pending = chunk[take:]
		}
	}
	return written, OK
}

// mapInto implements map mode: it writes decoded indices into dst as
// packed RGBA pixels, skipping the transparent index, until either dst is
// full or the frame's data runs out. It returns the number of pixels
// written. Any bytes decoded past the end of dst are retained in pending
// so a subsequent call on the same context does not lose them.
func (c *lzwContext) mapInto(dst []uint32, palette *[256]uint32, transparentIndex uint32) (int, Result) {
	written := 0
	for written < len(dst) {
		chunk, res := c.nextChunk()
		if res == EndOfFrame {
			return written, EndOfFrame
		}
		if res != OK {
			return written, res
		}
		take := len(chunk)
		if remaining := len(dst) - written; take > remaining {
			take = remaining
		}
		for _, idx := range chunk[:take] {
			if uint32(idx) != transparentIndex {
				dst[written] = palette[idx]
			}
			written++
		}
		if take < len(chunk) {
			c.pending = chunk[take:]
		}
	}
	return written, OK
}
