package nsgif

// Helpers in this file assemble literal GIF byte streams for the test
// suite. They exist only to avoid repeating the same wire-format
// assembly across every test file; they mirror the container parser's
// own field layout rather than using any GIF-writing library so a test
// failure here can never hide a parser bug behind a shared encoder bug
// in the same direction.

func u16le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// rgbTriples packs each colour as one 3-byte RGB entry.
func rgbTriples(colours ...[3]byte) []byte {
	out := make([]byte, 0, len(colours)*3)
	for _, c := range colours {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

func gifHeaderAndLSD(w, h uint16, gct []byte, bgIndex byte, gctExp byte) []byte {
	flags := byte(0)
	if gct != nil {
		flags |= 0x80
		flags |= gctExp & 0x07
	}
	out := append([]byte{}, "GIF89a"...)
	out = append(out, u16le(w)...)
	out = append(out, u16le(h)...)
	out = append(out, flags, bgIndex, 0)
	out = append(out, gct...)
	return out
}

func graphicControlExt(disposal Disposal, transparent bool, delayCS uint16, transIndex byte) []byte {
	flags := byte(disposal) << 2
	if transparent {
		flags |= 0x01
	}
	out := []byte{0x21, 0xF9, 0x04, flags}
	out = append(out, u16le(delayCS)...)
	out = append(out, transIndex, 0x00)
	return out
}

func netscapeLoopExt(loop uint16) []byte {
	out := []byte{0x21, 0xFF, 0x0B}
	out = append(out, "NETSCAPE2.0"...)
	out = append(out, 0x03, 0x01)
	out = append(out, u16le(loop)...)
	out = append(out, 0x00)
	return out
}

func imageDescriptor(left, top, w, h uint16, interlace bool, lct []byte, lctExp byte) []byte {
	flags := byte(0)
	if lct != nil {
		flags |= 0x80
		flags |= lctExp & 0x07
	}
	if interlace {
		flags |= 0x40
	}
	out := []byte{0x2C}
	out = append(out, u16le(left)...)
	out = append(out, u16le(top)...)
	out = append(out, u16le(w)...)
	out = append(out, u16le(h)...)
	out = append(out, flags)
	out = append(out, lct...)
	return out
}

// encodeLZWLiteral emits indices as literal codes only (no back-
// references), replicating the decoder's own dictionary-growth
// bookkeeping step for step so the two stay in lockstep despite the
// encoder never exploiting a back-reference.
func encodeLZWLiteral(indices []byte, minCodeSize uint8) []byte {
	clear := uint16(1) << minCodeSize
	eoi := clear + 1
	nextFree := eoi + 1
	width := uint(minCodeSize) + 1

	var bits []byte
	var acc uint32
	var accBits uint
	emit := func(code uint16, w uint) {
		acc |= uint32(code) << accBits
		accBits += w
		for accBits >= 8 {
			bits = append(bits, byte(acc))
			acc >>= 8
			accBits -= 8
		}
	}

	emit(clear, width)
	havePrev := false
	for _, idx := range indices {
		emit(uint16(idx), width)
		if havePrev && nextFree < 4096 {
			nextFree++
			if nextFree == (1<<width) && width < 12 {
				width++
			}
		}
		havePrev = true
	}
	emit(eoi, width)
	if accBits > 0 {
		bits = append(bits, byte(acc))
	}

	out := []byte{byte(minCodeSize)}
	for len(bits) > 0 {
		n := len(bits)
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, bits[:n]...)
		bits = bits[n:]
	}
	out = append(out, 0x00)
	return out
}

// encodeLZW performs genuine LZW encoding with back-references, mirroring
// the textbook encoder algorithm the decoder's dictionary bookkeeping
// (allocate/expand, and the deferred one-step-behind allocation that makes
// the KwKwK case necessary) is built against. Unlike encodeLZWLiteral, the
// codes it emits actually reuse prior multi-byte dictionary entries.
func encodeLZW(indices []byte, minCodeSize uint8) []byte {
	clear := uint16(1) << minCodeSize
	eoi := clear + 1
	nextFree := eoi + 1
	width := uint(minCodeSize) + 1

	type key struct {
		prefix uint16
		suffix uint8
	}
	dict := make(map[key]uint16)

	var bits []byte
	var acc uint32
	var accBits uint
	emit := func(code uint16, w uint) {
		acc |= uint32(code) << accBits
		accBits += w
		for accBits >= 8 {
			bits = append(bits, byte(acc))
			acc >>= 8
			accBits -= 8
		}
	}

	emit(clear, width)
	w := uint16(indices[0])
	for _, c := range indices[1:] {
		if code, ok := dict[key{w, c}]; ok {
			w = code
			continue
		}
		emit(w, width)
		dict[key{w, c}] = nextFree
		nextFree++
		if nextFree == (1<<width) && width < 12 {
			width++
		}
		w = uint16(c)
	}
	emit(w, width)
	emit(eoi, width)
	if accBits > 0 {
		bits = append(bits, byte(acc))
	}

	out := []byte{byte(minCodeSize)}
	for len(bits) > 0 {
		n := len(bits)
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, bits[:n]...)
		bits = bits[n:]
	}
	out = append(out, 0x00)
	return out
}

var (
	colourBlack = [3]byte{0, 0, 0}
	colourWhite = [3]byte{0xff, 0xff, 0xff}
	colourRed   = [3]byte{0xff, 0, 0}
	colourGreen = [3]byte{0, 0xff, 0}
)

// buildS1 is the literal minimal-static-GIF fixture from the testable
// properties section: a 1x1 opaque black pixel.
func buildS1() []byte {
	return []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF,
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x02, 0x02, 0x44, 0x01, 0x00,
		0x3B,
	}
}

// buildS2 is a 2x2, two-frame animation with disposal=None and a 10cs
// delay on frame 0.
func buildS2() []byte {
	gct := rgbTriples(colourBlack, colourWhite, colourRed, colourGreen)
	out := gifHeaderAndLSD(2, 2, gct, 0, 1)
	out = append(out, graphicControlExt(DisposalNone, false, 10, 0)...)
	out = append(out, imageDescriptor(0, 0, 2, 2, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{0, 1, 2, 3}, 2)...)
	out = append(out, graphicControlExt(DisposalNone, false, 20, 0)...)
	out = append(out, imageDescriptor(0, 0, 2, 2, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{3, 2, 1, 0}, 2)...)
	out = append(out, 0x3B)
	return out
}

// buildS3 is a single-frame stream carrying a NETSCAPE2.0 infinite-loop
// (loop=0) application extension.
func buildS3() []byte {
	gct := rgbTriples(colourBlack, colourWhite)
	out := gifHeaderAndLSD(1, 1, gct, 0, 0)
	out = append(out, netscapeLoopExt(0)...)
	out = append(out, imageDescriptor(0, 0, 1, 1, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{1}, 2)...)
	out = append(out, 0x3B)
	return out
}

// buildS4 is a 2x2 three-frame stream where frame 1 sets disposal =
// RestorePrevious (snapshotting frame 0's composite before it draws),
// frame 2 is fully transparent, so frame 2's final composite equals
// frame 0's: the restore-previous round trip.
func buildS4() []byte {
	gct := rgbTriples(colourBlack, colourWhite, colourRed, colourGreen)
	out := gifHeaderAndLSD(2, 2, gct, 0, 1)
	out = append(out, graphicControlExt(DisposalNone, false, 10, 0)...)
	out = append(out, imageDescriptor(0, 0, 2, 2, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{0, 1, 2, 3}, 2)...)
	out = append(out, graphicControlExt(DisposalRestorePrevious, false, 10, 0)...)
	out = append(out, imageDescriptor(0, 0, 2, 2, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{3, 3, 3, 3}, 2)...)
	out = append(out, graphicControlExt(DisposalNone, true, 10, 0)...)
	out = append(out, imageDescriptor(0, 0, 2, 2, false, nil, 0)...)
	out = append(out, encodeLZWLiteral([]byte{0, 0, 0, 0}, 2)...)
	out = append(out, 0x3B)
	return out
}

// buildS5 returns the complete bytes of a single-frame stream plus the
// offset at which its LZW data begins, so a test can truncate mid
// sub-block and then append the remainder.
func buildS5() (full []byte, lzwDataOffset int) {
	gct := rgbTriples(colourBlack, colourWhite)
	out := gifHeaderAndLSD(1, 1, gct, 0, 0)
	out = append(out, imageDescriptor(0, 0, 1, 1, false, nil, 0)...)
	lzwDataOffset = len(out)
	out = append(out, encodeLZWLiteral([]byte{1}, 2)...)
	out = append(out, 0x3B)
	return out, lzwDataOffset
}

// backReferenceIndices is a repeating 3-symbol run whose LZW encoding
// reuses prior multi-byte dictionary entries (codes 6, 7, 8 below all
// expand to length-2 entries), exercising allocate/expand's back-reference
// path rather than only literal codes.
var backReferenceIndices = []byte{0, 1, 2, 0, 1, 2, 0, 1, 2}

// kwkwkIndices is the classic run-length pattern ("0,0,0,0,0") whose LZW
// encoding emits the freshly-allocated code for "00" a second time
// immediately after creating it, forcing the decoder's KwKwK
// self-referential case (decodeOne's code == c.nextFree branch).
var kwkwkIndices = []byte{0, 0, 0, 0, 0}

// buildS7 is a single-frame stream whose image data is encoded with
// encodeLZW (real back-references) rather than encodeLZWLiteral, using
// kwkwkIndices so the container/decoder path also exercises the
// self-referential case end to end.
func buildS7() []byte {
	gct := rgbTriples(colourBlack, colourWhite, colourRed, colourGreen)
	out := gifHeaderAndLSD(5, 1, gct, 0, 1)
	out = append(out, imageDescriptor(0, 0, 5, 1, false, nil, 0)...)
	out = append(out, encodeLZW(kwkwkIndices, 2)...)
	out = append(out, 0x3B)
	return out
}

// buildS6 is an interlaced 8x8 frame whose index at (x, y) is (x+y)%2,
// i.e. a checkerboard, encoded in the frame's natural (interlaced) row
// order: passes {0},{4},{2,6},{1,3,5,7}.
func buildS6() []byte {
	gct := rgbTriples(colourBlack, colourWhite)
	out := gifHeaderAndLSD(8, 8, gct, 0, 0)
	out = append(out, imageDescriptor(0, 0, 8, 8, true, nil, 0)...)

	var indices []byte
	for _, row := range interlacedRowOrder(8) {
		for x := uint32(0); x < 8; x++ {
			indices = append(indices, byte((x+row)%2))
		}
	}
	out = append(out, encodeLZWLiteral(indices, 2)...)
	out = append(out, 0x3B)
	return out
}
