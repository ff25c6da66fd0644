package main

import (
	"fmt"
	"os"
)

// minimalStaticGIF is the literal 1x1 opaque-black fixture: header, LSD
// with a 2-entry global table, one frame, trailer.
func minimalStaticGIF() []byte {
	return []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF,
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x02, 0x02, 0x44, 0x01, 0x00,
		0x3B,
	}
}

// twoFrameAnimation is a 2x2, two-frame animation with disposal=None and
// distinct per-frame delays, encoding each frame's pixels as literal LZW
// codes (no back-references).
func twoFrameAnimation() []byte {
	header := []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00, 0x02, 0x00, 0x80 | 0x01, 0x00, 0x00}
	gct := []byte{
		0x00, 0x00, 0x00, // black
		0xFF, 0xFF, 0xFF, // white
		0xFF, 0x00, 0x00, // red
		0x00, 0xFF, 0x00, // green
	}
	gce := func(delayLo, delayHi byte) []byte {
		// Packed byte: disposal None (1) in bits 2-4, no transparency.
		return []byte{0x21, 0xF9, 0x04, 0x01 << 2, delayLo, delayHi, 0x00, 0x00}
	}
	imgDesc := []byte{0x2C, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00}

	out := append([]byte{}, header...)
	out = append(out, gct...)
	out = append(out, gce(10, 0)...)
	out = append(out, imgDesc...)
	out = append(out, encodeFrameLiteralIndices([]byte{0, 1, 2, 3})...)
	out = append(out, gce(20, 0)...)
	out = append(out, imgDesc...)
	out = append(out, encodeFrameLiteralIndices([]byte{3, 2, 1, 0})...)
	out = append(out, 0x3B)
	return out
}

// encodeFrameLiteralIndices packs indices as literal LZW codes at
// minimum code size 2, mirroring the dictionary-growth bookkeeping the
// decoder performs on the other end.
func encodeFrameLiteralIndices(indices []byte) []byte {
	const minCodeSize = 2
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

	out := []byte{minCodeSize}
	for len(bits) > 0 {
		n := len(bits)
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, bits[:n]...)
		bits = bits[n:]
	}
	return append(out, 0x00)
}

func main() {
	fixtures := map[string][]byte{
		"s1-minimal-static.gif":  minimalStaticGIF(),
		"s2-two-frame-anim.gif":  twoFrameAnimation(),
	}

	outDir := "."
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	for name, data := range fixtures {
		path := outDir + "/" + name
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	}
}
