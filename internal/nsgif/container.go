package nsgif

import (
	"bytes"

	bst "github.com/mixcode/binarystruct"
)

// Quirk screen sizes that many real-world encoders emit in the logical
// screen descriptor even though they describe the authoring canvas, not
// the image. Seeing one of these clamps the canvas to 1x1 so later frame
// rectangles establish the real size.
var quirkScreenSizes = [...][2]uint32{
	{640, 480}, {640, 512}, {800, 600},
	{1024, 768}, {1280, 1024}, {1600, 1200},
}

const (
	maxCanvasDimension = 2048
	maxSurveyedFrames  = 4096

	blockTrailer    = 0x3B
	blockExtension  = 0x21
	blockImage      = 0x2C
	extGraphicCtrl  = 0xF9
	extApplication  = 0xFF
	extComment      = 0xFE
	extPlainText    = 0x01
)

// pendingGraphicControl stashes a Graphic Control Extension's fields until
// the image descriptor it modifies is parsed. It is cleared once consumed.
type pendingGraphicControl struct {
	set               bool
	disposal          Disposal
	transparency      bool
	transparencyIndex uint32
	delayCS           uint32
	redrawRequired    bool
}

// logicalScreenDescriptor is the wire shape of the 7-byte LSD record.
type logicalScreenDescriptor struct {
	Width, Height int `binary:"uint16"`
	Flags         byte
	BGIndex       byte
	AspectRatio   byte
}

// imageDescriptorWire is the wire shape of the 9 bytes following a 0x2C
// image separator (left/top/width/height/flags).
type imageDescriptorWire struct {
	Left, Top, Width, Height int `binary:"uint16"`
	Flags                    byte
}

// graphicControlWire is the wire shape of a Graphic Control Extension's
// 4-byte body (after the 0x04 block-size byte, before the terminator).
type graphicControlWire struct {
	Flags             byte
	Delay             int `binary:"uint16"`
	TransparentIndex  byte
}

// Context is the resumable, two-pass container parser. One Context exists
// per decoded GIF stream and is driven entirely by DataScan (survey) and
// decodeFrame (decode), never by an owning goroutine of its own.
type Context struct {
	src []byte

	headerParsed  bool
	strict        bool
	width, height uint32

	globalColours   bool
	globalTable     colourTable
	colourTableSize int
	bgIndex         uint8
	bgColour        uint32

	loopMax int // 0 means infinite; default 1 until NETSCAPE2.0 says otherwise

	frames             frameIndex
	frameCountPartial  int
	cursor             uint32
	trailerSeen        bool

	pendingGC pendingGraphicControl
}

// NewContext constructs a parser over an initial (possibly empty) window.
func NewContext() *Context {
	return &Context{loopMax: 1}
}

// SetWindow installs the latest, possibly-grown, source window. Bytes
// 0..old_size are guaranteed by the embedder to be unchanged.
func (c *Context) SetWindow(src []byte) { c.src = src }

// Width and Height report the current canvas dimensions, which may have
// grown since the last call as more frames are surveyed.
func (c *Context) Width() uint32  { return c.width }
func (c *Context) Height() uint32 { return c.height }

// FrameCount reports the number of fully surveyed (displayable) frames.
func (c *Context) FrameCount() int { return c.frames.len() }

// FrameCountPartial reports the number of frames whose image data has at
// least started to be surveyed, including any still in progress.
func (c *Context) FrameCountPartial() int { return c.frameCountPartial }

// Frame exposes a surveyed frame record by index.
func (c *Context) Frame(i int) *Frame { return c.frames.at(i) }

// Survey drives the container parser forward as far as the current
// window allows, discovering new frames without decoding their pixels.
// It is safe to call repeatedly as the window grows; already-surveyed
// frames are never revisited or discarded.
func (c *Context) Survey() Result {
	if !c.headerParsed {
		res := c.parseHeader()
		if res != OK {
			return res
		}
	}

	for {
		if c.trailerSeen {
			return OK
		}
		res := c.surveyOneBlock()
		if res != OK {
			return res
		}
		if c.frames.len() > maxSurveyedFrames {
			return DataError
		}
	}
}

// parseHeader consumes the 6-byte signature, the 7-byte logical screen
// descriptor, and (if present) the global colour table. It is attempted
// atomically: on InsufficientData nothing is recorded and the next Survey
// call starts over from byte 0.
func (c *Context) parseHeader() Result {
	if len(c.src) < 13 {
		return InsufficientData
	}
	if c.src[0] != 'G' || c.src[1] != 'I' || c.src[2] != 'F' {
		return DataError
	}
	// Non-strict mode accepts any version triple as long as "GIF"
	// matched; strict mode additionally requires "87a"/"89a".
	if c.strict {
		if v := string(c.src[3:6]); v != "87a" && v != "89a" {
			return DataError
		}
	}

	var lsd logicalScreenDescriptor
	if _, err := bst.Read(bytes.NewReader(c.src[6:13]), bst.LittleEndian, &lsd); err != nil {
		return InsufficientData
	}

	width, height := uint32(lsd.Width), uint32(lsd.Height)
	if isQuirkScreenSize(width, height) || width == 0 || height == 0 ||
		width > maxCanvasDimension || height > maxCanvasDimension {
		width, height = 1, 1
	}

	flags := lsd.Flags
	hasGlobal := flags&0x80 != 0
	tableSize := tableSizeFromExponent(flags & 0x07)

	pos := uint32(13)
	var global colourTable
	if hasGlobal {
		next, res := readColourTable(c.src, pos, tableSize, &global)
		if res != OK {
			return res
		}
		pos = next
	} else {
		global = defaultColourTable()
		tableSize = 2
	}

	bgIndex := lsd.BGIndex
	var bgColour uint32
	if hasGlobal && int(bgIndex) < tableSize {
		bgColour = global[bgIndex]
	} else {
		bgColour = global[0]
	}

	c.width, c.height = width, height
	c.globalColours = hasGlobal
	c.globalTable = global
	c.colourTableSize = tableSize
	c.bgIndex = bgIndex
	c.bgColour = bgColour
	c.cursor = pos
	c.headerParsed = true
	return OK
}

func isQuirkScreenSize(w, h uint32) bool {
	for _, q := range quirkScreenSizes {
		if w == q[0] && h == q[1] {
			return true
		}
	}
	return false
}

// surveyOneBlock parses exactly one top-level block starting at c.cursor:
// an extension group, a full frame (graphic control already pending is
// attached to it), or the trailer. It never advances c.cursor unless the
// whole block parsed successfully.
func (c *Context) surveyOneBlock() Result {
	if int(c.cursor) >= len(c.src) {
		return InsufficientData
	}
	switch c.src[c.cursor] {
	case blockTrailer:
		c.cursor++
		c.trailerSeen = true
		return OK
	case blockExtension:
		return c.surveyExtension()
	case blockImage:
		return c.surveyFrame()
	default:
		return FrameDataError
	}
}

// surveyExtension parses one GIF extension block (introducer + label +
// payload + terminator) atomically.
func (c *Context) surveyExtension() Result {
	pos := c.cursor
	if int(pos)+2 > len(c.src) {
		return InsufficientData
	}
	label := c.src[pos+1]
	pos += 2

	switch label {
	case extGraphicCtrl:
		if int(pos)+1 > len(c.src) {
			return InsufficientData
		}
		blockSize := c.src[pos]
		pos++
		if blockSize != 4 {
			return FrameDataError
		}
		if int(pos)+4 > len(c.src) {
			return InsufficientData
		}
		var gc graphicControlWire
		if _, err := bst.Read(bytes.NewReader(c.src[pos:pos+4]), bst.LittleEndian, &gc); err != nil {
			return InsufficientData
		}
		pos += 4
		if int(pos) >= len(c.src) {
			return InsufficientData
		}
		if c.src[pos] != 0 {
			return FrameDataError
		}
		pos++

		disposal := Disposal((gc.Flags >> 2) & 0x07)
		if disposal == 4 {
			disposal = DisposalRestorePrevious
		}
		c.pendingGC = pendingGraphicControl{
			set:               true,
			disposal:          disposal,
			transparency:      gc.Flags&0x01 != 0,
			transparencyIndex: uint32(gc.TransparentIndex),
			delayCS:           uint32(gc.Delay),
			redrawRequired:    disposal == DisposalRestoreBackground || disposal == DisposalRestorePrevious,
		}
		c.cursor = pos
		return OK

	case extApplication:
		if int(pos)+1 > len(c.src) {
			return InsufficientData
		}
		blockSize := c.src[pos]
		pos++
		if pos+uint32(blockSize) > uint32(len(c.src)) {
			return InsufficientData
		}
		appBlock := c.src[pos : pos+uint32(blockSize)]
		pos += uint32(blockSize)

		next, ok := skipSubBlocks(c.src, pos)
		if !ok {
			return InsufficientData
		}

		if blockSize == 11 && string(appBlock[:11]) == "NETSCAPE2.0" {
			c.applyNetscapeExtension(pos, next)
		}
		c.cursor = next
		return OK

	case extComment, extPlainText:
		next, ok := skipSubBlocks(c.src, pos)
		if !ok {
			return InsufficientData
		}
		if label == extPlainText {
			// Plain text carries a 12-byte pre-amble, introduced by
			// its own block-size byte, before its sub-blocks. That
			// pre-amble has the shape of a sub-block, so skipSubBlocks
			// above already walked the same bytes; skipPlainText
			// walks the pre-amble explicitly.
			next, ok = skipPlainText(c.src, pos)
			if !ok {
				return InsufficientData
			}
		}
		c.cursor = next
		return OK

	default:
		if int(pos)+1 > len(c.src) {
			return InsufficientData
		}
		blockSize := uint32(c.src[pos])
		pos++
		if int(pos)+int(blockSize) > len(c.src) {
			return InsufficientData
		}
		pos += blockSize
		next, ok := skipSubBlocks(c.src, pos)
		if !ok {
			return InsufficientData
		}
		c.cursor = next
		return OK
	}
}

// skipPlainText skips a Plain Text extension's 12-byte preamble (which is
// itself introduced by its own block-size byte) followed by its sub-block
// chain.
func skipPlainText(src []byte, pos uint32) (uint32, bool) {
	if int(pos) >= len(src) {
		return pos, false
	}
	blockSize := uint32(src[pos])
	pos++
	if int(pos)+int(blockSize) > len(src) {
		return pos, false
	}
	pos += blockSize
	return skipSubBlocks(src, pos)
}

// applyNetscapeExtension reads the loop-count sub-block that follows a
// recognised NETSCAPE2.0 application extension preamble.
func (c *Context) applyNetscapeExtension(pos, limit uint32) {
	if limit < pos+5 {
		return
	}
	if src := c.src; src[pos] == 3 && src[pos+1] == 1 {
		loLo, hi := src[pos+2], src[pos+3]
		loop := int(loLo) | int(hi)<<8
		c.loopMax = loop
	}
}

// surveyFrame parses one frame: its optional local colour table, its
// image descriptor, and a full walk of its LZW data sub-blocks. On
// success the frame is appended to the frame index and marked
// displayable. The block is atomic: no frame record is committed on
// InsufficientData; only the partial-frame count is raised once the
// frame's image data has begun.
func (c *Context) surveyFrame() Result {
	pos := c.cursor
	if int(pos)+10 > len(c.src) {
		return InsufficientData
	}
	var desc imageDescriptorWire
	if _, err := bst.Read(bytes.NewReader(c.src[pos+1:pos+10]), bst.LittleEndian, &desc); err != nil {
		return InsufficientData
	}
	flags := frameFlags(desc.Flags)
	pos += 10

	var local colourTable
	hasLocal := flags.hasLocalColourTable()
	if hasLocal {
		next, res := readColourTable(c.src, pos, flags.localTableSize(), &local)
		if res != OK {
			return res
		}
		pos = next
	}

	if int(pos) >= len(c.src) {
		return InsufficientData
	}
	minCodeSize := c.src[pos]
	if minCodeSize < 2 || minCodeSize > LZWCodeMax {
		return FrameDataError
	}
	lzwPointer := pos
	dataStart := pos + 1

	dataEnd, ok := skipSubBlocks(c.src, dataStart)
	if !ok {
		c.frameCountPartial = c.frames.len() + 1
		return InsufficientData
	}

	rect := Rect{
		X0: uint32(desc.Left),
		Y0: uint32(desc.Top),
		X1: uint32(desc.Left + desc.Width),
		Y1: uint32(desc.Top + desc.Height),
	}
	c.growCanvas(rect)

	idx := c.frames.len()
	c.frameCountPartial = idx + 1
	frame := c.frames.ensure(idx)
	frame.FramePointer = c.cursor
	frame.Redraw = rect
	frame.Flags = flags
	frame.lzwPointer = lzwPointer
	frame.hasLocalColourTable = hasLocal
	frame.localColourTable = local
	if c.pendingGC.set {
		frame.Disposal = c.pendingGC.disposal
		frame.Transparency = c.pendingGC.transparency
		frame.TransparencyIndex = c.pendingGC.transparencyIndex
		frame.DelayCS = c.pendingGC.delayCS
		frame.RedrawRequired = c.pendingGC.redrawRequired
		c.pendingGC = pendingGraphicControl{}
	}
	if !frame.Transparency {
		frame.TransparencyIndex = noTransparency
	}
	frame.Displayable = true

	c.cursor = dataEnd
	return OK
}

// growCanvas enlarges the canvas to cover rect, matching the original
// implementation's tolerance of per-frame canvas growth.
func (c *Context) growCanvas(rect Rect) {
	if rect.X1 > c.width {
		c.width = rect.X1
	}
	if rect.Y1 > c.height {
		c.height = rect.Y1
	}
}

// paletteFor returns the colour table that should be active for frame i,
// and the minimum code size recorded for its image data. i must already
// have been surveyed.
func (c *Context) paletteFor(i int) (*colourTable, uint8) {
	frame := c.frames.at(i)
	minCodeSize := c.src[frame.lzwPointer]
	if frame.hasLocalColourTable {
		return &frame.localColourTable, minCodeSize
	}
	return &c.globalTable, minCodeSize
}
