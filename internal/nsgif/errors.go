package nsgif

import "fmt"

// Result mirrors the nsgif_result enum from the reference implementation.
// Positive and zero values are success states; negative values are errors.
type Result int

const (
	// Working indicates the call succeeded and more frames are expected
	// once further bytes are scanned.
	Working Result = 1
	// OK indicates the call completed successfully.
	OK Result = 0
	// InsufficientData indicates the parser reached the end of the
	// current buffer window mid-record; the caller should append more
	// bytes and retry.
	InsufficientData Result = -1
	// InsufficientFrameData is an alias for InsufficientData raised
	// while walking a frame's image data sub-blocks.
	InsufficientFrameData Result = InsufficientData
	// FrameDataError indicates frame-local corruption: a bad LZW code,
	// a truncated sub-block chain, or a bad image separator. Earlier
	// frames remain decodable.
	FrameDataError Result = -2
	// DataError indicates pre-frame corruption: bad magic or an
	// impossible logical screen descriptor. Fatal to the whole stream.
	DataError Result = -4
	// InsufficientMemory indicates an allocation failure.
	InsufficientMemory Result = -5
	// FrameNoDisplay indicates the requested frame was never fully
	// surveyed and cannot be decoded.
	FrameNoDisplay Result = -6
	// EndOfFrame indicates the LZW stream yielded its end-of-information
	// code; this is not an error, it closes the frame's data cleanly.
	EndOfFrame Result = -7
	// FrameInvalid indicates FrameDecode was asked for an index outside
	// the surveyed frame index.
	FrameInvalid Result = -8
	// AnimationComplete indicates FramePrepare was called after the
	// loop count was exhausted.
	AnimationComplete Result = -9
)

func (r Result) String() string {
	switch r {
	case Working:
		return "Working"
	case OK:
		return "OK"
	case InsufficientData:
		return "InsufficientData"
	case FrameDataError:
		return "FrameDataError"
	case DataError:
		return "DataError"
	case InsufficientMemory:
		return "InsufficientMemory"
	case FrameNoDisplay:
		return "FrameNoDisplay"
	case EndOfFrame:
		return "EndOfFrame"
	case FrameInvalid:
		return "FrameInvalid"
	case AnimationComplete:
		return "AnimationComplete"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Error adapts a Result to the error interface so internal call chains can
// use ordinary Go error propagation while still carrying the closed error
// catalogue at the API boundary.
func (r Result) Error() string { return r.String() }

// IsError reports whether r represents anything other than OK or Working.
func (r Result) IsError() bool { return r != OK && r != Working }
