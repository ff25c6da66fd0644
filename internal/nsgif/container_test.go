package nsgif

import "testing"

func TestSurveyMinimalStaticGIF(t *testing.T) {
	ctx := NewContext()
	ctx.SetWindow(buildS1())
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey: %s", res)
	}
	if ctx.Width() != 1 || ctx.Height() != 1 {
		t.Fatalf("got %dx%d want 1x1", ctx.Width(), ctx.Height())
	}
	if ctx.FrameCount() != 1 {
		t.Fatalf("got frame_count=%d want 1", ctx.FrameCount())
	}
	if ctx.loopMax != 1 {
		t.Fatalf("got loop_max=%d want 1", ctx.loopMax)
	}
}

func TestSurveyHeaderPlusTrailerOnly(t *testing.T) {
	data := append(gifHeaderAndLSD(1, 1, nil, 0, 0), 0x3B)
	ctx := NewContext()
	ctx.SetWindow(data)
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey: %s", res)
	}
	if ctx.FrameCount() != 0 {
		t.Fatalf("got frame_count=%d want 0", ctx.FrameCount())
	}
}

func TestSurveyTwoFrameDelayAndDisposal(t *testing.T) {
	ctx := NewContext()
	ctx.SetWindow(buildS2())
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey: %s", res)
	}
	if ctx.FrameCount() != 2 {
		t.Fatalf("got frame_count=%d want 2", ctx.FrameCount())
	}
	f0 := ctx.Frame(0)
	if f0.DelayCS != 10 {
		t.Fatalf("frame 0 delay=%d want 10", f0.DelayCS)
	}
	if f0.Disposal != DisposalNone {
		t.Fatalf("frame 0 disposal=%s want None", f0.Disposal)
	}
}

func TestSurveyNetscapeLoop(t *testing.T) {
	ctx := NewContext()
	ctx.SetWindow(buildS3())
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey: %s", res)
	}
	if ctx.loopMax != 0 {
		t.Fatalf("got loop_max=%d want 0 (infinite)", ctx.loopMax)
	}
}

func TestSurveyTruncatedSubBlockRecovers(t *testing.T) {
	full, lzwStart := buildS5()
	// Cut the window so the single data sub-block's declared length
	// runs past the end of the buffer.
	truncated := full[:lzwStart+2]

	ctx := NewContext()
	ctx.SetWindow(truncated)
	if res := ctx.Survey(); res != InsufficientData {
		t.Fatalf("got %s want InsufficientData", res)
	}
	if ctx.FrameCount() != 0 {
		t.Fatalf("got frame_count=%d want 0 before more data arrives", ctx.FrameCount())
	}

	ctx.SetWindow(full)
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey after growth: %s", res)
	}
	if ctx.FrameCount() != 1 {
		t.Fatalf("got frame_count=%d want 1 after growth", ctx.FrameCount())
	}
}

func TestSurveyQuirkScreenSizeClamp(t *testing.T) {
	data := append(gifHeaderAndLSD(640, 480, nil, 0, 0), 0x3B)
	ctx := NewContext()
	ctx.SetWindow(data)
	if res := ctx.Survey(); res != OK {
		t.Fatalf("Survey: %s", res)
	}
	if ctx.Width() != 1 || ctx.Height() != 1 {
		t.Fatalf("got %dx%d want 1x1 after quirk clamp", ctx.Width(), ctx.Height())
	}
}

func TestSurveyResumptionIsPrefixStable(t *testing.T) {
	full := buildS2()
	ctx := NewContext()

	// Feed the stream in growing prefixes and check the surveyed frame
	// count only ever grows, never shrinks or rewrites earlier frames.
	var lastCount int
	for end := 13; end <= len(full); end++ {
		ctx.SetWindow(full[:end])
		ctx.Survey()
		count := ctx.FrameCount()
		if count < lastCount {
			t.Fatalf("frame_count went backwards: %d -> %d at prefix %d", lastCount, count, end)
		}
		lastCount = count
	}
	if lastCount != 2 {
		t.Fatalf("final frame_count=%d want 2", lastCount)
	}
}
