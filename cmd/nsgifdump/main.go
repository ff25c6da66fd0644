package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/rphrbx/nsgif/pkg/nsgif"
)

// ppmBitmap backs the decoder's bitmap capability with a single RGBA
// buffer sized to the canvas, and is what gets dumped to PPM per frame.
type ppmBitmap struct {
	buf    []uint32
	opaque bool
}

func newBitmapCapability() (nsgif.Bitmap, *ppmBitmap) {
	bmp := &ppmBitmap{}
	return nsgif.Bitmap{
		Create: func(w, h uint32) any {
			bmp.buf = make([]uint32, int(w)*int(h))
			return bmp
		},
		Destroy:    func(handle any) {},
		GetBuffer:  func(handle any) []uint32 { return bmp.buf },
		SetOpaque:  func(handle any, opaque bool) { bmp.opaque = opaque },
		TestOpaque: func(handle any) bool { return bmp.opaque },
		Modified:   func(handle any) {},
	}, bmp
}

func main() {
	var inputFile = flag.String("input", "", "Input GIF file")
	var outputDir = flag.String("output", ".", "Directory to write frame-NNN.ppm files")
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("Input file is required. Use -input flag.")
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	cap, bmp := newBitmapCapability()
	decoder, err := nsgif.New(nsgif.Options{Bitmap: cap})
	if err != nil {
		log.Fatalf("Failed to create decoder: %v", err)
	}
	defer decoder.Destroy()

	if res := decoder.DataScan(data); res.IsError() {
		log.Fatalf("Scan failed: %s", res)
	}

	info := decoder.GetInfo()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s %dx%d frames=%d loop_max=%d delay_min=%d\n",
		green("nsgifdump"), info.Width, info.Height, info.FrameCount, info.LoopMax, info.DelayMin)

	for i := 0; i < info.FrameCount; i++ {
		rect, delay, idx, res := decoder.FramePrepare()
		if res == nsgif.AnimationComplete {
			break
		}
		if res.IsError() {
			log.Fatalf("Prepare failed: %s", res)
		}

		if _, res := decoder.FrameDecode(idx); res.IsError() {
			log.Fatalf("Decode of frame %d failed: %s", idx, res)
		}

		out := fmt.Sprintf("%s/frame-%03d.ppm", *outputDir, idx)
		if err := writePPM(out, bmp.buf, info.Width, info.Height); err != nil {
			log.Fatalf("Failed to write %s: %v", out, err)
		}
		fmt.Printf("  frame %d redraw=%+v delay=%dcs -> %s\n", idx, rect, delay, out)
	}
}

func writePPM(path string, pixels []uint32, w, h uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "P6\n%d %d\n255\n", w, h)
	for _, px := range pixels {
		bw.Write([]byte{byte(px), byte(px >> 8), byte(px >> 16)})
	}
	return bw.Flush()
}
