// viewproc resolves a display/view transform from a color-management
// configuration and applies it to image files, writing the results as PNG.
// Fan-out over the input files happens here on the host side; the bridge
// itself is synchronous.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/kovidgoyal/go-parallel"

	"github.com/kovidgoyal/colorbridge/cms"
	"github.com/kovidgoyal/colorbridge/imagein"
)

var (
	configFlag  = flag.String("config", "", "config file path or ocio:// builtin identifier (default: $OCIO, then ocio://default)")
	srcFlag     = flag.String("src", "scene_linear", "source color space or role of the input pixels")
	displayFlag = flag.String("display", "", "target display (default: the config's default display)")
	viewFlag    = flag.String("view", "", "target view (default: the display's default view)")
	suffixFlag  = flag.String("suffix", ".graded", "suffix inserted before the .png extension of outputs")
)

func loadConfig() *cms.Config {
	switch {
	case strings.HasPrefix(*configFlag, "ocio://"):
		return cms.CreateBuiltin(*configFlag)
	case *configFlag != "":
		return cms.CreateFromFile(*configFlag)
	case os.Getenv(cms.EnvVar) != "":
		return cms.CreateFromEnv()
	default:
		return cms.CreateBuiltin("ocio://default")
	}
}

func outputName(input, suffix string) string {
	base := input
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + suffix + ".png"
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func processFile(path string, ev *cms.Evaluator, suffix string) error {
	img := imagein.Open(path)
	if img == nil {
		return fmt.Errorf("%s: %w", path, imagein.LastError())
	}
	defer img.Destroy()

	w, h := img.Width(), img.Height()
	buf := make([]float32, w*h*4)
	if !img.ReadRGBAFloat32(buf) {
		return fmt.Errorf("%s: %w", path, imagein.LastError())
	}
	ev.ApplyRGBA(buf, w, h)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		out.Pix[4*i] = clamp8(buf[4*i])
		out.Pix[4*i+1] = clamp8(buf[4*i+1])
		out.Pix[4*i+2] = clamp8(buf[4*i+2])
		out.Pix[4*i+3] = clamp8(buf[4*i+3])
	}

	name := outputName(path, suffix)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

func main() {
	flag.Parse()
	files := flag.Args()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: viewproc [flags] image-file...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := loadConfig()
	if cfg == nil {
		log.Error("loading config", "err", cms.LastError())
		os.Exit(1)
	}
	defer cfg.Destroy()

	display := *displayFlag
	if display == "" {
		display = cfg.DefaultDisplay()
	}
	view := *viewFlag
	if view == "" {
		view = cfg.DefaultView(display)
	}

	tr := cms.NewDisplayTransform(cfg, *srcFlag, display, view)
	if tr == nil {
		log.Error("resolving transform", "src", *srcFlag, "display", display, "view", view, "err", cms.LastError())
		os.Exit(1)
	}
	defer tr.Destroy()

	ev := cms.NewEvaluator(tr)
	if ev == nil {
		log.Error("compiling evaluator", "err", cms.LastError())
		os.Exit(1)
	}
	defer ev.Destroy()
	if ev.IsNoOp() {
		log.Info("transform is a no-op, files will be converted unchanged")
	}

	var mu sync.Mutex
	failed := 0
	worker := func(start, limit int) {
		for _, path := range files[start:limit] {
			if err := processFile(path, ev, *suffixFlag); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				log.Error("processing", "file", path, "err", err)
				continue
			}
			log.Info("wrote", "file", outputName(path, *suffixFlag), "display", display, "view", view)
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, worker, 0, len(files)); err != nil {
		log.Error("running workers", "err", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
