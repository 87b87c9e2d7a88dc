package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/df07/go-pathtracer/pkg/storage"
)

// options holds the parsed command line
type options struct {
	sceneName  string
	outputPath string // Empty = <output dir>/<scene>/render_<timestamp>.<format>
	format     string
	thumbWidth uint
	caption    bool
	upload     bool
	quiet      bool
	config     config.Config

	// Sampling values given explicitly on the command line
	overrides map[string]int64
}

func main() {
	sceneName := flag.String("scene", "default", "Scene name: 'default', 'materials', 'random', a scene file name in the scenes directory, or a path to a .json scene")
	scenesDir := flag.String("scenes-dir", "", "Directory with JSON scene files (default from PT_SCENES_DIR or 'scenes')")
	outputPath := flag.String("o", "", "Output file; the extension selects the format")
	format := flag.String("format", "ppm", "Output format when -o is not given: ppm, png, jpg, gif, tif, bmp")
	envFile := flag.String("env", ".env", "Optional .env file with PT_* and S3_* settings")
	width := flag.Int("width", 0, "Image width (default from scene)")
	height := flag.Int("height", 0, "Image height (default from scene)")
	samples := flag.Int("samples", 0, "Samples per pixel (default from scene)")
	maxDepth := flag.Int("max-depth", 0, "Maximum bounce depth (default 50)")
	seed := flag.Int64("seed", 0, "Random seed, 0 = derive from the clock")
	workers := flag.Int("workers", 1, "Parallel tile workers, 0 = one per CPU")
	tileSize := flag.Int("tile-size", 0, "Tile edge length in pixels (default 32)")
	thumb := flag.Uint("thumb", 0, "Also write a PNG thumbnail of this width")
	caption := flag.Bool("caption", false, "Stamp render statistics into raster output")
	upload := flag.Bool("upload", false, "Upload the output to the S3 bucket from S3_* settings")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Monte Carlo Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.BuiltinScenes() {
			fmt.Printf("  %-10s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *scenesDir != "" {
		cfg.ScenesDir = *scenesDir
	}

	flagValues := map[string]int64{
		"width":     int64(*width),
		"height":    int64(*height),
		"samples":   int64(*samples),
		"max-depth": int64(*maxDepth),
		"seed":      *seed,
		"workers":   int64(*workers),
		"tile-size": int64(*tileSize),
	}
	overrides := make(map[string]int64)
	flag.Visit(func(f *flag.Flag) {
		if v, ok := flagValues[f.Name]; ok {
			overrides[f.Name] = v
		}
	})

	opts := options{
		sceneName:  *sceneName,
		outputPath: *outputPath,
		format:     *format,
		thumbWidth: *thumb,
		caption:    *caption,
		upload:     *upload,
		quiet:      *quiet,
		config:     cfg,
		overrides:  overrides,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders one scene and writes the requested outputs
func run(ctx context.Context, opts options) error {
	logger := renderer.NewDefaultLogger()
	if opts.quiet {
		logger = renderer.NewNopLogger()
	}

	logger.Printf("Starting path tracer...\n")

	selectedScene, err := createScene(opts.sceneName, opts.config.ScenesDir)
	if err != nil {
		return err
	}
	logger.Printf("Using %s scene (%d primitives)...\n", selectedScene.Name, selectedScene.GetPrimitiveCount())

	sampling, err := samplingConfig(selectedScene, opts.overrides)
	if err != nil {
		return err
	}

	rendererOpts := []renderer.Option{renderer.WithLogger(logger)}
	if !opts.quiet {
		rendererOpts = append(rendererOpts, renderer.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rTiles remaining: %d ", total-done)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	raytracer, err := renderer.NewRaytracer(selectedScene, sampling, rendererOpts...)
	if err != nil {
		return err
	}

	pixels, stats, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}
	logger.Printf("Samples per pixel: %.1f over %d tiles (seed %d)\n", stats.AverageSamples, stats.Tiles, stats.Seed)

	filename, err := outputFilename(opts, selectedScene.Name, time.Now())
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	rendered := raytracer.Config()
	img := renderer.ToImage(pixels, rendered.Width, rendered.Height)
	var final image.Image = img
	if opts.caption && format != "ppm" {
		final = output.Caption(img, statsCaption(selectedScene.Name, stats))
	}

	// PPM output is written straight from the pixel buffer
	var encoded bytes.Buffer
	if format == "ppm" {
		err = output.WritePPM(&encoded, rendered.Width, rendered.Height, pixels)
	} else {
		err = output.Encode(&encoded, final, format)
	}
	if err != nil {
		return err
	}
	if err := writeFile(filename, encoded.Bytes()); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	logger.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(img))

	if opts.thumbWidth > 0 {
		thumbName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_thumb.png"
		if err := output.Save(output.Thumbnail(final, opts.thumbWidth), thumbName); err != nil {
			return err
		}
		logger.Printf("Thumbnail saved as %s\n", thumbName)
	}

	if opts.upload {
		if err := uploadRender(ctx, opts.config.S3, filename, encoded.Bytes(), format, logger); err != nil {
			return err
		}
	}

	return nil
}

// createScene resolves a scene name or a path to a JSON scene file
func createScene(name, scenesDir string) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("scene name must not be empty")
	}
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return scene.LoadFile(name)
	}
	return scene.Create(name, scenesDir)
}

// samplingConfig layers PT_* environment values and explicit flags over the scene's settings.
// The image size is then fitted to the scene's camera.
func samplingConfig(s *scene.Scene, overrides map[string]int64) (renderer.SamplingConfig, error) {
	// Size starts unset so only explicit values reach FitImage
	base := s.SamplingConfig
	base.Width, base.Height = 0, 0

	sampling, err := config.ApplySamplingEnv(base, os.LookupEnv)
	if err != nil {
		return sampling, err
	}

	for name, v := range overrides {
		switch name {
		case "width":
			sampling.Width = int(v)
		case "height":
			sampling.Height = int(v)
		case "samples":
			sampling.SamplesPerPixel = int(v)
		case "max-depth":
			sampling.MaxDepth = int(v)
		case "seed":
			sampling.Seed = v
		case "workers":
			sampling.NumWorkers = int(v)
		case "tile-size":
			sampling.TileSize = int(v)
		}
	}

	sampling.Width, sampling.Height, err = s.FitImage(sampling.Width, sampling.Height)
	if err != nil {
		return sampling, err
	}
	return sampling, sampling.Validate()
}

// outputFilename returns the explicit output path or a timestamped one under the output directory
func outputFilename(opts options, sceneName string, now time.Time) (string, error) {
	if opts.outputPath != "" {
		return opts.outputPath, nil
	}
	format := strings.ToLower(opts.format)
	if output.ContentType(format) == "application/octet-stream" {
		return "", fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, opts.format)
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join(opts.config.OutputDir, sceneName, fmt.Sprintf("render_%s.%s", timestamp, format)), nil
}

// statsCaption summarizes a render in one line
func statsCaption(sceneName string, stats renderer.RenderStats) string {
	return fmt.Sprintf("%s | %d spp | %d workers | %v", sceneName, stats.SamplesPerPixel, stats.Workers,
		stats.Duration.Round(time.Millisecond))
}

func writeFile(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("error saving %s: %w", filename, err)
	}
	return nil
}

func uploadRender(ctx context.Context, s3Config storage.S3Config, filename string, data []byte, format string, logger core.Logger) error {
	uploader, err := storage.NewS3Uploader(s3Config, logger)
	if err != nil {
		return err
	}
	_, err = uploader.Upload(ctx, filepath.Base(filename), data, output.ContentType(format))
	return err
}
