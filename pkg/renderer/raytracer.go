package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// ErrInvalidConfig is returned for sampling configurations that cannot be rendered
var ErrInvalidConfig = errors.New("invalid sampling configuration")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Seed of the random streams, 0 = derive from the clock
	NumWorkers      int   // Parallel tile workers: 1 = synchronous, <= 0 = one per CPU
	TileSize        int   // Edge length of a square tile in pixels
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
		MaxDepth:        integrator.DefaultMaxDepth,
		Seed:            0,
		NumWorkers:      1,
		TileSize:        32,
	}
}

// Validate rejects configurations that would produce an empty or garbage image
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalidConfig, c.TileSize)
	}
	return nil
}

// Scene is what the renderer needs from a scene
type Scene interface {
	GetCamera() core.Camera
	GetWorld() core.Hittable
	GetBackground() integrator.GradientBackground
}

// SamplerFactory creates the random stream for one tile
type SamplerFactory func(seed int64) core.Sampler

// ProgressFunc is called after each tile completes
type ProgressFunc func(completedTiles, totalTiles int)

// Option configures a Raytracer
type Option func(*Raytracer)

// WithLogger sets the logger for render output
func WithLogger(logger core.Logger) Option {
	return func(rt *Raytracer) { rt.logger = logger }
}

// WithProgress sets the per-tile progress callback
func WithProgress(progress ProgressFunc) Option {
	return func(rt *Raytracer) { rt.progress = progress }
}

// WithSamplerFactory replaces the seeded math/rand sampler, e.g. with a deterministic one in tests
func WithSamplerFactory(factory SamplerFactory) Option {
	return func(rt *Raytracer) { rt.newSampler = factory }
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	integrator integrator.Integrator
	logger     core.Logger
	progress   ProgressFunc
	newSampler SamplerFactory
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, config SamplingConfig, opts ...Option) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if scene == nil || scene.GetCamera() == nil || scene.GetWorld() == nil {
		return nil, fmt.Errorf("%w: scene must provide a camera and a world", ErrInvalidConfig)
	}

	rt := &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth, scene.GetBackground()),
		logger:     NewNopLogger(),
		newSampler: func(seed int64) core.Sampler { return core.NewSeededSampler(seed) },
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Render produces width*height pixels in row-major order, top scanline first
func (rt *Raytracer) Render(ctx context.Context) ([]RGB, RenderStats, error) {
	startTime := time.Now()

	seed := rt.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	width, height := rt.config.Width, rt.config.Height
	pixels := make([]RGB, width*height)
	tiles := NewTileGrid(width, height, rt.config.TileSize)
	tileRenderer := NewTileRenderer(rt.scene.GetCamera(), rt.scene.GetWorld(), rt.integrator,
		width, height, rt.config.SamplesPerPixel)

	stats := RenderStats{
		SamplesPerPixel: rt.config.SamplesPerPixel,
		Workers:         rt.config.NumWorkers,
		Seed:            seed,
	}

	var err error
	if rt.config.NumWorkers == 1 {
		rt.logger.Printf("Rendering %dx%d with %d samples per pixel (1 worker)...\n",
			width, height, rt.config.SamplesPerPixel)
		err = rt.renderSerial(ctx, tileRenderer, tiles, seed, pixels, &stats)
	} else {
		err = rt.renderParallel(ctx, tileRenderer, tiles, seed, pixels, &stats)
	}
	if err != nil {
		return nil, stats, err
	}

	stats.finalize()
	stats.Duration = time.Since(startTime)
	rt.logger.Printf("Render completed in %v (%d samples)\n", stats.Duration, stats.TotalSamples)

	return pixels, stats, nil
}

// renderSerial renders all tiles in order on the calling goroutine
func (rt *Raytracer) renderSerial(ctx context.Context, tileRenderer *TileRenderer, tiles []*Tile, seed int64, pixels []RGB, stats *RenderStats) error {
	for i, tile := range tiles {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render cancelled after %d of %d tiles: %w", i, len(tiles), err)
		}
		stats.merge(tileRenderer.RenderTile(tile, pixels, rt.newSampler(tile.Seed(seed))))
		rt.reportProgress(i+1, len(tiles))
	}
	return nil
}

// renderParallel distributes tiles over the worker pool
func (rt *Raytracer) renderParallel(ctx context.Context, tileRenderer *TileRenderer, tiles []*Tile, seed int64, pixels []RGB, stats *RenderStats) error {
	pool := NewWorkerPool(tileRenderer, rt.newSampler, rt.config.NumWorkers, len(tiles))
	stats.Workers = pool.GetNumWorkers()

	rt.logger.Printf("Rendering %dx%d with %d samples per pixel (%d workers)...\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, pool.GetNumWorkers())

	pool.Start(ctx)
	for _, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Seed: tile.Seed(seed), Pixels: pixels})
	}
	go pool.Stop()

	var firstErr error
	completed := 0
	for result := range pool.Results() {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.merge(result.Stats)
		completed++
		rt.reportProgress(completed, len(tiles))
	}

	if firstErr != nil {
		return fmt.Errorf("render cancelled after %d of %d tiles: %w", completed, len(tiles), firstErr)
	}
	return nil
}

func (rt *Raytracer) reportProgress(completed, total int) {
	if rt.progress != nil {
		rt.progress(completed, total)
	}
}

// RenderImage renders the scene into an RGBA image
func (rt *Raytracer) RenderImage(ctx context.Context) (*image.RGBA, RenderStats, error) {
	pixels, stats, err := rt.Render(ctx)
	if err != nil {
		return nil, stats, err
	}
	return ToImage(pixels, rt.config.Width, rt.config.Height), stats, nil
}

// ToImage wraps row-major pixels in an opaque RGBA image
func ToImage(pixels []RGB, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[y*width+x]
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}
