package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/df07/go-pathtracer/pkg/storage"
)

// Limits on request parameters
const (
	MaxImageSize = 2000
	MaxSamples   = 10000
	MaxDepth     = 1000
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	scenesDir string
	sampling  renderer.SamplingConfig // Worker count and tile size for web renders
	uploader  *storage.S3Uploader     // nil when uploads are not configured
	staticDir string
}

// NewServer creates a new web server. uploader may be nil.
func NewServer(cfg config.Config, uploader *storage.S3Uploader) *Server {
	return &Server{
		port:      cfg.Port,
		scenesDir: cfg.ScenesDir,
		sampling:  cfg.Sampling,
		uploader:  uploader,
		staticDir: "static/",
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Scene id (e.g., "default")
	Width      int    `json:"width"`      // Image width, 0 = scene default
	Height     int    `json:"height"`     // Image height, 0 = scene default
	Samples    int    `json:"samples"`    // Samples per pixel, 0 = scene default
	MaxDepth   int    `json:"maxDepth"`   // Maximum bounce depth
	Seed       int64  `json:"seed"`       // 0 = derive from the clock
	ThumbWidth int    `json:"thumbWidth"` // Downscale the streamed image, 0 = full size
	Format     string `json:"format"`     // Encoding for /api/image
	Upload     bool   `json:"upload"`     // Upload the result to S3
}

// Stats represents render statistics
type Stats struct {
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	AverageSamples  float64 `json:"averageSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	Tiles           int     `json:"tiles"`
	Workers         int     `json:"workers"`
	Seed            int64   `json:"seed"`
	ElapsedMs       int64   `json:"elapsedMs"`
	PrimitiveCount  int     `json:"primitiveCount"`
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"upload": s.uploader != nil,
	})
}

// handleScenes lists built-in and discovered scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleImage renders synchronously and responds with the encoded image
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}

	sceneObj, sampling, err := s.setupRender(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	raytracer, err := renderer.NewRaytracer(sceneObj, sampling)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	img, stats, err := raytracer.RenderImage(r.Context())
	if err != nil {
		log.Printf("Image render failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	var final image.Image = img
	if req.ThumbWidth > 0 {
		final = output.Thumbnail(img, uint(req.ThumbWidth))
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, final, req.Format); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", output.ContentType(req.Format))
	w.Header().Set("X-Render-Seed", strconv.FormatInt(stats.Seed, 10))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{
		Scene:  query.Get("scene"),
		Format: query.Get("format"),
	}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = "png"
	}

	// Parse and validate all parameters using helper functions
	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 1, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 1, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, MaxDepth); err != nil {
		return nil, err
	}
	if req.ThumbWidth, err = parseIntParam(query, "thumb", 0, 1, MaxImageSize); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	if value := query.Get("upload"); value != "" {
		if req.Upload, err = strconv.ParseBool(value); err != nil {
			return nil, fmt.Errorf("invalid upload: %s", value)
		}
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// setupRender creates the scene and merges the request over the scene's sampling settings.
// The camera is refitted when the request changes the image size.
func (s *Server) setupRender(req *RenderRequest) (*scene.Scene, renderer.SamplingConfig, error) {
	sceneObj, err := scene.Create(req.Scene, s.scenesDir)
	if err != nil {
		return nil, renderer.SamplingConfig{}, err
	}

	sampling := sceneObj.SamplingConfig
	sampling.NumWorkers = s.sampling.NumWorkers
	sampling.TileSize = s.sampling.TileSize
	sampling.Width, sampling.Height, err = sceneObj.FitImage(req.Width, req.Height)
	if err != nil {
		return nil, renderer.SamplingConfig{}, err
	}
	if req.Samples > 0 {
		sampling.SamplesPerPixel = req.Samples
	}
	if req.MaxDepth > 0 {
		sampling.MaxDepth = req.MaxDepth
	}
	sampling.Seed = req.Seed

	return sceneObj, sampling, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := output.Encode(&buf, img, "png"); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeJSON writes a JSON response with CORS enabled
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
