package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "image", "upload", "error", "complete"
	Data string `json:"data"` // JSON-encoded data or a plain message
}

// ProgressUpdate reports completed tiles
type ProgressUpdate struct {
	CompletedTiles int   `json:"completedTiles"`
	TotalTiles     int   `json:"totalTiles"`
	ElapsedMs      int64 `json:"elapsedMs"`
}

// ImageUpdate carries the finished render
type ImageUpdate struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
}

// UploadUpdate reports where the render was stored
type UploadUpdate struct {
	Key string `json:"key"`
}

// handleRender renders a scene while streaming progress, console output and the final image via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Single writer goroutine owns the ResponseWriter
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(ctx, w, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.Upload && s.uploader == nil {
		s.handleError(ctx, sseEventChan, "Invalid request: uploads are not configured")
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
		close(consoleDone)
	}()
	defer func() {
		close(consoleChan)
		<-consoleDone
	}()

	sceneObj, sampling, err := s.setupRender(req)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	raytracer, err := renderer.NewRaytracer(sceneObj, sampling,
		renderer.WithLogger(webLogger),
		renderer.WithProgress(func(done, total int) {
			s.sendEvent(ctx, sseEventChan, "progress", ProgressUpdate{
				CompletedTiles: done,
				TotalTiles:     total,
				ElapsedMs:      time.Since(startTime).Milliseconds(),
			})
		}))
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	img, stats, err := raytracer.RenderImage(ctx)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	if err := s.sendImage(ctx, sseEventChan, img, req.ThumbWidth); err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	if req.Upload {
		key, err := s.uploadRender(ctx, sceneObj.Name, img, webLogger)
		if err != nil {
			s.handleError(ctx, sseEventChan, fmt.Sprintf("Upload failed: %v", err))
			return
		}
		s.sendEvent(ctx, sseEventChan, "upload", UploadUpdate{Key: key})
	}

	s.sendEvent(ctx, sseEventChan, "complete", renderStats(stats, sceneObj))
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents writes events until the channel is closed. Once the client is gone
// events are drained without writing.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for event := range sseEventChan {
		if ctx.Err() != nil {
			continue
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			// Client disconnected during write
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages until the console channel is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		}
	}
}

// sendImage encodes the render (optionally downscaled) and sends it as an image event
func (s *Server) sendImage(ctx context.Context, sseEventChan chan<- SSEEvent, img *image.RGBA, thumbWidth int) error {
	var final image.Image = img
	if thumbWidth > 0 {
		final = output.Thumbnail(img, uint(thumbWidth))
	}

	imageData, err := s.imageToBase64PNG(final)
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	s.sendEvent(ctx, sseEventChan, "image", ImageUpdate{
		Width:     final.Bounds().Dx(),
		Height:    final.Bounds().Dy(),
		ImageData: imageData,
	})
	return nil
}

// uploadRender stores the full-size PNG in the configured bucket
func (s *Server) uploadRender(ctx context.Context, sceneName string, img image.Image, logger core.Logger) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("uploads are not configured")
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, img, "png"); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s/render_%s.png", sceneName, time.Now().Format("20060102_150405"))
	key, err := s.uploader.Upload(ctx, name, buf.Bytes(), output.ContentType("png"))
	if err != nil {
		return "", err
	}
	logger.Printf("Uploaded render as %s\n", key)
	return key, nil
}

// renderStats converts renderer statistics for the client
func renderStats(stats renderer.RenderStats, sceneObj *scene.Scene) Stats {
	return Stats{
		TotalPixels:     stats.TotalPixels,
		TotalSamples:    stats.TotalSamples,
		AverageSamples:  stats.AverageSamples,
		SamplesPerPixel: stats.SamplesPerPixel,
		Tiles:           stats.Tiles,
		Workers:         stats.Workers,
		Seed:            stats.Seed,
		ElapsedMs:       stats.Duration.Milliseconds(),
		PrimitiveCount:  sceneObj.GetPrimitiveCount(),
	}
}

// sendEvent marshals v and queues it unless the client has gone away
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
