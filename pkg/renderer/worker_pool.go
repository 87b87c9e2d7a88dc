package renderer

import (
	"context"
	"runtime"
	"sync"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	Seed   int64 // Seed of the tile's random stream
	Pixels []RGB // Shared output buffer; tiles write disjoint regions
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TileID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID          int
	renderer    *TileRenderer
	newSampler  SamplerFactory
	taskQueue   chan TileTask
	resultQueue chan TileResult
}

// NewWorkerPool creates a worker pool sized for maxTasks queued tiles.
// numWorkers <= 0 uses one worker per CPU.
func NewWorkerPool(tileRenderer *TileRenderer, newSampler SamplerFactory, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask, maxTasks),   // Buffer for all tiles
		resultQueue: make(chan TileResult, maxTasks), // Buffer for all results
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			renderer:    tileRenderer,
			newSampler:  newSampler,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// Stop signals that no more tasks will arrive, waits for the workers and closes the results
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Results returns the channel completed tiles are reported on
func (wp *WorkerPool) Results() <-chan TileResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Drain remaining tasks without rendering once cancelled
		if err := ctx.Err(); err != nil {
			w.resultQueue <- TileResult{TileID: task.Tile.ID, Error: err}
			continue
		}

		stats := w.renderer.RenderTile(task.Tile, task.Pixels, w.newSampler(task.Seed))

		w.resultQueue <- TileResult{
			TileID: task.Tile.ID,
			Stats:  stats,
		}
	}
}
