package board

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type workerManager struct {
	logger     *zap.Logger
	numWorkers int
}

func newWorkerManager(logger *zap.Logger, numWorkers int) *workerManager {
	return &workerManager{
		logger:     logger,
		numWorkers: numWorkers,
	}
}

// reload fans boards out to a fixed pool and waits for all loads to finish.
// Boards closed before their turn are skipped.
func (w *workerManager) reload(ctx context.Context, boards []*Board) int {
	var (
		wg       sync.WaitGroup
		reloaded int32
	)
	boardChan := make(chan *Board)

	for i := 0; i < w.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range boardChan {
				if !b.Live() {
					continue
				}
				b.Load(ctx)
				atomic.AddInt32(&reloaded, 1)
			}
		}()
	}

	for _, b := range boards {
		boardChan <- b
	}
	close(boardChan)
	wg.Wait()

	return int(reloaded)
}
