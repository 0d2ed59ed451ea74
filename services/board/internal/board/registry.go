package board

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"shenanigigs/common/session"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/source"

	"go.uber.org/zap"
)

var (
	ErrRegistryClosed = stderrors.New("board registry is closed")
	ErrRegistryFull   = stderrors.New("board registry is full")
)

const selectionKeyPrefix = "board:selection:"

type RegistryOptions struct {
	IdleTimeout   time.Duration
	SelectionTTL  time.Duration
	ReloadWorkers int
	// MaxBoards caps live boards. Zero means no cap.
	MaxBoards int
}

type entry struct {
	board    *Board
	lastUsed time.Time
}

// Registry owns one Board per viewer session.
type Registry struct {
	source  source.Source
	store   session.Store
	logger  *zap.Logger
	opts    RegistryOptions
	now     func() time.Time
	workers *workerManager

	mu     sync.Mutex
	boards map[string]*entry
	closed bool
}

func NewRegistry(src source.Source, store session.Store, logger *zap.Logger, opts RegistryOptions) *Registry {
	if opts.ReloadWorkers < 1 {
		opts.ReloadWorkers = 1
	}
	r := &Registry{
		source: src,
		store:  store,
		logger: logger,
		opts:   opts,
		now:    time.Now,
		boards: make(map[string]*entry),
	}
	r.workers = newWorkerManager(logger, opts.ReloadWorkers)
	return r
}

func selectionKey(sessionID string) string {
	return selectionKeyPrefix + sessionID
}

// Acquire returns the session's board, creating and starting one if needed.
// A new board restores the session's persisted selection before loading.
func (r *Registry) Acquire(ctx context.Context, sessionID string) (*Board, error) {
	if b, err := r.lookup(sessionID); b != nil || err != nil {
		return b, err
	}

	selected := r.restoreSelection(ctx, sessionID)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if e, ok := r.boards[sessionID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.board, nil
	}
	if r.opts.MaxBoards > 0 && len(r.boards) >= r.opts.MaxBoards {
		r.mu.Unlock()
		r.logger.Warn("board limit reached",
			zap.String("session", sessionID),
			zap.Int("max_boards", r.opts.MaxBoards))
		return nil, ErrRegistryFull
	}
	b := New(r.source, r.logger.With(zap.String("session", sessionID)))
	if selected != "" {
		b.Select(selected)
	}
	r.boards[sessionID] = &entry{board: b, lastUsed: r.now()}
	r.mu.Unlock()

	r.logger.Debug("created board",
		zap.String("session", sessionID),
		zap.String("selected", b.Selected()))
	b.Start(ctx)
	return b, nil
}

func (r *Registry) lookup(sessionID string) (*Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if e, ok := r.boards[sessionID]; ok {
		e.lastUsed = r.now()
		return e.board, nil
	}
	return nil, nil
}

func (r *Registry) restoreSelection(ctx context.Context, sessionID string) string {
	var selected string
	err := r.store.Get(ctx, selectionKey(sessionID), &selected)
	if err == nil {
		return selected
	}
	if !stderrors.Is(err, session.ErrNotFound) {
		r.logger.Warn("failed to restore selection", zap.String("session", sessionID), zap.Error(err))
	}
	return ""
}

// Select applies a department to the session's board and persists it.
// A persistence failure is logged; the board still reflects the selection.
func (r *Registry) Select(ctx context.Context, sessionID, department string) (*Board, error) {
	b, err := r.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	b.Select(department)

	if err := r.store.Set(ctx, selectionKey(sessionID), department, r.opts.SelectionTTL); err != nil {
		r.logger.Warn("failed to persist selection",
			zap.String("session", sessionID),
			zap.String("department", department),
			zap.Error(err))
	}
	return b, nil
}

// ReloadAll reloads every live board and returns how many were reloaded.
func (r *Registry) ReloadAll(ctx context.Context) int {
	ctx, span := tracer.Start(ctx, "Registry.ReloadAll")
	defer span.End()

	r.mu.Lock()
	boards := make([]*Board, 0, len(r.boards))
	for _, e := range r.boards {
		boards = append(boards, e.board)
	}
	r.mu.Unlock()

	reloaded := r.workers.reload(ctx, boards)
	span.SetAttributes(telemetry.Int("boards.reloaded", reloaded))
	r.logger.Info("reloaded boards", zap.Int("count", reloaded))
	return reloaded
}

// Sweep closes and forgets boards idle since before now minus IdleTimeout.
func (r *Registry) Sweep(now time.Time) int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.boards {
		if now.Sub(e.lastUsed) >= r.opts.IdleTimeout {
			e.board.Close()
			delete(r.boards, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("swept idle boards", zap.Int("count", removed))
	}
	return removed
}

// RunJanitor sweeps idle boards every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// Close tears down every board. Further Acquire calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, e := range r.boards {
		e.board.Close()
		delete(r.boards, id)
	}
}
