package board

import (
	"context"
	"sync"

	"shenanigigs/common/errors"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/models"
	"shenanigigs/services/board/internal/source"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("shenanigigs/board/board")

// LoadFailureFallback is shown when a failed load carries no message.
const LoadFailureFallback = "Error Loading Job Postings"

type Status string

const (
	StatusNotLoaded      Status = "not-loaded"
	StatusLoading        Status = "loading"
	StatusReady          Status = "ready"
	StatusReadyWithError Status = "ready-with-error"
)

// Snapshot is a copy of everything the rendering layer needs.
type Snapshot struct {
	Columns            []models.Column           `json:"columns"`
	Rows               []models.Row              `json:"rows"`
	DepartmentOptions  []models.DepartmentOption `json:"departmentOptions"`
	SelectedDepartment string                    `json:"selectedDepartment"`
	Loading            bool                      `json:"loading"`
	Error              string                    `json:"error,omitempty"`
	Status             Status                    `json:"status"`
	TotalRows          int                       `json:"totalRows"`
}

// Board is one live instance of the posting board. Loads are serialized;
// a closed board ignores completions of loads still in flight.
type Board struct {
	source source.Source
	logger *zap.Logger

	loadMu sync.Mutex
	wg     sync.WaitGroup

	mu       sync.Mutex
	rows     []models.Row
	options  []models.DepartmentOption
	selected string
	filtered []models.Row
	loading  bool
	errMsg   string
	status   Status
	closed   bool
}

func New(src source.Source, logger *zap.Logger) *Board {
	return &Board{
		source:   src,
		logger:   logger,
		options:  BuildDepartmentOptions(nil),
		selected: models.AllDepartments,
		filtered: []models.Row{},
		status:   StatusNotLoaded,
	}
}

// Start runs Load in the background. The load is detached from ctx
// cancellation so it outlives the request that created the board.
func (b *Board) Start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.Load(context.WithoutCancel(ctx))
	}()
}

// Wait blocks until every load started with Start has finished.
func (b *Board) Wait() {
	b.wg.Wait()
}

// Load fetches all postings and rebuilds the board. Failures are absorbed
// into the board's error message.
func (b *Board) Load(ctx context.Context) {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()

	ctx, span := tracer.Start(ctx, "Board.Load")
	defer span.End()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.loading = true
	b.status = StatusLoading
	b.mu.Unlock()

	postings, err := b.source.GetAllJobPostings(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Debug("discarding load result for closed board")
		return
	}

	if err != nil {
		span.RecordError(err)
		b.logger.Error("Error loading job postings", zap.Error(err))
		b.errMsg = errors.PublicMessage(err, LoadFailureFallback)
		b.loading = false
		b.status = StatusReadyWithError
		return
	}

	b.logger.Debug("postings from source", zap.Int("count", len(postings)))

	rows := MapPostings(postings)
	b.rows = rows
	b.options = BuildDepartmentOptions(rows)
	b.filtered = FilterRows(rows, b.selected)
	b.errMsg = ""
	b.loading = false
	b.status = StatusReady

	span.SetAttributes(
		telemetry.Int("postings.count", len(postings)),
		telemetry.Int("departments.count", len(b.options)-1),
	)
	b.logger.Debug("mapped postings",
		zap.Int("rows", len(rows)),
		zap.Int("departments", len(b.options)-1),
		zap.Int("filtered", len(b.filtered)))
}

// Select stores the department and re-filters. Unknown values are accepted
// and simply match nothing.
func (b *Board) Select(department string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selected = department
	b.filtered = FilterRows(b.rows, department)
}

// Close marks the board as torn down.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *Board) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

func (b *Board) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Rows returns a copy of all loaded rows, unfiltered.
func (b *Board) Rows() []models.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Row{}, b.rows...)
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Columns:            models.Columns(),
		Rows:               append([]models.Row{}, b.filtered...),
		DepartmentOptions:  append([]models.DepartmentOption{}, b.options...),
		SelectedDepartment: b.selected,
		Loading:            b.loading,
		Error:              b.errMsg,
		Status:             b.status,
		TotalRows:          len(b.rows),
	}
}
