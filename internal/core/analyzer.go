package core

// analyzer.go is the host-facing entry point: it loads files with limits and
// metrics, memoizes aggregations and runs a full batch recompute.
//
// A host calls Recompute on every input change. Nothing is updated
// incrementally; the memo cache only makes repeated identical aggregations
// cheap and never changes a result.

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/usercount/internal/logging"
	"github.com/JonMunkholm/usercount/internal/metrics"
)

// Analyzer defaults.
const (
	DefaultWorkers     = 4
	DefaultCacheSize   = 256
	DefaultMaxFileSize = 100 << 20
)

// AnalyzerConfig configures an Analyzer. Zero values take the defaults.
type AnalyzerConfig struct {
	Workers     int   // parallel per-file analyses in Recompute
	CacheSize   int   // memoized (dataset, selection) results
	MaxFileSize int64 // bytes; larger files fail with ErrFileTooLarge

	// Limiter bounds concurrent parses in LoadFile. Nil means unbounded.
	Limiter *LoadLimiter
}

type memoKey struct {
	dataset   string
	selection uint64
}

// Analyzer loads files and computes results for a host.
// It is safe for concurrent use.
type Analyzer struct {
	workers     int
	maxFileSize int64
	limiter     *LoadLimiter
	memo        *lru.Cache[memoKey, ResultTable]
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cfg AnalyzerConfig) (*Analyzer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	memo, err := lru.New[memoKey, ResultTable](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create aggregation cache: %w", err)
	}

	return &Analyzer{
		workers:     cfg.Workers,
		maxFileSize: cfg.MaxFileSize,
		limiter:     cfg.Limiter,
		memo:        memo,
	}, nil
}

// Limiter returns the load limiter, or nil.
func (a *Analyzer) Limiter() *LoadLimiter {
	return a.limiter
}

// MaxFileSize returns the largest accepted file in bytes.
func (a *Analyzer) MaxFileSize() int64 {
	return a.maxFileSize
}

// LoadFile detects the format of an uploaded file and loads it.
//
// Load failures are returned as *LoadError. A busy limiter returns
// ErrTooManyLoads and a done context returns its error; neither says
// anything about the file itself.
func (a *Analyzer) LoadFile(ctx context.Context, name, contentType string, data []byte) (*Dataset, error) {
	format := DetectFormat(name, contentType, data)
	logger := logging.WithFields(ctx, append(requestAttrs(ctx), "file", name, "format", string(format))...)

	if int64(len(data)) > a.maxFileSize {
		err := newLoadError(name, format,
			fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), a.maxFileSize))
		a.recordLoad(logger, format, err, nil, 0)
		return nil, err
	}

	if a.limiter != nil {
		if err := a.limiter.Acquire(ctx); err != nil {
			logger.Warn("load slot unavailable", "error", err)
			return nil, err
		}
		defer a.limiter.Release()
	}

	metrics.TrackActiveLoad(true)
	defer metrics.TrackActiveLoad(false)

	start := time.Now()
	ds, err := Load(name, data, format)
	a.recordLoad(logger, format, err, ds, time.Since(start))
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (a *Analyzer) recordLoad(logger *slog.Logger, format Format, err error, ds *Dataset, took time.Duration) {
	if err != nil {
		code := MapError(err).Code
		metrics.RecordFileLoad(string(format), code, 0, took)
		logger.Warn("file load failed", "code", code, "error", err)
		return
	}
	metrics.RecordFileLoad(string(format), "ok", ds.Len(), took)
	logger.Info("file loaded",
		"dataset_id", ds.CacheKey(),
		"rows", ds.Len(),
		"duration_ms", took.Milliseconds(),
	)
}

// Aggregate is Aggregate memoized by (dataset identity, selection).
// The returned table is a copy the caller may modify.
func (a *Analyzer) Aggregate(ds *Dataset, sel Selection) ResultTable {
	if ds == nil || !sel.Complete() {
		return ResultTable{}
	}

	key := memoKey{dataset: ds.CacheKey(), selection: sel.Key()}
	if t, ok := a.memo.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return append(ResultTable(nil), t...)
	}
	metrics.RecordCacheLookup(false)

	t := Aggregate(ds, sel)
	a.memo.Add(key, t)
	return append(ResultTable(nil), t...)
}

// Invalidate drops every memoized result for a dataset.
func (a *Analyzer) Invalidate(datasetID string) int {
	removed := 0
	for _, k := range a.memo.Keys() {
		if k.dataset == datasetID && a.memo.Remove(k) {
			removed++
		}
	}
	return removed
}

// Purge drops every memoized result.
func (a *Analyzer) Purge() {
	a.memo.Purge()
}

// CacheLen returns the number of memoized results.
func (a *Analyzer) CacheLen() int {
	return a.memo.Len()
}

// FileInput is one file of a recompute batch: its loaded dataset, or the
// error that prevented loading, plus the choices made for it.
type FileInput struct {
	Name     string
	Dataset  *Dataset
	Err      error
	Settings FileSettings
}

// FileResult is the analysis of one file.
type FileResult struct {
	Name      string         `json:"name"`
	DatasetID string         `json:"datasetId,omitempty"`
	Selection Selection      `json:"selection"`
	Complete  bool           `json:"complete"`
	Table     ResultTable    `json:"table"`
	Warnings  []UnknownValue `json:"warnings,omitempty"`
	Err       error          `json:"-"`
}

// Failed reports whether the file could not be analysed at all.
func (r FileResult) Failed() bool {
	return r.Err != nil
}

// BatchResult is the outcome of one recompute.
type BatchResult struct {
	Files     []FileResult `json:"files"`
	Merged    ResultTable  `json:"merged,omitempty"`
	HasMerged bool         `json:"hasMerged"`
}

// MergedTarget names the merged table in BatchResult.Table.
const MergedTarget = "merged"

// Table returns the table for a target: MergedTarget or a file position.
func (b BatchResult) Table(target string) (ResultTable, bool) {
	if target == MergedTarget {
		return b.Merged, b.HasMerged
	}
	i, err := strconv.Atoi(target)
	if err != nil || i < 0 || i >= len(b.Files) {
		return nil, false
	}
	if b.Files[i].Failed() {
		return nil, false
	}
	return b.Files[i].Table, true
}

// Recompute analyses every input from scratch.
//
// Files are analysed in parallel up to the configured worker count. A file
// that failed to load, or whose selection is incomplete, yields an empty
// table and never affects the others. Files keep input order. When more
// than one file is given the tables are merged.
func (a *Analyzer) Recompute(ctx context.Context, inputs []FileInput, common *CommonFilter) BatchResult {
	start := time.Now()
	logger := logging.WithFields(ctx, requestAttrs(ctx)...)

	results := make([]FileResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = a.analyze(gctx, in, common)
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{Files: results}

	var ok, failed, incomplete, rows int
	for _, r := range results {
		switch {
		case r.Failed():
			failed++
		case !r.Complete:
			incomplete++
		default:
			ok++
		}
		rows += len(r.Table)
	}

	if len(inputs) > 1 {
		tables := make([]ResultTable, 0, len(results))
		for _, r := range results {
			tables = append(tables, r.Table)
		}
		batch.Merged = Merge(tables...)
		batch.HasMerged = true
	}

	took := time.Since(start)
	metrics.RecordRecompute(took, ok, failed, incomplete, rows)
	logger.Info("recompute finished",
		"files", len(inputs),
		"ok", ok,
		"failed", failed,
		"incomplete", incomplete,
		"merged_rows", len(batch.Merged),
		"duration_ms", took.Milliseconds(),
	)

	return batch
}

func (a *Analyzer) analyze(ctx context.Context, in FileInput, common *CommonFilter) FileResult {
	res := FileResult{Name: in.Name, Table: ResultTable{}}

	switch {
	case in.Err != nil:
		res.Err = in.Err
		return res
	case in.Dataset == nil:
		res.Err = newLoadError(in.Name, FormatUnknown, ErrNoFile)
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	ds := in.Dataset
	res.DatasetID = ds.CacheKey()
	res.Selection = ResolveSelection(ds, in.Settings, common)
	res.Complete = res.Selection.Complete()
	if !res.Complete {
		return res
	}

	res.Warnings = UnknownValues(ds, res.Selection)
	res.Table = a.Aggregate(ds, res.Selection)

	if len(res.Warnings) > 0 {
		logging.FromContext(ctx).Debug("selection has unknown values",
			"file", in.Name, "count", len(res.Warnings))
	}
	return res
}

// CommonChoices returns the choice lists for a common filter: the
// dimensions of the first input that loaded. ok is false when none did.
func CommonChoices(inputs []FileInput) (Dimensions, bool) {
	for _, in := range inputs {
		if in.Err == nil && in.Dataset != nil {
			return in.Dataset.Dimensions(), true
		}
	}
	return Dimensions{}, false
}
