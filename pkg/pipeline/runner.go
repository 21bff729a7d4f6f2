package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/ocifkit/ocifkit/pkg/cache"
	"github.com/ocifkit/ocifkit/pkg/diagram"
	"github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/observability"
	"github.com/ocifkit/ocifkit/pkg/render/layoutjson"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the checker, cache and logger; it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Checker *validate.Checker
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(checker *validate.Checker, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Checker: checker,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Export runs the complete validate → layout → render pipeline with caching.
// An invalid document yields an *InvalidDocumentError; the returned Result
// still carries the report.
func (r *Runner) Export(ctx context.Context, src []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		DocumentHash: cache.Hash(src),
		Artifacts:    make(map[string][]byte),
	}

	// Stage 1: Validate
	start := time.Now()
	report, hit, err := r.ValidateWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Report = report
	result.Stats.ValidationTime = time.Since(start)
	result.CacheInfo.ValidationHit = hit
	if !report.Valid {
		return result, &InvalidDocumentError{Report: report}
	}

	// Stage 2: Layout
	start = time.Now()
	d, hit, err := r.LayoutWithCacheInfo(ctx, src, report, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.RelationCount = len(d.Relations)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(d.Nodes),
		"relations", len(d.Relations),
		"duration", result.Stats.LayoutTime)
	for _, w := range d.Warnings {
		r.Logger.Warn(w)
	}

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ValidateWithCacheInfo checks src and returns whether the report came from
// the cache. On a cache hit the document is re-parsed so the report can
// still be decoded.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, src []byte, opts Options) (validate.Result, bool, error) {
	if r.Checker == nil {
		return validate.Result{}, false, errors.New(errors.ErrCodeInternal, "runner has no checker")
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnValidateStart(ctx, len(src))
	start := time.Now()

	key := r.Keyer.ValidationKey(cache.Hash(src))
	if !opts.Refresh {
		var cached validate.Result
		if r.cacheGet(ctx, key, "validation", &cached) {
			if cached.Valid {
				doc, _, err := validate.Parse(src)
				if err == nil {
					cached.Document = doc
				}
			}
			if !cached.Valid || cached.Document != nil {
				hooks.OnValidateComplete(ctx, len(cached.Errors), time.Since(start), nil)
				return cached, true, nil
			}
		}
	}

	res, err := r.Checker.Check(src)
	hooks.OnValidateComplete(ctx, len(res.Errors), time.Since(start), err)
	if err != nil {
		return validate.Result{}, false, err
	}
	opts.Logger.Debug("validated document",
		"format", res.Format,
		"valid", res.Valid,
		"errors", len(res.Errors))

	r.cacheSet(ctx, key, "validation", res, cache.ValidationTTL)
	return res, false, nil
}

// Validate is a convenience wrapper that calls ValidateWithCacheInfo and discards the cache hit info.
func (r *Runner) Validate(ctx context.Context, src []byte, opts Options) (validate.Result, error) {
	res, _, err := r.ValidateWithCacheInfo(ctx, src, opts)
	return res, err
}

// LayoutWithCacheInfo lays out a validated document and returns whether the
// diagram came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, src []byte, report validate.Result, opts Options) (*diagram.Diagram, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Connector)
	start := time.Now()

	key := r.Keyer.LayoutKey(cache.Hash(src), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, ok := r.cacheGetRaw(ctx, key, "layout"); ok {
			if l, err := layoutjson.Unmarshal(data); err == nil {
				d := l.Diagram()
				hooks.OnLayoutComplete(ctx, len(d.Nodes), len(d.Relations), time.Since(start), nil)
				return d, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	doc, err := report.Decode()
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, 0, time.Since(start), err)
		return nil, false, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	d := diagram.Layout(doc, opts.DiagramOptions())
	hooks.OnLayoutComplete(ctx, len(d.Nodes), len(d.Relations), time.Since(start), nil)

	if data, err := layoutjson.Render(d); err == nil {
		r.cacheSetRaw(ctx, key, "layout", data, cache.LayoutTTL)
	}
	return d, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, src []byte, report validate.Result, opts Options) (*diagram.Diagram, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, src, report, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *diagram.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := layoutjson.Render(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.cacheGetRaw(ctx, key, "artifact"); ok {
				artifacts[format] = data
			} else {
				missing = append(missing, format)
			}
		}
	} else {
		missing = opts.Formats
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, d, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.cacheSetRaw(ctx, key, "artifact", data, cache.ArtifactTTL)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *diagram.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache Helpers
// =============================================================================

// Cache errors never fail the pipeline; they are logged and treated as misses.

func (r *Runner) cacheGetRaw(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheGet(ctx context.Context, key, keyType string, v any) bool {
	data, ok := r.cacheGetRaw(ctx, key, keyType)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (r *Runner) cacheSetRaw(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.cacheSetRaw(ctx, key, keyType, data, ttl)
}
