// Package app wires the core packages into the operations the CLI exposes:
// batch validation, diffing, migration planning, querying and catalog
// analysis over manifest files.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/contractkit/protokit-go/internal/cache"
	"github.com/contractkit/protokit-go/internal/catalog"
	"github.com/contractkit/protokit-go/internal/config"
	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/loader"
	"github.com/contractkit/protokit-go/internal/migrate"
	"github.com/contractkit/protokit-go/internal/output"
	"github.com/contractkit/protokit-go/internal/protocol"
	"github.com/contractkit/protokit-go/internal/utils"
	"github.com/contractkit/protokit-go/internal/validator"
)

// Engine coordinates loading, validation, diffing and catalog analysis
type Engine struct {
	cfg      *config.Config
	log      *utils.Logger
	loader   *loader.Loader
	registry *validator.Registry
	cache    domain.Cache
	progress bool
}

// Options configures an engine
type Options struct {
	Config   *config.Config
	Logger   *utils.Logger
	Registry *validator.Registry // nil means the builtin registry
	Progress bool                // render a progress bar on batch operations
}

// New creates an engine. The result cache is opened when enabled in config;
// a cache that fails to open degrades to uncached operation with a warning.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	log = log.WithComponent("engine")

	registry := opts.Registry
	if registry == nil {
		registry = validator.NewDefaultRegistry()
	}

	e := &Engine{
		cfg:      cfg,
		log:      log,
		loader:   loader.NewLoader(),
		registry: registry,
		progress: opts.Progress,
	}

	if cfg.Cache.Enabled {
		c, err := cache.NewBadgerCache(cache.Options{
			Directory: cfg.Cache.Directory,
			InMemory:  cfg.Cache.InMemory,
		})
		if err != nil {
			log.Warn().Err(err).Msg("cache unavailable, running uncached")
		} else {
			e.cache = c
		}
	}

	return e
}

// Close releases engine resources
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// ValidateFiles loads and validates every manifest at the given paths.
// Reports come back in load order; ok is true only when every file passed.
func (e *Engine) ValidateFiles(ctx context.Context, paths []string) ([]output.ValidationEntry, bool, error) {
	entries, err := e.loader.LoadPaths(paths)
	if err != nil {
		return nil, false, err
	}

	bar := e.newBar(len(entries), "validating")
	reports, errs := utils.ParallelMap(ctx, entries, e.cfg.Concurrency.Workers,
		func(ctx context.Context, entry loader.Entry) (domain.Report, error) {
			defer barAdd(bar)
			return e.validateManifest(ctx, entry.Manifest), nil
		})
	if err := utils.FirstError(errs); err != nil {
		return nil, false, err
	}

	ok := true
	out := make([]output.ValidationEntry, len(entries))
	for i, entry := range entries {
		if !reports[i].OK {
			ok = false
		}
		out[i] = output.ValidationEntry{Path: entry.Path, Report: reports[i]}
	}
	return out, ok, nil
}

// validateManifest runs the configured validator selection against one
// manifest, consulting the result cache keyed by the instance digest.
func (e *Engine) validateManifest(ctx context.Context, m domain.Manifest) domain.Report {
	inst := protocol.New(m)
	only := e.cfg.Validators.Only

	var key string
	if e.cache != nil {
		key = cache.ValidateKey(inst.Hash(), only...)
		if data, err := e.cache.Get(ctx, key); err == nil {
			var report domain.Report
			if json.Unmarshal(data, &report) == nil {
				return report
			}
		}
	}

	report := inst.Validate(e.registry, only...)

	if e.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := e.cache.Set(ctx, key, data, e.cfg.Cache.TTL); err != nil {
				e.log.Debug().Err(err).Msg("cache write failed")
			}
		}
	}
	return report
}

// DiffFiles diffs two manifest files
func (e *Engine) DiffFiles(fromPath, toPath string) (*domain.DiffResult, error) {
	from, err := e.loader.Load(fromPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fromPath, err)
	}
	to, err := e.loader.Load(toPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", toPath, err)
	}
	return protocol.New(from).Diff(protocol.New(to)), nil
}

// DiffAgainstGitBase diffs a manifest file against its content at a git
// revision, so a working-tree edit can be classified before it is committed.
func (e *Engine) DiffAgainstGitBase(path, rev string) (*domain.DiffResult, error) {
	baseData, ext, err := gitFileAt(path, rev)
	if err != nil {
		return nil, err
	}
	base, err := e.loader.LoadFromBytes(baseData, ext)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", path, rev, err)
	}
	current, err := e.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return protocol.New(base).Diff(protocol.New(current)), nil
}

// MigrateFiles derives a migration plan from the diff of two manifest files
func (e *Engine) MigrateFiles(fromPath, toPath string) (domain.MigrationPlan, error) {
	d, err := e.DiffFiles(fromPath, toPath)
	if err != nil {
		return domain.MigrationPlan{}, err
	}
	return migrate.Plan(d), nil
}

// QueryFiles returns the paths of manifests matching the query expression
func (e *Engine) QueryFiles(paths []string, expr string) ([]string, error) {
	entries, err := e.loader.LoadPaths(paths)
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, entry := range entries {
		if protocol.New(entry.Manifest).Match(expr) {
			matched = append(matched, entry.Path)
		}
	}
	return matched, nil
}

// CatalogReport builds a catalog over the manifests at the given paths and
// runs the graph analyses.
func (e *Engine) CatalogReport(ctx context.Context, paths []string) (domain.CatalogReport, error) {
	entries, err := e.loader.LoadPaths(paths)
	if err != nil {
		return domain.CatalogReport{}, err
	}

	bar := e.newBar(len(entries), "indexing")
	instances, errs := utils.ParallelMap(ctx, entries, e.cfg.Concurrency.Workers,
		func(_ context.Context, entry loader.Entry) (*protocol.Instance, error) {
			defer barAdd(bar)
			return protocol.New(entry.Manifest), nil
		})
	if err := utils.FirstError(errs); err != nil {
		return domain.CatalogReport{}, err
	}

	start := time.Now()
	report := catalog.New(instances).Report()
	e.log.Debug().
		Int("instances", report.Instances).
		Int("cycles", len(report.Cycles)).
		Dur("took", time.Since(start)).
		Msg("catalog analysis complete")
	return report, nil
}

func (e *Engine) newBar(n int, label string) *progressbar.ProgressBar {
	if !e.progress || n == 0 {
		return nil
	}
	return progressbar.Default(int64(n), label)
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}
