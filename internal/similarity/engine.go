package similarity

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/cutekitek/rankode-jplag/internal/config"
	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/pkg/files"
	"github.com/pkg/errors"
)

// ReportPublisher copies a finished report directory somewhere else, e.g. object storage.
type ReportPublisher interface {
	PublishReport(ctx context.Context, dir, key string) error
}

// Engine stages submissions, runs the analyzer and locates the produced report.
// Runs for different report keys may proceed concurrently; runs for the same
// key are serialized within the process.
type Engine struct {
	cfg       config.RunConfig
	analyzer  Analyzer
	publisher ReportPublisher
	logger    *slog.Logger
	locks     keyedMutex
}

// NewEngine creates an engine. publisher may be nil.
func NewEngine(cfg config.RunConfig, analyzer Analyzer, publisher ReportPublisher) *Engine {
	return &Engine{
		cfg:       cfg,
		analyzer:  analyzer,
		publisher: publisher,
		logger:    slog.Default(),
	}
}

func (e *Engine) Config() config.RunConfig {
	return e.cfg
}

func (e *Engine) Run(ctx context.Context, req *dto.RunRequest) (*dto.RunResult, error) {
	key := ReportKey{Run: req.RunKey, Unit: req.UnitKey, Language: req.Language}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	unlock := e.locks.lock(key.String())
	defer unlock()

	workspace, err := e.acquireWorkspace()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			e.logger.Error("failed to remove workspace", "path", workspace, "error", err)
		}
	}()

	authors, err := Stage(workspace, req.Submissions, e.cfg.Extension(req.Language))
	if err != nil {
		return nil, err
	}
	count := len(authors)
	if count == 0 {
		return &dto.RunResult{}, nil
	}

	reportDir := ReportDir(e.cfg, key)
	if err := files.ResetDir(reportDir); err != nil {
		return nil, &StagingIOError{Path: reportDir, Err: err}
	}
	if count < 2 {
		e.logger.Info("not enough submissions for jplag", "report", key.String(), "authors", count)
		// Publishing the empty directory drops a mirrored report from an earlier run.
		e.publish(ctx, reportDir, key)
		return &dto.RunResult{SubmissionCount: count}, nil
	}

	if err := e.analyzer.Invoke(ctx, e.cfg, req.Language, workspace, ResultTarget(e.cfg, key)); err != nil {
		return nil, err
	}

	if e.cfg.ViewerURLPrefix == "" && e.cfg.ViewerAssetsDir != "" {
		if err := files.CopyDir(e.cfg.ViewerAssetsDir, reportDir); err != nil {
			return nil, &StagingIOError{Path: reportDir, Err: err}
		}
	}

	e.publish(ctx, reportDir, key)

	url := ReportURL(e.cfg, key)
	e.logger.Info("jplag report ready", "report", key.String(), "authors", count, "url", url)
	return &dto.RunResult{ReportURL: url, HasReport: true, SubmissionCount: count}, nil
}

func (e *Engine) publish(ctx context.Context, dir string, key ReportKey) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishReport(ctx, dir, key.String()); err != nil {
		e.logger.Error("failed to publish report", "report", key.String(), "error", err)
	}
}

func (e *Engine) acquireWorkspace() (string, error) {
	if e.cfg.ScratchRoot != "" {
		if err := os.MkdirAll(e.cfg.ScratchRoot, 0o755); err != nil {
			return "", &StagingIOError{Path: e.cfg.ScratchRoot, Err: err}
		}
	}
	dir, err := os.MkdirTemp(e.cfg.ScratchRoot, "jplag-")
	if err != nil {
		return "", &StagingIOError{Path: e.cfg.ScratchRoot, Err: errors.Wrap(err, "failed to create workspace")}
	}
	return dir, nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
