package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/alignment"
	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/fetch"
	"clipforge/internal/jobs"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/outputs"
	"clipforge/internal/overlay"
	"clipforge/internal/segmentation"
	"clipforge/internal/speech"
)

// Daemon wires the composition pipeline, the synchronous engines, and the
// HTTP API into one lifecycle. A flock on the log directory prevents two
// instances from sharing a workspace.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lock     *flock.Flock
	lockPath string

	catalog      *outputs.Catalog
	fetcher      *fetch.Fetcher
	engine       *media.FFmpeg
	orchestrator *jobs.Orchestrator
	splitter     *segmentation.Service
	karaoke      *alignment.Service
	api          *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New builds a daemon from configuration. Nothing starts until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipforge.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		lock:     flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// Start acquires the workspace lock, opens the artifact catalog, and begins
// serving the API. It returns once the daemon is running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipforge daemon instance is already running")
	}

	statuses := deps.CheckBinaries(deps.Requirements(d.cfg.Media))
	for _, status := range statuses {
		if status.Available {
			continue
		}
		d.logger.Warn("external tool unavailable",
			logging.String("tool", status.Name),
			logging.String("detail", status.Detail))
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		d.logger.Error("required tools unavailable, jobs will fail until installed",
			logging.String("tools", strings.Join(missing, ", ")))
	}

	catalog, err := outputs.Open(d.cfg.Paths.LogDir)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("open outputs catalog: %w", err)
	}
	d.catalog = catalog

	d.engine = media.NewFFmpeg(d.cfg.Media, d.logger)
	d.fetcher = fetch.New(fetch.Options{
		StagingDir: d.cfg.Paths.StagingDir,
		Timeout:    time.Duration(d.cfg.Workflow.FetchTimeoutSeconds) * time.Second,
		MaxBytes:   d.cfg.Workflow.MaxSourceBytes,
	})
	d.orchestrator = jobs.NewOrchestrator(jobs.Options{
		Fetcher:     d.fetcher,
		Engine:      d.engine,
		Catalog:     catalog,
		Logger:      d.logger,
		OutputDir:   d.cfg.Paths.OutputDir,
		FrameWidth:  d.cfg.Media.FrameWidth,
		FrameHeight: d.cfg.Media.FrameHeight,
	})

	detector := segmentation.NewDetector(segmentation.DetectorConfig{
		MinSilenceMs: d.cfg.Segmentation.MinSilenceMs,
		NoiseDb:      d.cfg.Segmentation.NoiseDb,
	}, d.cfg.Media.FFmpegBinary)
	d.splitter = segmentation.NewService(detector, d.engine, segmentation.Options{
		MaxParts:     d.cfg.Segmentation.MaxParts,
		MinSegmentMs: d.cfg.Segmentation.MinSegmentMs,
	}, d.logger)

	transcriber := speech.NewWhisperX(speech.Config{
		Model:       d.cfg.Speech.Model,
		CUDAEnabled: d.cfg.Speech.CUDAEnabled,
		VADMethod:   d.cfg.Speech.VADMethod,
	}, filepath.Join(d.cfg.Paths.StagingDir, "transcribe"))
	d.karaoke = alignment.NewService(transcriber, d.engine, alignment.OverlayOptions{
		Mode:         alignment.OverlayModeLine,
		WordsPerLine: d.cfg.Alignment.WordsPerLine,
		Style: overlay.Style{
			FontSize:    d.cfg.Alignment.FontSize,
			FontColor:   d.cfg.Alignment.FontColor,
			StrokeColor: d.cfg.Alignment.StrokeColor,
			StrokeWidth: d.cfg.Alignment.StrokeWidth,
			Padding:     d.cfg.Alignment.Padding,
		},
		AnchorY: d.cfg.Media.FrameHeight - 100,
	}, d.logger)

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.api = newAPIServer(d.cfg.Paths.APIBind, d, d.logger)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = catalog.Close()
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("clipforge daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))
	return nil
}

// Stop shuts the API down, waits for in-flight jobs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.api != nil {
		d.api.stop()
	}
	if d.orchestrator != nil {
		d.orchestrator.Wait()
	}
	if d.catalog != nil {
		_ = d.catalog.Close()
	}
	_ = d.lock.Unlock()
	d.running.Store(false)
	d.logger.Info("clipforge daemon stopped")
}

// Status summarizes daemon health for the API and CLI.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	CatalogPath  string
	ActiveJobs   int
	TerminalJobs int
}

// Status reports current daemon state.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
	}
	if d.catalog != nil {
		status.CatalogPath = d.catalog.Path()
	}
	if d.orchestrator != nil {
		status.ActiveJobs, status.TerminalJobs = d.orchestrator.Registry().Counts()
	}
	return status
}
