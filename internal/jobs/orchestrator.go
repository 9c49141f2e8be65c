package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/fetch"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/outputs"
	"clipforge/internal/overlay"
	"clipforge/internal/services"
)

// Progress spans per stage. Downloading fills the first span, composition
// the remainder.
const (
	downloadSpan = 60
	composeSpan  = 40
)

// Request is a validated submission for one composition job.
type Request struct {
	Kind      media.ComposeKind
	ImageURLs []string
	ClipURLs  []string
	AudioURL  string
	Overlays  []overlay.Spec
}

// Orchestrator owns job lifecycles: synchronous submission, background
// execution, concurrent status polls. Jobs are never cancelled mid-flight;
// once started they run to completion or failure.
type Orchestrator struct {
	registry    *Registry
	fetcher     *fetch.Fetcher
	engine      media.Engine
	catalog     *outputs.Catalog
	logger      *slog.Logger
	outputDir   string
	frameWidth  int
	frameHeight int
	wg          sync.WaitGroup
}

// Options wires an Orchestrator's collaborators.
type Options struct {
	Registry    *Registry
	Fetcher     *fetch.Fetcher
	Engine      media.Engine
	Catalog     *outputs.Catalog
	Logger      *slog.Logger
	OutputDir   string
	FrameWidth  int
	FrameHeight int
}

// NewOrchestrator builds an orchestrator. The catalog is optional; without
// one completed outputs simply go unrecorded.
func NewOrchestrator(opts Options) *Orchestrator {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		registry:    registry,
		fetcher:     opts.Fetcher,
		engine:      opts.Engine,
		catalog:     opts.Catalog,
		logger:      logger,
		outputDir:   opts.OutputDir,
		frameWidth:  opts.FrameWidth,
		frameHeight: opts.FrameHeight,
	}
}

// Registry exposes the job table for status handlers.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Submit validates a request, registers it as queued, and launches its
// background goroutine. It returns the job id immediately and never blocks
// on network or encode work.
func (o *Orchestrator) Submit(req Request) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	job := &Job{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		Status:      StatusQueued,
		Message:     "queued",
		Sources:     buildSources(req),
		HasAudio:    req.AudioURL != "",
		HasOverlays: len(req.Overlays) > 0,
		CreatedAt:   time.Now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt
	if err := o.registry.Put(job); err != nil {
		return "", err
	}

	o.wg.Add(1)
	go o.run(job.ID, req)
	o.logger.Info("job accepted",
		logging.String(logging.FieldEventType, "job_submitted"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String("kind", string(req.Kind)))
	return job.ID, nil
}

// GetStatus returns a snapshot of one job or a not-found error.
func (o *Orchestrator) GetStatus(id string) (*Job, error) {
	return o.registry.Get(id)
}

// Wait blocks until every in-flight job reaches a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func validateRequest(req Request) error {
	switch req.Kind {
	case media.KindSlideshow:
		if len(req.ImageURLs) == 0 {
			return services.Wrap(services.ErrValidation, "jobs", "submit", "slideshow requires at least one image url", nil)
		}
		if req.AudioURL == "" {
			return services.Wrap(services.ErrValidation, "jobs", "submit", "slideshow requires an audio url", nil)
		}
	case media.KindConcat:
		if len(req.ClipURLs) == 0 {
			return services.Wrap(services.ErrValidation, "jobs", "submit", "concat requires at least one clip url", nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "jobs", "submit", fmt.Sprintf("unknown job kind %q", req.Kind), nil)
	}
	for i, spec := range req.Overlays {
		if err := spec.Validate(); err != nil {
			return services.Wrap(services.ErrValidation, "jobs", "submit", fmt.Sprintf("overlay %d invalid", i), err)
		}
	}
	return nil
}

func buildSources(req Request) []Source {
	sources := make([]Source, 0, len(req.ImageURLs)+len(req.ClipURLs)+1)
	for _, url := range req.ImageURLs {
		sources = append(sources, Source{URL: url, Kind: SourceImage})
	}
	for _, url := range req.ClipURLs {
		sources = append(sources, Source{URL: url, Kind: SourceClip})
	}
	if req.AudioURL != "" {
		sources = append(sources, Source{URL: req.AudioURL, Kind: SourceAudio})
	}
	return sources
}

// run drives one job from queued to a terminal state. Any panic in the
// pipeline is converted to a failed transition so no job is left stuck.
func (o *Orchestrator) run(jobID string, req Request) {
	defer o.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			o.fail(jobID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx := services.WithComponent(services.WithJobID(context.Background(), jobID), "jobs")
	logger := logging.WithContext(ctx, o.logger)

	session, err := o.fetcher.NewSession()
	if err != nil {
		o.fail(jobID, services.Message(err))
		return
	}
	defer o.fetcher.Cleanup(session)

	inputs, audioPath, err := o.download(ctx, jobID, session)
	if err != nil {
		logger.Error("download failed", logging.Error(err))
		o.fail(jobID, services.Message(err))
		return
	}

	o.transition(jobID, StatusProcessing, downloadSpan, "composing output")

	placements, err := overlay.Resolve(req.Overlays, o.frameWidth, o.frameHeight)
	if err != nil {
		o.fail(jobID, services.Message(err))
		return
	}

	outputPath := filepath.Join(o.outputDir, jobID+".mp4")
	result, err := o.engine.Compose(ctx, media.ComposeRequest{
		Kind:         req.Kind,
		Inputs:       inputs,
		ReplaceAudio: audioPath,
		Overlays:     placements,
		OutputPath:   outputPath,
		Progress: func(percent int) {
			overall := downloadSpan + percent*composeSpan/100
			if overall > 99 {
				overall = 99
			}
			o.setProgress(jobID, overall, "composing output")
		},
	})
	if err != nil {
		logger.Error("composition failed", logging.Error(err))
		o.fail(jobID, services.Message(err))
		return
	}

	if o.catalog != nil {
		_, catErr := o.catalog.Add(ctx, outputs.Artifact{
			JobID:      jobID,
			Kind:       outputs.KindVideo,
			Path:       result.OutputFile,
			DurationMs: result.DurationMs,
		})
		if catErr != nil {
			logger.Warn("catalog insert failed", logging.Error(catErr))
		}
	}

	o.registry.Update(jobID, func(job *Job) {
		job.Status = StatusCompleted
		job.Progress = 100
		job.Message = "completed"
		job.Result = &Result{OutputFile: result.OutputFile, DurationMs: result.DurationMs}
	})
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.String("output", result.OutputFile),
		logging.Int64("duration_ms", result.DurationMs))
}

// download fetches every source into the session directory, updating
// progress per file. Returns composition inputs in submission order and the
// local audio path, if any.
func (o *Orchestrator) download(ctx context.Context, jobID, session string) ([]string, string, error) {
	job, err := o.registry.Get(jobID)
	if err != nil {
		return nil, "", err
	}
	total := len(job.Sources)
	o.transition(jobID, StatusDownloading, 0, fmt.Sprintf("downloaded 0/%d", total))

	var inputs []string
	var audioPath string
	for i, source := range job.Sources {
		var fallbackExt string
		switch source.Kind {
		case SourceImage:
			fallbackExt = ".jpg"
		case SourceAudio:
			fallbackExt = ".mp3"
		default:
			fallbackExt = ".mp4"
		}

		baseName := fmt.Sprintf("%s_%02d", source.Kind, i)
		local, err := o.fetcher.Download(ctx, source.URL, session, baseName, fallbackExt)
		if err != nil {
			return nil, "", err
		}
		if source.Kind == SourceAudio {
			audioPath = local
		} else {
			inputs = append(inputs, local)
		}

		done := i + 1
		o.registry.Update(jobID, func(job *Job) {
			job.Sources[i].LocalPath = local
			job.Progress = done * downloadSpan / total
			job.Message = fmt.Sprintf("downloaded %d/%d", done, total)
		})
	}
	return inputs, audioPath, nil
}

func (o *Orchestrator) transition(jobID string, status Status, progress int, message string) {
	o.registry.Update(jobID, func(job *Job) {
		job.Status = status
		if progress > job.Progress {
			job.Progress = progress
		}
		job.Message = message
	})
}

func (o *Orchestrator) setProgress(jobID string, progress int, message string) {
	o.registry.Update(jobID, func(job *Job) {
		if progress > job.Progress {
			job.Progress = progress
		}
		job.Message = message
	})
}

func (o *Orchestrator) fail(jobID, message string) {
	if message == "" {
		message = "unknown error"
	}
	o.registry.Update(jobID, func(job *Job) {
		job.Status = StatusFailed
		job.Message = message
		job.Error = message
	})
	o.logger.Error("job failed",
		logging.String(logging.FieldEventType, "job_failed"),
		logging.String(logging.FieldJobID, jobID),
		logging.String("reason", message))
}
