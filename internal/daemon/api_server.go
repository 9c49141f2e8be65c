package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"clipforge/internal/alignment"
	"clipforge/internal/jobs"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/overlay"
	"clipforge/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	bind = strings.TrimSpace(bind)
	if bind == "" || d == nil {
		return nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJobItem)
	mux.HandleFunc("/api/split", srv.handleSplit)
	mux.HandleFunc("/api/karaoke", srv.handleKaraoke)
	mux.HandleFunc("/api/outputs", srv.handleOutputs)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// requestContext stamps the request with a correlation id so log lines from
// downstream components can be tied back to the originating API call.
func (s *apiServer) requestContext(r *http.Request) (context.Context, *slog.Logger) {
	ctx := services.WithRequestID(services.WithComponent(r.Context(), "api"), uuid.NewString())
	return ctx, logging.WithContext(ctx, s.logger)
}

// Addr returns the bound address, useful when bind uses port 0.
func (s *apiServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:      status.Running,
		PID:          status.PID,
		LockFilePath: status.LockFilePath,
		CatalogPath:  status.CatalogPath,
		ActiveJobs:   status.ActiveJobs,
		TerminalJobs: status.TerminalJobs,
	})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	kind := media.ComposeKind(strings.TrimSpace(req.Kind))
	if kind == "" {
		if len(req.Images) > 0 {
			kind = media.KindSlideshow
		} else {
			kind = media.KindConcat
		}
	}

	jobID, err := s.daemon.orchestrator.Submit(jobs.Request{
		Kind:      kind,
		ImageURLs: req.Images,
		ClipURLs:  req.Clips,
		AudioURL:  strings.TrimSpace(req.Audio),
		Overlays:  convertOverlays(req.Overlays),
	})
	if err != nil {
		if services.IsValidation(err) {
			s.writeError(w, http.StatusBadRequest, services.Message(err))
			return
		}
		s.writeError(w, http.StatusInternalServerError, services.Message(err))
		return
	}
	s.writeJSON(w, http.StatusAccepted, submitJobResponse{JobID: jobID})
}

func (s *apiServer) handleJobItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.daemon.orchestrator.GetStatus(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, services.Message(err))
		return
	}
	s.writeJSON(w, http.StatusOK, convertJob(job))
}

func (s *apiServer) handleSplit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, logger := s.requestContext(r)
	audioPath, cleanup, err := s.localAudio(ctx, req.File, req.URL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer cleanup()

	outDir := filepath.Join(s.daemon.cfg.Paths.OutputDir, "splits")
	result, err := s.daemon.splitter.SplitFile(ctx, audioPath, req.Parts, outDir)
	if err != nil {
		logger.Error("split request failed", logging.Error(err))
		s.writeServiceError(w, err)
		return
	}
	logger.Info("split request served", logging.Int("segments", len(result.Segments)))
	s.writeJSON(w, http.StatusOK, splitResponse{
		DurationMs: result.DurationMs,
		Boundaries: result.Boundaries,
		Segments:   result.Segments,
	})
}

func (s *apiServer) handleKaraoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req karaokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, logger := s.requestContext(r)
	audioPath, cleanup, err := s.localAudio(ctx, req.File, req.URL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer cleanup()

	result, err := s.daemon.karaoke.Karaoke(ctx, audioPath, req.Script,
		alignment.OverlayMode(strings.TrimSpace(req.Mode)), s.daemon.cfg.Paths.OutputDir)
	if err != nil {
		logger.Error("karaoke request failed", logging.Error(err))
		s.writeServiceError(w, err)
		return
	}
	logger.Info("karaoke request served", logging.String("mode", string(result.Mode)))
	s.writeJSON(w, http.StatusOK, convertKaraoke(result))
}

func (s *apiServer) handleOutputs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	artifacts, err := s.daemon.catalog.List(r.Context(), 0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, services.Message(err))
		return
	}
	views := make([]artifactView, 0, len(artifacts))
	for _, artifact := range artifacts {
		views = append(views, artifactView{
			ID:         artifact.ID,
			JobID:      artifact.JobID,
			Kind:       artifact.Kind,
			Path:       artifact.Path,
			DurationMs: artifact.DurationMs,
			CreatedAt:  artifact.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, outputsResponse{Artifacts: views})
}

// localAudio resolves the audio input for a synchronous endpoint: a local
// file path is used as-is, a URL is fetched into a throwaway session.
func (s *apiServer) localAudio(ctx context.Context, file, url string) (string, func(), error) {
	file = strings.TrimSpace(file)
	url = strings.TrimSpace(url)
	noop := func() {}

	if file != "" {
		return file, noop, nil
	}
	if url == "" {
		return "", noop, services.Wrap(services.ErrValidation, "api", "audio", "either file or url is required", nil)
	}

	session, err := s.daemon.fetcher.NewSession()
	if err != nil {
		return "", noop, err
	}
	local, err := s.daemon.fetcher.Download(ctx, url, session, "audio", ".mp3")
	if err != nil {
		s.daemon.fetcher.Cleanup(session)
		return "", noop, err
	}
	return local, func() { s.daemon.fetcher.Cleanup(session) }, nil
}

func convertOverlays(reqs []overlayRequest) []overlay.Spec {
	if len(reqs) == 0 {
		return nil
	}
	specs := make([]overlay.Spec, 0, len(reqs))
	for _, req := range reqs {
		align := overlay.Alignment(strings.TrimSpace(req.Align))
		if align == "" {
			align = overlay.AlignCenter
		}
		specs = append(specs, overlay.Spec{
			Text:    req.Text,
			StartMs: req.StartMs,
			EndMs:   req.EndMs,
			X:       req.X,
			Y:       req.Y,
			Auto:    req.Auto,
			Align:   align,
			Style: overlay.Style{
				FontSize:    req.FontSize,
				FontColor:   req.FontColor,
				StrokeColor: req.StrokeColor,
				StrokeWidth: req.StrokeWidth,
				Background:  req.Background,
				Padding:     req.Padding,
			},
		})
	}
	return specs
}

func convertJob(job *jobs.Job) jobResponse {
	sources := make([]jobSourceView, 0, len(job.Sources))
	for _, source := range job.Sources {
		sources = append(sources, jobSourceView{
			URL:       source.URL,
			Kind:      source.Kind,
			LocalPath: source.LocalPath,
		})
	}
	resp := jobResponse{
		ID:        job.ID,
		Kind:      string(job.Kind),
		Status:    string(job.Status),
		Progress:  job.Progress,
		Message:   job.Message,
		Sources:   sources,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
	if job.Result != nil {
		resp.Result = &jobResultView{
			OutputFile: job.Result.OutputFile,
			DurationMs: job.Result.DurationMs,
		}
	}
	return resp
}

func convertKaraoke(result alignment.KaraokeResult) karaokeResponse {
	words := make([]alignedWordView, 0, len(result.Words))
	for _, word := range result.Words {
		words = append(words, alignedWordView{Text: word.DisplayText, StartMs: word.StartMs, EndMs: word.EndMs})
	}
	overlays := make([]overlayWindowView, 0, len(result.Overlays))
	for _, spec := range result.Overlays {
		overlays = append(overlays, overlayWindowView{Text: spec.Text, StartMs: spec.StartMs, EndMs: spec.EndMs})
	}
	return karaokeResponse{
		Mode:     string(result.Mode),
		Words:    words,
		Overlays: overlays,
		SRTPath:  result.SRTPath,
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case services.IsValidation(err):
		s.writeError(w, http.StatusBadRequest, services.Message(err))
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, services.Message(err))
	default:
		s.writeError(w, http.StatusInternalServerError, services.Message(err))
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
