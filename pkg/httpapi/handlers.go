package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/xmlout"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors"
	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
	"github.com/lcpmarvel/bpmnlayout/pkg/session"
)

// handleSubmit accepts an ELK-BPMN graph and either lays it out inline
// (the default) or, with ?async=1, queues a job and returns its id.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, bpmnerrors.Wrap(bpmnerrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	async := r.URL.Query().Get("async") == "1" || r.URL.Query().Get("async") == "true"

	if !async {
		xmlBytes, code, err := s.layoutSync(raw)
		if err != nil {
			writeError(w, statusForCode(code), err)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(xmlBytes)
		return
	}

	job := &session.Job{
		ID:        newJobID(),
		Status:    session.StatusQueued,
		Stage:     session.StageValidating,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		ExpiresAt: time.Now().Add(session.DefaultTTL),
	}
	if err := s.Store.Set(r.Context(), job); err != nil {
		writeError(w, http.StatusInternalServerError, bpmnerrors.Wrap(bpmnerrors.ErrCodeInternal, err, "queue job"))
		return
	}

	go s.runAsync(context.Background(), job.ID, raw)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(job)
}

// layoutSync runs the pipeline synchronously and returns rendered XML, or
// the bpmnerrors.Code to report back as an HTTP status.
func (s *Server) layoutSync(raw []byte) ([]byte, bpmnerrors.Code, error) {
	g, err := elkio.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, bpmnerrors.ErrCodeInvalidInput, bpmnerrors.Wrap(bpmnerrors.ErrCodeInvalidInput, err, "decode graph")
	}

	keyer := cache.NewDefaultKeyer()
	layoutKey := keyer.LayoutKey(cache.Hash(raw), layoutKeyOpts(s.Options))
	artifactKey := keyer.ArtifactKey(layoutKey, cache.ArtifactKeyOpts{Format: "xml"})

	if cached, hit, err := s.Cache.Get(context.Background(), artifactKey); err == nil && hit {
		return cached, "", nil
	}

	res, err := pipeline.ToBpmn(g, s.Options)
	if err != nil {
		code := bpmnerrors.GetCode(err)
		if code == "" {
			code = bpmnerrors.ErrCodeInternal
		}
		return nil, code, err
	}

	out := xmlout.Render(g, res.Diagram)
	_ = s.Cache.Set(context.Background(), artifactKey, out, cache.TTLArtifact)
	return out, "", nil
}

// runAsync drives a queued job through the pipeline in the background,
// updating the session.Store as it goes so handleStatus can report
// progress, and calling Notify once the job reaches a terminal state.
func (s *Server) runAsync(ctx context.Context, jobID string, raw []byte) {
	job, err := s.Store.Get(ctx, jobID)
	if err != nil || job == nil {
		s.Logger.Errorf("async job %s vanished before it could run: %v", jobID, err)
		return
	}

	job.Status = session.StatusRunning
	job.Stage = session.StageLayering
	job.UpdatedAt = time.Now()
	_ = s.Store.Set(ctx, job)

	xmlBytes, code, err := s.layoutSync(raw)
	job.UpdatedAt = time.Now()
	if err != nil {
		job.Status = session.StatusFailed
		job.Error = fmt.Sprintf("%s: %v", code, err)
		_ = s.Store.Set(ctx, job)
		if s.Notify != nil {
			s.Notify(job)
		}
		return
	}

	keyer := cache.NewDefaultKeyer()
	layoutKey := keyer.LayoutKey(cache.Hash(raw), layoutKeyOpts(s.Options))
	artifactKey := keyer.ArtifactKey(layoutKey, cache.ArtifactKeyOpts{Format: "xml"})
	_ = s.Cache.Set(ctx, artifactKey, xmlBytes, cache.TTLArtifact)

	job.Status = session.StatusSucceeded
	job.Stage = session.StageDone
	job.Result = artifactKey
	_ = s.Store.Set(ctx, job)
	if s.Notify != nil {
		s.Notify(job)
	}
}

// handleStatus reports a queued/running/finished job's current state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, bpmnerrors.Wrap(bpmnerrors.ErrCodeInternal, err, "load job %s", id))
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, bpmnerrors.New(bpmnerrors.ErrCodeNotFound, "job %s not found", id))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job)
}

// handleArtifact fetches the rendered XML for a succeeded job.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, bpmnerrors.Wrap(bpmnerrors.ErrCodeInternal, err, "load job %s", id))
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, bpmnerrors.New(bpmnerrors.ErrCodeNotFound, "job %s not found", id))
		return
	}
	if job.Status != session.StatusSucceeded {
		writeError(w, http.StatusConflict, bpmnerrors.New(bpmnerrors.ErrCodeUnsupported, "job %s is %s, not succeeded", id, job.Status))
		return
	}

	xmlBytes, hit, err := s.Cache.Get(r.Context(), job.Result)
	if err != nil || !hit {
		writeError(w, http.StatusNotFound, bpmnerrors.New(bpmnerrors.ErrCodeNotFound, "artifact for job %s has expired", id))
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(xmlBytes)
}

// layoutKeyOpts projects the subset of pipeline.Options that changes the
// computed diagram into the cache's key-relevant struct. Mirrors
// internal/cli's helper of the same name; kept independent since httpapi
// must not import the CLI package.
func layoutKeyOpts(opts pipeline.Options) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		HorizontalGap:     opts.HorizontalGap,
		VerticalGap:       opts.VerticalGap,
		ContainerPadding:  opts.ContainerPadding,
		Compact:           opts.Compact,
		CompactDependency: opts.CompactDependency,
		RefineWithSolver:  opts.Refine,
	}
}
