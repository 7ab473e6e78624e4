// Package httpapi exposes the layout pipeline over HTTP.
//
// Synchronous callers POST a graph to /v1/layouts and get a finished BPMN
// XML diagram back in the same request. Callers that don't want to hold a
// connection open while a large diagram lays out instead poll: POST
// returns a job id immediately, GET /v1/layouts/{id} reports the pkg/session
// Stage the job has reached, and GET /v1/layouts/{id}.xml fetches the
// rendered artifact once the job succeeds.
//
// Routing is built on go-chi/chi; job bookkeeping is delegated to
// pkg/session and computed artifacts to pkg/cache so the same Server works
// whether it's backed by a single FileStore/FileCache on a laptop or a
// MongoDB/Redis pair shared by a fleet of API instances.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmnerrors"
	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
	"github.com/lcpmarvel/bpmnlayout/pkg/session"
)

// Server holds the dependencies shared by every handler.
type Server struct {
	Logger  *log.Logger
	Cache   cache.Cache
	Store   session.Store
	Options pipeline.Options

	// Notify, if set, is called with the job id and final status after an
	// asynchronous job reaches a terminal state. Used to drive webhook
	// callbacks; see Notifier in webhook.go.
	Notify func(job *session.Job)
}

// Router builds the chi router serving every /v1/layouts route. Each
// inbound request is tagged with a request id via middleware.RequestID (a
// client's X-Request-Id header, or one chi generates), which logRequest
// includes in its debug line.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)

	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.handleSubmit)
		r.Get("/{id}", s.handleStatus)
		r.Get("/{id}.xml", s.handleArtifact)
	})

	return r
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.Debugf("%s %s (%s) reqid=%s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

// errorResponse mirrors bpmnerrors.Error as wire JSON.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := bpmnerrors.GetCode(err)
	if code == "" {
		code = bpmnerrors.ErrCodeInternal
	}
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    string(code),
		Message: bpmnerrors.UserMessage(err),
	})
}

func statusForCode(code bpmnerrors.Code) int {
	switch {
	case bpmnerrors.IsInvalidInput(code):
		return http.StatusBadRequest
	case code == bpmnerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == bpmnerrors.ErrCodeUnsatisfiableConstraints, code == bpmnerrors.ErrCodeRoutingFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newJobID() string {
	return uuid.NewString()
}
