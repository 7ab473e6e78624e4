package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/elkio"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
	"github.com/lcpmarvel/bpmnlayout/pkg/httpapi"
	"github.com/lcpmarvel/bpmnlayout/pkg/session"
)

func linearGraphJSON(t *testing.T) []byte {
	t.Helper()
	g := &model.Graph{
		Root: []*model.Node{
			{ID: "start", Kind: model.KindStartEvent},
			{ID: "task", Kind: model.KindTask},
			{ID: "end", Kind: model.KindEndEvent},
		},
		Edges: []*model.Edge{
			{ID: "f1", Source: "start", Target: "task", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "task", Target: "end", Kind: model.EdgeSequenceFlow},
		},
	}
	var buf bytes.Buffer
	if err := elkio.Encode(g, &buf); err != nil {
		t.Fatalf("encode fixture graph: %v", err)
	}
	return buf.Bytes()
}

func testServer(t *testing.T) *httpapi.Server {
	t.Helper()
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ch, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { ch.Close() })
	return &httpapi.Server{
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
		Cache:   ch,
		Store:   store,
		Options: pipeline.DefaultOptions(),
	}
}

func TestSubmitSync(t *testing.T) {
	srv := testServer(t)
	body := linearGraphJSON(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/layouts", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<bpmn:process")) {
		t.Errorf("response body missing <bpmn:process>: %s", rec.Body.String())
	}
}

func TestSubmitSyncInvalidGraph(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/layouts", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitAsyncThenPoll(t *testing.T) {
	srv := testServer(t)
	body := linearGraphJSON(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/layouts?async=1", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var job session.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job id is empty")
	}

	var status session.Job
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/v1/layouts/"+job.ID, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Done() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if status.Status != session.StatusSucceeded {
		t.Fatalf("job status = %s, want succeeded (error: %s)", status.Status, status.Error)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/layouts/"+job.ID+".xml", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("artifact status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<bpmn:process")) {
		t.Errorf("artifact missing <bpmn:process>: %s", rec.Body.String())
	}
}

func TestStatusNotFound(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/layouts/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
