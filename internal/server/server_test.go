package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/smartoverview/internal/backend"
	"github.com/hyperifyio/smartoverview/internal/summarize"
	"github.com/hyperifyio/smartoverview/internal/summary"
)

type stubProcessor struct {
	last summary.Request
	res  summary.Result
	err  error
}

func (s *stubProcessor) Process(ctx context.Context, req summary.Request) (summary.Result, error) {
	s.last = req
	return s.res, s.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRootAndHealth(t *testing.T) {
	s := New(&stubProcessor{})
	rec := do(t, s, http.MethodGet, "/", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("root = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodGet, "/health", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body)
	}
	if do(t, s, http.MethodGet, "/nope", "").Code != http.StatusNotFound {
		t.Fatalf("expected 404")
	}
}

func TestProcess_Success(t *testing.T) {
	p := &stubProcessor{res: summary.Result{Summary: "S"}}
	s := New(p)
	rec := do(t, s, http.MethodPost, "/api/process", `{"transcript":"abc"}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["summary"] != "S" {
		t.Fatalf("body = %v", got)
	}
	if _, ok := got["code_blocks"].([]any); !ok {
		t.Fatalf("code_blocks must be an array: %v", got)
	}
	if p.last.LectureTitle != summary.DefaultLectureTitle {
		t.Fatalf("default title not applied: %+v", p.last)
	}
	if rec.Header().Get(RequestIDHeader) == "" || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing request id or CORS headers: %v", rec.Header())
	}
}

func TestProcess_Errors(t *testing.T) {
	s := New(&stubProcessor{err: errors.New("model down")})
	if rec := do(t, s, http.MethodPost, "/api/process", `{"transcript":""}`); rec.Code != 400 || !strings.Contains(rec.Body.String(), "Transcript is required") {
		t.Fatalf("empty transcript = %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, s, http.MethodPost, "/api/process", `{`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad json = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/process", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET = %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/process", `{"transcript":"abc"}`)
	if rec.Code != 500 || !strings.Contains(rec.Body.String(), "model down") {
		t.Fatalf("service error = %d %s", rec.Code, rec.Body)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, New(&stubProcessor{}), http.MethodOptions, "/api/process", "")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("preflight = %d %v", rec.Code, rec.Header())
	}
}

func TestRequestIDPropagates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	New(&stubProcessor{}).ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("request id = %q", rec.Header().Get(RequestIDHeader))
	}
}

// The backend client and the server agree on the wire contract.
func TestClientServerContract(t *testing.T) {
	srv := httptest.NewServer(New(&summarize.Service{}))
	defer srv.Close()
	c := &backend.Client{HTTPClient: srv.Client()}
	res, err := c.Process(context.Background(), srv.URL, summary.Request{Transcript: "We use def add(a, b): here", LectureTitle: "Math"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(res.Summary, "Mock Summary for Math") || len(res.CodeBlocks) != 1 || len(res.KeyConcepts) != 1 {
		t.Fatalf("result = %+v", res)
	}
	_, err = c.Process(context.Background(), srv.URL, summary.Request{Transcript: " "})
	var se *backend.StatusError
	if !errors.As(err, &se) || se.Code != 400 {
		t.Fatalf("expected 400 StatusError, got %v", err)
	}
}
