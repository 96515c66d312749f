package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

func TestProcess_PostsContractAndDecodes(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/process" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"summary":"S","code_blocks":["print(1)"],"key_concepts":["k1"]}`)
	}))
	defer srv.Close()

	c := &Client{HTTPClient: srv.Client()}
	res, err := c.Process(context.Background(), srv.URL+"/", summary.Request{Transcript: "abc", LectureTitle: "L1"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := summary.Result{Summary: "S", CodeBlocks: []string{"print(1)"}, KeyConcepts: []string{"k1"}}
	if !res.Equal(want) {
		t.Fatalf("result = %+v", res)
	}
	if gotBody["transcript"] != "abc" || gotBody["lecture_title"] != "L1" {
		t.Fatalf("body = %v", gotBody)
	}
	if _, ok := gotBody["force_refresh"]; ok {
		t.Fatalf("force_refresh must be omitted when false: %v", gotBody)
	}
}

func TestProcess_ForceRefreshIncludedWhenTrue(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		_, _ = io.WriteString(w, `{"summary":"S"}`)
	}))
	defer srv.Close()

	c := &Client{HTTPClient: srv.Client()}
	res, err := c.Process(context.Background(), srv.URL, summary.Request{Transcript: "t", LectureTitle: "x", ForceRefresh: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(raw, `"force_refresh":true`) {
		t.Fatalf("expected force_refresh in %s", raw)
	}
	if res.CodeBlocks == nil || res.KeyConcepts == nil {
		t.Fatalf("expected normalized empty slices, got %+v", res)
	}
}

func TestProcess_Non2xxIsStatusError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{HTTPClient: srv.Client()}
	_, err := c.Process(context.Background(), srv.URL, summary.Request{Transcript: "t"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != 500 || !strings.Contains(err.Error(), "500") || !strings.Contains(se.Body, "boom") {
		t.Fatalf("unexpected error %v body %q", err, se.Body)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected no retry, got %d calls", calls)
	}
}

func TestProcess_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()
	c := &Client{HTTPClient: srv.Client()}
	if _, err := c.Process(context.Background(), srv.URL, summary.Request{Transcript: "t"}); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestProcess_TimeoutAndEmptyBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	c := &Client{HTTPClient: srv.Client(), Timeout: 50 * time.Millisecond}
	if _, err := c.Process(context.Background(), srv.URL, summary.Request{Transcript: "t"}); err == nil {
		t.Fatalf("expected timeout error")
	}
	if _, err := c.Process(context.Background(), "  ", summary.Request{}); !errors.Is(err, ErrEmptyBaseURL) {
		t.Fatalf("expected ErrEmptyBaseURL, got %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	for in, want := range map[string]string{
		"https://h":   "https://h/api/process",
		"https://h/":  "https://h/api/process",
		"https://h//": "https://h/api/process",
	} {
		if got := Endpoint(in); got != want {
			t.Fatalf("Endpoint(%q) = %q want %q", in, got, want)
		}
	}
}
