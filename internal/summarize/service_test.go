package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/smartoverview/internal/cache"
	"github.com/hyperifyio/smartoverview/internal/summary"
)

type capturingClient struct {
	reqs    []openai.ChatCompletionRequest
	content string
	fails   int
}

func (c *capturingClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.reqs = append(c.reqs, req)
	if c.fails > 0 {
		c.fails--
		return openai.ChatCompletionResponse{}, errors.New("transient")
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.content},
		}},
	}, nil
}

const modelSummary = `The lecture covers Python lists.

1. Lists are ordered mutable sequences
2. Short one
- Comprehensions build lists from iterables`

func noSleep(context.Context, time.Duration) {}

func TestProcess_PromptAndResult(t *testing.T) {
	cc := &capturingClient{content: modelSummary}
	s := &Service{Client: cc, Model: "test-model", Sleep: noSleep}
	transcript := "Today we write\ndef greet(name):\nand then\nimport os\nfor files."
	res, err := s.Process(context.Background(), summary.Request{Transcript: transcript, LectureTitle: "Python Lists"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(cc.reqs) != 1 {
		t.Fatalf("expected one model call, got %d", len(cc.reqs))
	}
	prompt := cc.reqs[0].Messages[0].Content
	for _, want := range []string{"Lecture Title: Python Lists", "Transcript:\n" + transcript, "4. Practical applications", "Summary:"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if res.Summary != modelSummary {
		t.Fatalf("summary = %q", res.Summary)
	}
	wantConcepts := []string{"Lists are ordered mutable sequences", "Comprehensions build lists from iterables"}
	if strings.Join(res.KeyConcepts, "|") != strings.Join(wantConcepts, "|") {
		t.Fatalf("concepts = %q", res.KeyConcepts)
	}
	if len(res.CodeBlocks) != 2 || res.CodeBlocks[0] != "def greet(name):" || res.CodeBlocks[1] != "import os" {
		t.Fatalf("code = %q", res.CodeBlocks)
	}
}

func TestProcess_TruncatesTranscript(t *testing.T) {
	cc := &capturingClient{content: "ok"}
	s := &Service{Client: cc, Model: "m", MaxTranscriptChars: 10, Sleep: noSleep}
	_, err := s.Process(context.Background(), summary.Request{Transcript: strings.Repeat("é", 50)})
	if err != nil {
		t.Fatal(err)
	}
	prompt := cc.reqs[0].Messages[0].Content
	if !strings.Contains(prompt, "Transcript:\n"+strings.Repeat("é", 10)+"\n") {
		t.Fatalf("expected 10-rune transcript in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Lecture Title: "+summary.DefaultLectureTitle) {
		t.Fatalf("expected default title")
	}
}

func TestProcess_RetriesOnce(t *testing.T) {
	cc := &capturingClient{content: "ok", fails: 1}
	s := &Service{Client: cc, Model: "m", Sleep: noSleep}
	if _, err := s.Process(context.Background(), summary.Request{Transcript: "t"}); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	cc = &capturingClient{content: "ok", fails: 2}
	s.Client = cc
	if _, err := s.Process(context.Background(), summary.Request{Transcript: "t"}); err == nil || !strings.Contains(err.Error(), "after retry") {
		t.Fatalf("expected failure after retry, got %v", err)
	}
}

func TestProcess_MockWithoutModel(t *testing.T) {
	s := &Service{}
	res, err := s.Process(context.Background(), summary.Request{Transcript: "hello", LectureTitle: "Intro"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Summary, "**[Mock Summary for Intro]**") {
		t.Fatalf("summary = %q", res.Summary)
	}
	if res.CodeBlocks[0] != noCodeFound || res.KeyConcepts[0] != defaultConcept {
		t.Fatalf("defaults not applied: %+v", res)
	}
}

func TestProcess_EmptyTranscript(t *testing.T) {
	if _, err := (&Service{}).Process(context.Background(), summary.Request{Transcript: "  "}); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestProcess_ResponseCacheAndForce(t *testing.T) {
	rc := &ResponseCache{Storage: cache.NewMemoryStorage()}
	cc := &capturingClient{content: "cached summary"}
	s := &Service{Client: cc, Model: "m", Cache: rc, Sleep: noSleep}
	req := summary.Request{Transcript: "same transcript", LectureTitle: "L"}

	for i := 0; i < 2; i++ {
		if _, err := s.Process(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	if len(cc.reqs) != 1 {
		t.Fatalf("expected cached second call, got %d model calls", len(cc.reqs))
	}
	req.ForceRefresh = true
	if _, err := s.Process(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if len(cc.reqs) != 2 {
		t.Fatalf("force must bypass the response cache, got %d calls", len(cc.reqs))
	}
}

func TestProcess_AssistCode(t *testing.T) {
	cc := &capturingClient{content: "x = 1"}
	s := &Service{Client: cc, Model: "m", AssistCode: true, Sleep: noSleep}
	res, err := s.Process(context.Background(), summary.Request{Transcript: "no code here"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cc.reqs) != 2 || !strings.Contains(cc.reqs[1].Messages[0].Content, "Extract all code snippets") {
		t.Fatalf("expected code assist call, got %d calls", len(cc.reqs))
	}
	if len(res.CodeBlocks) != 1 || res.CodeBlocks[0] != "x = 1" {
		t.Fatalf("code = %q", res.CodeBlocks)
	}
}

func TestResponseCache_MaxAge(t *testing.T) {
	now := time.Unix(1000, 0)
	rc := &ResponseCache{Storage: cache.NewMemoryStorage(), MaxAge: time.Hour, Now: func() time.Time { return now }}
	rc.Save(context.Background(), "m", "p", "v")
	if v, ok := rc.Get(context.Background(), "m", "p"); !ok || v != "v" {
		t.Fatalf("get = %q,%v", v, ok)
	}
	now = now.Add(time.Hour)
	if _, ok := rc.Get(context.Background(), "m", "p"); ok {
		t.Fatal("expected expiry")
	}
	if ResponseKey("m", "p") == ResponseKey("mp", "") {
		t.Fatal("model/prompt boundary must be part of the key")
	}
}
