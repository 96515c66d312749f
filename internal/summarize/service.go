// Package summarize is the server side of the overview: it turns a
// transcript into a summary, code snippets, and key concepts.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/smartoverview/internal/llm"
	"github.com/hyperifyio/smartoverview/internal/summary"
)

// DefaultMaxTranscriptChars bounds the transcript placed in the prompt.
const DefaultMaxTranscriptChars = 8000

// codePromptChars bounds the transcript sent for model-assisted code
// extraction.
const codePromptChars = 3000

// minCodeBlocksBeforeAssist is the count below which the model is asked
// for additional snippets.
const minCodeBlocksBeforeAssist = 3

// ErrEmptyTranscript is returned for a blank transcript.
var ErrEmptyTranscript = errors.New("transcript is required")

// Service produces summary.Results. A Service without Client or Model
// returns a mock summary so the pipeline stays usable offline.
type Service struct {
	Client llm.Client
	Model  string
	Cache  *ResponseCache
	// MaxTranscriptChars defaults to DefaultMaxTranscriptChars.
	MaxTranscriptChars int
	Temperature        float32
	MaxTokens          int
	// AssistCode asks the model for snippets when regex extraction finds
	// fewer than three.
	AssistCode bool
	// Sleep waits between the first attempt and the single retry.
	Sleep func(ctx context.Context, d time.Duration)
}

// Configured reports whether a real model will be called.
func (s *Service) Configured() bool {
	return s != nil && s.Client != nil && strings.TrimSpace(s.Model) != ""
}

// Process generates the overview for one lecture. force bypasses the model
// response cache.
func (s *Service) Process(ctx context.Context, req summary.Request) (summary.Result, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return summary.Result{}, ErrEmptyTranscript
	}
	title := strings.TrimSpace(req.LectureTitle)
	if title == "" {
		title = summary.DefaultLectureTitle
	}

	text, err := s.summarize(ctx, req.Transcript, title, req.ForceRefresh)
	if err != nil {
		return summary.Result{}, err
	}
	code := s.extractCode(ctx, req.Transcript, req.ForceRefresh)
	return summary.Result{
		Summary:     text,
		CodeBlocks:  code,
		KeyConcepts: KeyConcepts(text),
	}, nil
}

func (s *Service) summarize(ctx context.Context, transcript, title string, force bool) (string, error) {
	if !s.Configured() {
		log.Warn().Msg("no model configured; returning mock summary")
		return MockSummary(title), nil
	}
	max := s.MaxTranscriptChars
	if max <= 0 {
		max = DefaultMaxTranscriptChars
	}
	return s.complete(ctx, SummaryPrompt(title, truncateRunes(transcript, max)), force)
}

func (s *Service) extractCode(ctx context.Context, transcript string, force bool) []string {
	blocks := append(FencedCode(transcript), DefinitionLines(transcript)...)
	if s.AssistCode && s.Configured() && len(blocks) < minCodeBlocksBeforeAssist {
		out, err := s.complete(ctx, CodePrompt(truncateRunes(transcript, codePromptChars)), force)
		if err != nil {
			log.Warn().Err(err).Msg("model code extraction failed")
		} else if out = strings.TrimSpace(out); out != "" {
			blocks = append(blocks, out)
		}
	}
	return capOrDefault(blocks, maxCodeBlocks, noCodeFound)
}

// complete calls the model once, retrying a single time after a short pause.
func (s *Service) complete(ctx context.Context, prompt string, force bool) (string, error) {
	if !force {
		if out, ok := s.Cache.Get(ctx, s.Model, prompt); ok {
			log.Debug().Str("model", s.Model).Msg("model response cache hit")
			return out, nil
		}
	}
	req := openai.ChatCompletionRequest{
		Model:       s.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: s.temperature(),
		MaxTokens:   s.maxTokens(),
		N:           1,
	}
	start := time.Now()
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.sleep(ctx, 100*time.Millisecond)
		resp, err = s.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("summary call (after retry): %w", err)
		}
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("model returned empty content")
	}
	log.Info().Str("model", s.Model).Dur("elapsed", time.Since(start)).Int("chars", len(out)).Msg("model call complete")
	s.Cache.Save(ctx, s.Model, prompt, out)
	return out, nil
}

func (s *Service) temperature() float32 {
	if s.Temperature > 0 {
		return s.Temperature
	}
	return 0.5
}

func (s *Service) maxTokens() int {
	if s.MaxTokens > 0 {
		return s.MaxTokens
	}
	return 1024
}

func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
