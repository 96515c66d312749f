package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("overview-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

// newMux serves a canned OpenAI-compatible API that answers the summary
// and code-extraction prompts deterministically.
func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt := ""
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		var content string
		switch {
		case strings.Contains(prompt, "Analyze this lecture transcript"):
			content = cannedSummary(lectureTitle(prompt))
		case strings.Contains(prompt, "Extract all code snippets"):
			content = "print('hello')\nx = [1, 2, 3]"
		default:
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	return mux
}

func lectureTitle(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Lecture Title:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return "the lecture"
}

func cannedSummary(title string) string {
	return "## Overview of " + title + "\n\n" +
		"This lecture walks through " + title + " step by step.\n\n" +
		"### Key takeaways\n\n" +
		"- " + title + " builds on earlier material\n" +
		"- Worked examples show each concept in practice\n" +
		"- Common mistakes are called out with fixes\n"
}
