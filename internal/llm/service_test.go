package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"

	"storyworld/internal/debug"
)

func fakeOpenAI(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(srv *httptest.Server) *Service {
	return NewService("sk-test", "gpt-test", debug.NewLogger(false, ""),
		option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
}

func TestCompleteJSON(t *testing.T) {
	var req map[string]any
	srv := fakeOpenAI(t, `{"command":"wait","args":{}}`, &req)
	s := newTestService(srv)

	ctx := WithGameContext(WithOperationType(context.Background(), "actor.decide"), map[string]interface{}{"actor": "@cat"})
	got, err := s.CompleteJSON(ctx, JSONCompletionRequest{SystemPrompt: "sys", UserPrompt: "user", MaxTokens: 200})
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if got != `{"command":"wait","args":{}}` {
		t.Fatalf("content = %q", got)
	}
	if req["model"] != "gpt-test" {
		t.Errorf("model = %v", req["model"])
	}
	format, _ := req["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format = %v", req["response_format"])
	}
}

func TestCompleteTextModelOverride(t *testing.T) {
	var req map[string]any
	srv := fakeOpenAI(t, "The cat yawns.", &req)
	s := newTestService(srv)

	got, err := s.CompleteText(context.Background(), TextCompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Model: "gpt-other"})
	if err != nil {
		t.Fatalf("CompleteText: %v", err)
	}
	if got != "The cat yawns." || req["model"] != "gpt-other" {
		t.Fatalf("content = %q, model = %v", got, req["model"])
	}
	if _, ok := req["response_format"]; ok {
		t.Errorf("text completion asked for a response format: %v", req["response_format"])
	}
}

func TestCompleteReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	s := newTestService(srv)

	if _, err := s.CompleteJSON(context.Background(), JSONCompletionRequest{UserPrompt: "x"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWithGameContextMerges(t *testing.T) {
	ctx := WithGameContext(context.Background(), map[string]interface{}{"actor": "@cat"})
	ctx = WithGameContext(ctx, map[string]interface{}{"tick": 3})
	attrs := gameAttributes(ctx)
	if len(attrs) != 2 {
		t.Fatalf("attrs = %v", attrs)
	}
}
