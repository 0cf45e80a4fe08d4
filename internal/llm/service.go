package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storyworld/internal/debug"
	"storyworld/internal/observability"
)

type contextKey string

const (
	operationTypeKey contextKey = "operation_type"
	gameContextKey   contextKey = "game_context"
)

type Service struct {
	client *openai.Client
	model  string
	debug  *debug.Logger
	tracer trace.Tracer
}

// NewService creates a chat-completion service. Extra request options are
// passed to the OpenAI client, which is how tests point it at a local
// server.
func NewService(apiKey, model string, debug *debug.Logger, opts ...option.RequestOption) *Service {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &Service{
		client: &client,
		model:  model,
		debug:  debug,
		tracer: otel.Tracer("llm-service"),
	}
}

type TextCompletionRequest struct {
	SystemPrompt    string
	UserPrompt      string
	MaxTokens       int
	Model           string // optional override
	ReasoningEffort string // optional: minimal, low, medium, high
}

type JSONCompletionRequest struct {
	SystemPrompt    string
	UserPrompt      string
	MaxTokens       int
	Model           string // optional override
	ReasoningEffort string // optional: minimal, low, medium, high
}

func (s *Service) CompleteText(ctx context.Context, req TextCompletionRequest) (string, error) {
	return s.complete(ctx, "text_completion", "text", req.SystemPrompt, req.UserPrompt, req.MaxTokens, req.Model, req.ReasoningEffort)
}

func (s *Service) CompleteJSON(ctx context.Context, req JSONCompletionRequest) (string, error) {
	return s.complete(ctx, "json_completion", "json", req.SystemPrompt, req.UserPrompt, req.MaxTokens, req.Model, req.ReasoningEffort)
}

func (s *Service) complete(ctx context.Context, operationType, format, system, user string, maxTokens int, modelOverride, effort string) (string, error) {
	if opType := getOperationType(ctx); opType != "" {
		operationType = opType
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		s.debug.Printf("NO PARENT: ctx missing active span for %s", operationType)
	} else {
		s.debug.Printf("complete trace=%s parentSpan=%s op=%s", sc.TraceID(), sc.SpanID(), operationType)
	}

	model := s.model
	if strings.TrimSpace(modelOverride) != "" {
		model = modelOverride
	}
	ctx, span := s.tracer.Start(ctx, operationType,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(observability.CreateGenAIAttributes("openai", model, 0, 0)...),
	)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.Int("gen_ai.request.max_tokens", maxTokens),
		attribute.String("response_format", format),
		attribute.String("game.operation_type", operationType),
	}
	if sessionID := observability.SessionID(ctx); sessionID != "" {
		attrs = append(attrs, attribute.String("session.id", sessionID))
	}
	attrs = append(attrs, gameAttributes(ctx)...)
	span.SetAttributes(attrs...)

	span.AddEvent("gen_ai.user.message", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", user),
	))

	startTime := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}
	if format == "json" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: func() *shared.ResponseFormatJSONObjectParam {
				p := shared.NewResponseFormatJSONObjectParam()
				return &p
			}(),
		}
	}
	if effort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(effort)
	}

	s.debug.Printf("LLM %s completion - MaxTokens: %d, SystemPrompt length: %d, Model: %s", format, maxTokens, len(system), model)

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "llm_completion_error"))
		span.RecordError(err)
		s.debug.Printf("LLM %s completion error: %v", format, err)
		return "", fmt.Errorf("%s completion failed: %w", format, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no completion choices returned")
		span.RecordError(err)
		return "", err
	}

	content := resp.Choices[0].Message.Content
	duration := time.Since(startTime)

	s.debug.Printf("LLM %s response: content=%q, finish_reason=%s, choices_count=%d",
		format, content, resp.Choices[0].FinishReason, len(resp.Choices))

	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
		attribute.Int64("response_time_ms", duration.Milliseconds()),
		attribute.String("gen_ai.response.finish_reason", string(resp.Choices[0].FinishReason)),
	)

	span.AddEvent("gen_ai.choice", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", content),
	))

	return content, nil
}

func WithOperationType(ctx context.Context, opType string) context.Context {
	return context.WithValue(ctx, operationTypeKey, opType)
}

// WithGameContext attaches values that are copied onto every LLM span as
// game.* attributes. It merges with any game context already present.
func WithGameContext(ctx context.Context, gameCtx map[string]interface{}) context.Context {
	if existing, ok := ctx.Value(gameContextKey).(map[string]interface{}); ok && existing != nil {
		merged := make(map[string]interface{}, len(existing)+len(gameCtx))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range gameCtx {
			merged[k] = v
		}
		return context.WithValue(ctx, gameContextKey, merged)
	}
	return context.WithValue(ctx, gameContextKey, gameCtx)
}

func getOperationType(ctx context.Context) string {
	if opType, ok := ctx.Value(operationTypeKey).(string); ok {
		return opType
	}
	return ""
}

func gameAttributes(ctx context.Context) []attribute.KeyValue {
	gameCtx, _ := ctx.Value(gameContextKey).(map[string]interface{})
	var attrs []attribute.KeyValue
	for k, v := range gameCtx {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String("game."+k, val))
		case int:
			attrs = append(attrs, attribute.Int("game."+k, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice("game."+k, val))
		}
	}
	return attrs
}
