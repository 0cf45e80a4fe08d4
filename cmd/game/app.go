package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyworld/cmd/game/ui"
	"storyworld/internal/config"
	"storyworld/internal/debug"
	"storyworld/internal/game"
	"storyworld/internal/game/actors"
	"storyworld/internal/game/director"
	"storyworld/internal/game/fiction"
	"storyworld/internal/game/world"
	"storyworld/internal/llm"
	"storyworld/internal/logging"
	"storyworld/internal/observability"
)

const historySize = 12

func createApp(cfg config.Config) (ui.Model, func(), error) {
	debugLogger := debug.NewLogger(cfg.Debug, cfg.DebugLog)

	ctx := context.Background()
	tracerProvider, err := observability.InitTracing(ctx, observability.FromConfig(cfg.Tracing, version))
	if err != nil {
		debugLogger.Printf("Failed to initialize tracing: %v", err)
		tracerProvider, _ = observability.InitTracing(ctx, observability.Config{})
	} else if tracerProvider.IsEnabled() {
		debugLogger.Println("OpenTelemetry tracing initialized and enabled")
	} else {
		debugLogger.Println("OpenTelemetry tracing disabled (set OTEL_TRACES_ENABLED=true to enable)")
	}

	f, err := loadFiction(cfg)
	if err != nil {
		debugLogger.Close()
		return ui.Model{}, nil, err
	}
	g, err := fiction.Build(f, world.WithLogger(debugLogger.Logger))
	if err != nil {
		debugLogger.Close()
		return ui.Model{}, nil, fmt.Errorf("building %q: %w", f.Title, err)
	}
	debugLogger.Printf("Loaded %q: %d items, commanded %s", f.Title, len(f.Items), g.Commanded)

	actionLog, err := logging.NewActionLogger(cfg.ActionLog)
	if err != nil {
		debugLogger.Close()
		return ui.Model{}, nil, fmt.Errorf("failed to initialize action logger: %w", err)
	}
	sessionID := uuid.NewString()
	if err := actionLog.StartSession(sessionID, f.Title, time.Now()); err != nil {
		debugLogger.Printf("Failed to record session: %v", err)
	}

	history := game.NewHistory(historySize)
	opts := []director.Option{
		director.WithLogger(debugLogger.Logger),
		director.WithTracer(tracerProvider.GetTracer("storyworld/director")),
		director.WithActionLog(actionLog, sessionID),
		director.WithHistory(history),
	}
	opts = append(opts, policies(cfg, g, history, debugLogger)...)
	d := director.New(g.World, g.Registry, g.Commanded, opts...)

	model := ui.NewModel(ui.Game{
		Title:     f.Title,
		Headline:  f.Headline,
		Prologue:  f.Prologue,
		Focalizer: g.Focalizer,
		Director:  d,
		History:   history,
	}, debugLogger)

	cleanup := func() {
		actionLog.Close()
		tracerProvider.Shutdown(context.Background())
		debugLogger.Close()
	}
	return model, cleanup, nil
}

func loadFiction(cfg config.Config) (*fiction.Fiction, error) {
	if cfg.FictionPath == "" {
		return fiction.Demo()
	}
	return fiction.Load(cfg.FictionPath)
}

// policies decides how each of the fiction's actors acts. Actors marked for
// a language model fall back to their script when no API key is set.
func policies(cfg config.Config, g *fiction.Game, history *game.History, debugLogger *debug.Logger) []director.Option {
	var service *llm.Service
	var opts []director.Option
	for tag, spec := range g.Actors {
		if tag == g.Commanded {
			continue
		}
		switch {
		case spec.LLM && cfg.LLMEnabled():
			if service == nil {
				service = llm.NewService(cfg.OpenAIKey, cfg.Model, debugLogger)
			}
			persona := actors.Persona{
				Name:        spec.Persona.Name,
				Personality: spec.Persona.Personality,
				Backstory:   spec.Persona.Backstory,
				Memories:    spec.Persona.Memories,
			}
			opts = append(opts, director.WithPolicy(tag, actors.NewLLMPolicy(service, g.Registry, persona, history, debugLogger)))
			debugLogger.Printf("%s is driven by %s", tag, cfg.Model)
		case len(spec.Script) > 0:
			opts = append(opts, director.WithPolicy(tag, actors.NewScriptPolicy(g.Registry, spec.Script, spec.Loops)))
			debugLogger.Printf("%s follows a script of %d commands", tag, len(spec.Script))
		default:
			debugLogger.Printf("%s has nothing to do", tag)
		}
	}
	return opts
}
