package actors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storyworld/internal/debug"
	"storyworld/internal/game"
	"storyworld/internal/game/commands"
	"storyworld/internal/game/world"
	"storyworld/internal/llm"
)

// Completer is the part of llm.Service an LLM policy needs.
type Completer interface {
	CompleteJSON(ctx context.Context, req llm.JSONCompletionRequest) (string, error)
}

// Decision is the model's answer for one turn.
type Decision struct {
	Thought string         `json:"thought"`
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
}

// LLMPolicy asks a language model to choose one registered command per
// turn, given the actor's Concept rendered as text.
type LLMPolicy struct {
	llm     Completer
	reg     *commands.Registry
	persona Persona
	history *game.History
	debug   *debug.Logger

	// RecentActs is how many known actions go into the prompt.
	RecentActs int
	MaxTokens  int

	thoughts []string
}

func NewLLMPolicy(c Completer, reg *commands.Registry, persona Persona, history *game.History, debug *debug.Logger) *LLMPolicy {
	return &LLMPolicy{
		llm:        c,
		reg:        reg,
		persona:    persona,
		history:    history,
		debug:      debug,
		RecentActs: 8,
		MaxTokens:  400,
	}
}

func (p *LLMPolicy) Next(ctx context.Context, agent string, c *world.Concept) ([]*world.Action, error) {
	if c == nil {
		return nil, nil
	}
	var entries []string
	if p.history != nil {
		entries = p.history.GetEntries()
	}
	worldContext := game.BuildConceptContext(c, agent, p.RecentActs, entries)

	ctx = llm.WithOperationType(ctx, "actor.decide")
	ctx = llm.WithGameContext(ctx, map[string]interface{}{"actor": agent, "tick": c.Ticks})

	content, err := p.llm.CompleteJSON(ctx, llm.JSONCompletionRequest{
		SystemPrompt:    buildDecisionPrompt(agent, p.persona, p.reg.Describe(), p.recentThoughts(3)),
		UserPrompt:      buildDecisionUser(worldContext),
		MaxTokens:       p.MaxTokens,
		ReasoningEffort: "minimal",
	})
	if err != nil {
		return nil, fmt.Errorf("deciding for %s: %w", agent, err)
	}

	var d Decision
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		p.debug.Printf("actor %s: unparseable decision %q", agent, content)
		return nil, fmt.Errorf("decision for %s is not valid JSON: %w", agent, err)
	}
	if t := strings.TrimSpace(d.Thought); t != "" {
		p.thoughts = append(p.thoughts, t)
	}
	name := strings.ToLower(strings.TrimSpace(d.Command))
	if name == "" || name == "none" {
		p.debug.Printf("actor %s does nothing: %q", agent, d.Thought)
		return nil, nil
	}

	args := make(commands.Args, len(d.Args))
	for k, v := range d.Args {
		if s, ok := v.(string); ok {
			args[k] = s
		} else {
			args[k] = fmt.Sprint(v)
		}
	}
	a, err := p.reg.Build(agent, name, args, c)
	if err != nil {
		return nil, err
	}
	if p.history != nil {
		p.history.AddActorCommand(agent, p.commandLine(name, args))
	}
	p.debug.Printf("actor %s chose %s (%q)", agent, a, d.Thought)
	return []*world.Action{a}, nil
}

// Thoughts returns every thought the model has reported, oldest first.
func (p *LLMPolicy) Thoughts() []string {
	return append([]string(nil), p.thoughts...)
}

func (p *LLMPolicy) recentThoughts(n int) []string {
	if len(p.thoughts) <= n {
		return p.thoughts
	}
	return p.thoughts[len(p.thoughts)-n:]
}

// commandLine renders a command the way it would be typed.
func (p *LLMPolicy) commandLine(name string, args commands.Args) string {
	parts := []string{name}
	if cmd, ok := p.reg.Get(name); ok {
		for _, param := range cmd.Params() {
			parts = append(parts, args.Str(param.Name))
		}
	}
	return strings.Join(parts, " ")
}
