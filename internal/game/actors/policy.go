// Package actors decides what autonomous actors do on each turn.
package actors

import (
	"context"
	"sync"

	"storyworld/internal/game/commands"
	"storyworld/internal/game/world"
)

// Policy picks the actions an actor attempts this turn, working only from
// what the actor knows. Returning no actions means the actor does nothing.
type Policy interface {
	Next(ctx context.Context, agent string, c *world.Concept) ([]*world.Action, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, agent string, c *world.Concept) ([]*world.Action, error)

func (f PolicyFunc) Next(ctx context.Context, agent string, c *world.Concept) ([]*world.Action, error) {
	return f(ctx, agent, c)
}

// ScriptPolicy runs through a fixed list of commands, one per turn. A
// looping script puts each command back at the end once it is used.
type ScriptPolicy struct {
	reg *commands.Registry

	mu     sync.Mutex
	script []string
	loops  bool
}

func NewScriptPolicy(reg *commands.Registry, script []string, loops bool) *ScriptPolicy {
	return &ScriptPolicy{
		reg:    reg,
		script: append([]string(nil), script...),
		loops:  loops,
	}
}

func (p *ScriptPolicy) Next(_ context.Context, agent string, c *world.Concept) ([]*world.Action, error) {
	p.mu.Lock()
	if len(p.script) == 0 {
		p.mu.Unlock()
		return nil, nil
	}
	line := p.script[0]
	p.script = p.script[1:]
	if p.loops {
		p.script = append(p.script, line)
	}
	p.mu.Unlock()

	a, err := p.reg.FromLine(agent, line, c)
	if err != nil {
		return nil, err
	}
	return []*world.Action{a}, nil
}

// Remaining returns the commands still to come, in order.
func (p *ScriptPolicy) Remaining() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.script...)
}
