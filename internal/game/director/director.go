// Package director runs the simulation: it collects the actions of every
// actor for a turn and processes them, and everything they entail, against
// the world.
package director

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"storyworld/internal/game"
	"storyworld/internal/game/actors"
	"storyworld/internal/game/commands"
	"storyworld/internal/game/events"
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
	"storyworld/internal/observability"
)

var (
	ErrStopped       = errors.New("the world has stopped")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrStarted       = errors.New("already started")
)

// ActionLog stores processed actions. logging.ActionLogger implements it.
type ActionLog interface {
	LogAction(sessionID string, a *world.Action, ts time.Time) error
	MarkUndone(sessionID string, fromID int) error
}

// Turn is everything that happened in response to one input.
type Turn struct {
	Input   string
	Actions []*world.Action
	Events  []events.WorldEvent
	// Errors holds problems with actors' choices; they do not stop a turn.
	Errors []error
}

// Commanded returns the commanded actor's own action for the turn, if any.
func (t Turn) Commanded(agent string) (*world.Action, bool) {
	for _, a := range t.Actions {
		if a.Agent == agent && a.Cause == quote(t.Input) {
			return a, true
		}
	}
	return nil, false
}

type Director struct {
	World     *world.World
	Registry  *commands.Registry
	Commanded string

	policies map[string]actors.Policy
	history  *game.History
	log      *slog.Logger
	tracer   trace.Tracer
	actions  ActionLog
	session  string
	now      func() time.Time

	started bool
	turns   []Turn
}

type Option func(*Director)

func WithLogger(l *slog.Logger) Option {
	return func(d *Director) { d.log = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Director) { d.tracer = t }
}

// WithActionLog records every processed action under sessionID.
func WithActionLog(l ActionLog, sessionID string) Option {
	return func(d *Director) {
		d.actions = l
		d.session = sessionID
	}
}

// WithPolicy makes agent act on its own each turn.
func WithPolicy(agent string, p actors.Policy) Option {
	return func(d *Director) { d.policies[agent] = p }
}

// WithHistory records the commanded actor's input and outcome.
func WithHistory(h *game.History) Option {
	return func(d *Director) { d.history = h }
}

// WithClock replaces time.Now for event and log timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Director) { d.now = now }
}

func New(w *world.World, reg *commands.Registry, commanded string, opts ...Option) *Director {
	d := &Director{
		World:     w,
		Registry:  reg,
		Commanded: commanded,
		policies:  make(map[string]actors.Policy),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    noop.NewTracerProvider().Tracer("director"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start processes the fiction's initial actions. It may be called once.
func (d *Director) Start(ctx context.Context) (Turn, error) {
	if d.started {
		return Turn{}, ErrStarted
	}
	d.started = true
	ctx, span := d.tracer.Start(ctx, "director.start",
		trace.WithAttributes(attribute.Int("initial_actions", len(d.World.Initial))))
	defer span.End()

	turn := Turn{}
	done, err := d.process(ctx, d.World.Initial)
	turn.Actions = done
	turn.Events = events.FromActions(d.World, done, d.now())
	if len(done) > 0 {
		d.turns = append(d.turns, turn)
	}
	if err != nil {
		span.RecordError(err)
		return turn, err
	}
	return turn, nil
}

// Turn runs one turn: every other living actor with a policy picks its
// actions, then the commanded actor attempts the command typed as line.
// A line that does not make a command is reported without time passing.
func (d *Director) Turn(ctx context.Context, line string) (Turn, error) {
	if !d.World.Running {
		return Turn{}, ErrStopped
	}
	d.started = true

	ctx = observability.WithSessionID(ctx, d.session)
	ctx, span := d.tracer.Start(ctx, "director.turn",
		trace.WithAttributes(
			attribute.String("input", line),
			attribute.String("commanded", d.Commanded),
			attribute.Int("world.tick", d.World.Ticks),
		))
	defer span.End()

	commanded, err := d.Registry.FromLine(d.Commanded, line, d.World.Concepts[d.Commanded])
	if err != nil {
		span.RecordError(err)
		if d.history != nil {
			d.history.AddError(err)
		}
		return Turn{Input: line}, err
	}
	commanded.Cause = quote(line)
	d.log.Info("turn.start", "input", line, "ticks", d.World.Ticks)
	if d.history != nil {
		d.history.AddPlayerCommand(line)
	}

	turn := Turn{Input: line}
	var queue []*world.Action
	for _, agent := range d.livingActors() {
		p, ok := d.policies[agent]
		if !ok {
			continue
		}
		as, err := p.Next(ctx, agent, d.World.Concepts[agent])
		if err != nil {
			d.log.Warn("actor.policy", "agent", agent, "err", err)
			turn.Errors = append(turn.Errors, fmt.Errorf("%s: %w", agent, err))
			continue
		}
		queue = append(queue, as...)
	}
	queue = append(queue, commanded)

	done, err := d.process(ctx, queue)
	turn.Actions = done
	turn.Events = events.FromActions(d.World, done, d.now())
	d.turns = append(d.turns, turn)
	if err != nil {
		span.RecordError(err)
		return turn, err
	}

	if d.history != nil {
		if a, ok := turn.Commanded(d.Commanded); ok {
			d.history.AddOutcome(outcome(a))
		}
	}
	span.SetAttributes(attribute.Int("actions", len(done)))
	d.log.Info("turn.done", "actions", len(done), "ticks", d.World.Ticks, "running", d.World.Running)
	return turn, nil
}

// process works through the queue depth first: whatever an action entails
// or provokes is handled before the rest of the queue. The clock moves to
// each action's end once the action is done.
func (d *Director) process(ctx context.Context, queue []*world.Action) ([]*world.Action, error) {
	var done []*world.Action
	for len(queue) > 0 && d.World.Running {
		a := queue[0]
		queue = queue[1:]

		_, span := d.tracer.Start(ctx, "world.action", trace.WithAttributes(
			attribute.String("action.verb", a.Verb),
			attribute.String("action.agent", a.Agent),
		))
		next, err := a.Do(d.World)
		if err != nil {
			span.RecordError(err)
			span.End()
			return done, fmt.Errorf("processing %s by %s: %w", a.Verb, a.Agent, err)
		}
		span.SetAttributes(observability.ActionAttributes(a.ID, a.Verb, a.Agent,
			string(a.Category()), a.Status().String(), a.Start)...)
		span.End()

		queue = append(next, queue...)
		if a.End() > d.World.Ticks {
			d.World.AdvanceClock(a.End() - d.World.Ticks)
		}
		done = append(done, a)

		if d.actions != nil {
			if err := d.actions.LogAction(d.session, a, d.now()); err != nil {
				d.log.Warn("action log", "action", a.ID, "err", err)
			}
		}
	}
	return done, nil
}

// Undo takes back the most recent turn.
func (d *Director) Undo() (Turn, error) {
	for len(d.turns) > 0 {
		last := d.turns[len(d.turns)-1]
		d.turns = d.turns[:len(d.turns)-1]
		if len(last.Actions) == 0 {
			continue
		}
		first := last.Actions[0].ID
		if err := d.World.Undo(first); err != nil {
			return last, err
		}
		if d.actions != nil {
			if err := d.actions.MarkUndone(d.session, first); err != nil {
				d.log.Warn("action log", "undo", first, "err", err)
			}
		}
		d.log.Info("turn.undone", "input", last.Input, "ticks", d.World.Ticks)
		return last, nil
	}
	return Turn{}, ErrNothingToUndo
}

// Turns returns the turns played so far, oldest first.
func (d *Director) Turns() []Turn {
	return append([]Turn(nil), d.turns...)
}

// Concept returns the commanded actor's Concept.
func (d *Director) Concept() *world.Concept {
	return d.World.Concepts[d.Commanded]
}

func (d *Director) livingActors() []string {
	var out []string
	for _, tag := range d.World.Tags() {
		if tag == item.Cosmos || tag == d.Commanded {
			continue
		}
		it := d.World.Items[tag]
		if it.Kind == item.KindActor && it.Alive() {
			out = append(out, tag)
		}
	}
	return out
}

func quote(line string) string {
	return `"` + line + `"`
}

func outcome(a *world.Action) string {
	switch a.Status() {
	case world.Refused:
		return a.Refusal
	case world.Failed, world.Prevented:
		f, _ := a.FirstFailure()
		return fmt.Sprintf("%s %s", a.Verb, f.Reason)
	}
	return a.Verb + " " + a.Status().String()
}
