// Package world holds the authoritative item tree, the actions that change
// it, and the per-agent Concepts that record what each agent has perceived.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"storyworld/internal/game/item"
)

var (
	ErrUnknownItem    = errors.New("unknown item")
	ErrAlreadyApplied = errors.New("action already applied")
	ErrMissingPayload = errors.New("action missing payload")
	ErrUnknownAction  = errors.New("unknown action")
)

// Condition is a named world-state predicate used by refusals.
type Condition func(w *World) bool

// World is the single canonical model of the fiction.
type World struct {
	Model
	Running  bool
	Concepts map[string]*Concept
	// Initial holds the actions the fiction starts with, already numbered.
	Initial []*Action

	rules      item.RuleSet
	hooks      map[string]Hooks
	conditions map[string]Condition
	cosmos     *item.Item
	log        *slog.Logger
	nextID     int
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for refusals, failures and undo.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithRules adds containment rules to the built-in set.
func WithRules(rules item.RuleSet) Option {
	return func(w *World) { w.rules = w.rules.Merge(rules) }
}

// WithHooks attaches prevent/react behavior to an item.
func WithHooks(tag string, h Hooks) Option {
	return func(w *World) { w.hooks[tag] = h }
}

// WithCondition registers a named condition for refusals.
func WithCondition(name string, c Condition) Option {
	return func(w *World) { w.conditions[name] = c }
}

// WithCosmos replaces the default root item.
func WithCosmos(c *item.Item) Option {
	return func(w *World) { w.cosmos = c }
}

// New builds a World from a fiction's items and initial actions. An amount
// of each substance is created for every source and vessel present now;
// vessels added later get none.
func New(items []*item.Item, initial []*Action, opts ...Option) (*World, error) {
	w := &World{
		Model:    newModel(),
		Running:  true,
		Concepts: make(map[string]*Concept),
		rules:    item.DefaultRules(),
		hooks:    make(map[string]Hooks),
		conditions: map[string]Condition{
			"always": func(*World) bool { return true },
			"never":  func(*World) bool { return false },
		},
		log:    slog.New(slog.DiscardHandler),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(w)
	}

	order := make([]string, 0, len(items))
	for _, it := range items {
		switch it.Tag {
		case item.Cosmos, item.Focalizer, item.Commanded:
			return nil, fmt.Errorf("%w: %s", item.ErrReservedTag, it.Tag)
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, dup := w.Items[it.Tag]; dup {
			return nil, fmt.Errorf("%w: %s is given to more than one item", item.ErrDuplicateTag, it.Tag)
		}
		for _, r := range it.Refuses {
			if err := validPattern(r.Pattern); err != nil {
				return nil, fmt.Errorf("refusal on %s: %w", it.Tag, err)
			}
			if len(r.Rooms) == 0 {
				if _, ok := w.conditions[r.When]; !ok {
					return nil, fmt.Errorf("refusal on %s: unknown condition %q", it.Tag, r.When)
				}
			}
		}
		w.Items[it.Tag] = it
		order = append(order, it.Tag)
	}

	amounts, err := w.instantiateAmounts(items, order)
	if err != nil {
		return nil, err
	}
	order = append(order, amounts...)

	if w.cosmos == nil {
		w.cosmos = newCosmos()
	}
	w.Items[item.Cosmos] = w.cosmos

	for _, tag := range order {
		it := w.Items[tag]
		if _, ok := w.Items[it.Parent]; !ok {
			return nil, fmt.Errorf("%w: %s has parent %s", ErrUnknownItem, tag, it.Parent)
		}
	}
	w.linkChildren(order)

	for _, a := range initial {
		a.Cause = "initial_action"
		w.number(a)
		w.Initial = append(w.Initial, a)
	}
	return w, nil
}

func (w *World) instantiateAmounts(items []*item.Item, order []string) ([]string, error) {
	var amounts []string
	for _, s := range items {
		if !s.IsSubstance() {
			continue
		}
		var parents []string
		for _, tag := range order {
			it := w.Items[tag]
			switch {
			case it.Source == s.Tag:
				parents = append(parents, tag)
			case it.Vessel == s.Tag:
				parents = append(parents, tag)
			case it.Vessel != "":
				// Any vessel might hold this substance later.
				parents = append(parents, s.Tag)
			}
		}
		for n, parent := range parents {
			amount := s.Clone()
			amount.Tag = fmt.Sprintf("%s_%d", s.Tag, n+1)
			amount.Link = item.In
			amount.Parent = parent
			amount.AmountOf = s.Tag
			if _, dup := w.Items[amount.Tag]; dup {
				return nil, fmt.Errorf("%w: amount %s collides with an item", item.ErrDuplicateTag, amount.Tag)
			}
			w.Items[amount.Tag] = amount
			amounts = append(amounts, amount.Tag)
		}
	}
	return amounts, nil
}

func validPattern(pattern string) error {
	for _, p := range strings.Fields(pattern) {
		if _, err := regexp.Compile(p); err != nil {
			return err
		}
	}
	return nil
}

// Rules returns the containment rules in effect.
func (w *World) Rules() item.RuleSet { return w.rules }

// Logger returns the world's logger.
func (w *World) Logger() *slog.Logger { return w.log }

func (w *World) number(a *Action) {
	if a.ID == 0 {
		a.ID = w.nextID
		w.nextID++
	} else if a.ID >= w.nextID {
		w.nextID = a.ID + 1
	}
}

func (w *World) hooksFor(tag string) Hooks {
	if h, ok := w.hooks[tag]; ok {
		return h
	}
	return NoHooks{}
}

func (w *World) condition(name string) Condition {
	if c, ok := w.conditions[name]; ok {
		return c
	}
	return w.conditions["never"]
}

// ConceptTags returns the tags of all agents with a Concept, sorted.
func (w *World) ConceptTags() []string {
	tags := make([]string, 0, len(w.Concepts))
	for tag := range w.Concepts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Concept returns an agent's Concept.
func (w *World) Concept(actor string) (*Concept, bool) {
	c, ok := w.Concepts[actor]
	return c, ok
}

// ConceptSeed supplies an agent's initial knowledge, replacing what the
// agent would otherwise know from looking around.
type ConceptSeed struct {
	Actor string
	Items []*item.Item
	Acts  map[int]*Action
}

// SetConcepts creates a Concept for every actor from what it can see, then
// applies seeds, then builds the omniscient cosmos Concept.
func (w *World) SetConcepts(seeds ...ConceptSeed) {
	for _, actor := range w.Tags() {
		if actor == item.Cosmos || !w.Has(item.KindActor, actor) {
			continue
		}
		var known []*item.Item
		for _, tag := range w.Tags() {
			if w.CanSee(actor, tag) {
				known = append(known, w.Items[tag].Clone())
			}
		}
		w.Concepts[actor] = newConcept(known, nil, nil)
	}
	for _, s := range seeds {
		w.Concepts[s.Actor] = newConcept(s.Items, s.Acts, nil)
	}
	var all []*item.Item
	for _, tag := range w.Tags() {
		if tag != item.Cosmos {
			all = append(all, w.Items[tag].Clone())
		}
	}
	acts := make(map[int]*Action, len(w.Acts))
	for id, a := range w.Acts {
		acts[id] = a.Clone()
	}
	w.Concepts[item.Cosmos] = newConcept(all, acts, nil)
	for tag, c := range w.Concepts {
		c.Of = tag
		c.Ticks = w.Ticks
	}
}

// AdvanceClock moves time forward.
func (w *World) AdvanceClock(duration int) {
	w.Ticks += duration
	for _, c := range w.Concepts {
		c.Ticks = w.Ticks
	}
}

// BackUpClock rolls time back, rolling every Concept back with it.
func (w *World) BackUpClock(target int) {
	w.Ticks = target
	for _, c := range w.Concepts {
		c.RollBackTo(target)
		c.Ticks = target
	}
}

// Undo reverts the world to the start of the given action, undoing it and
// everything that started at or after it, latest first.
func (w *World) Undo(actionID int) error {
	target, ok := w.Acts[actionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAction, actionID)
	}
	at := target.Start
	ids := actsByStart(w.Acts)
	for i := len(ids) - 1; i >= 0; i-- {
		a := w.Acts[ids[i]]
		if a.Start < at {
			break
		}
		delete(w.Acts, a.ID)
		for _, c := range w.Concepts {
			delete(c.Acts, a.ID)
		}
		if err := a.Undo(w); err != nil {
			return fmt.Errorf("undo %d: %w", a.ID, err)
		}
		w.log.Debug("action undone", "action", a.ID, "verb", a.Verb)
	}
	w.BackUpClock(at)
	w.Running = true
	return nil
}

// Reset reverts the world and all Concepts to before the first action.
func (w *World) Reset() error {
	ids := actsByStart(w.Acts)
	if len(ids) == 0 {
		return nil
	}
	return w.Undo(ids[0])
}

// Respondents lists the items that may prevent or react to an action: the
// cosmos, the agent's room and its living contents, and, when an agent moves
// itself to another room, that room and its living contents.
func (w *World) Respondents(a *Action) []string {
	tags := []string{item.Cosmos}
	room := w.RoomOf(a.Agent)
	if room != nil {
		tags = w.appendLiving(tags, room.Tag)
	}
	if a.Configure != nil && a.Configure.Direct == a.Agent {
		newRoom := w.RoomOf(a.Configure.New.Parent)
		if newRoom != nil && newRoom != room {
			tags = w.appendLiving(tags, newRoom.Tag)
		}
	}
	return tags
}

func (w *World) appendLiving(tags []string, room string) []string {
	tags = append(tags, room)
	for _, tag := range w.Descendants(room, item.StopBottom) {
		if it, ok := w.Items[tag]; ok && it.Alive() {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Transfer places a copy of the item, and of whatever of its contents the
// actor can see, into the actor's Concept.
func (w *World) Transfer(it *item.Item, actor string, time int) {
	c, ok := w.Concepts[actor]
	if !ok {
		return
	}
	if it.IsRoom() {
		if _, known := c.Items[it.Tag]; !known {
			cosmos := c.Items[item.Cosmos].Clone()
			cosmos.AddChild(it.Link, it.Tag, true)
			c.UpdateItem(cosmos, time)
		}
	}
	if known, ok := c.Items[it.Tag]; !ok || !known.Equal(it) {
		c.UpdateItem(it.Clone(), time)
		for _, child := range it.Children {
			if w.CanSee(actor, child.Tag) {
				if real, ok := w.Items[child.Tag]; ok {
					w.Transfer(real, actor, time)
				}
			}
		}
	}
	if it.IsRoom() {
		real, ok := w.Items[it.Tag]
		if !ok {
			return
		}
		for _, tag := range real.Shared {
			if shared, ok := w.Items[tag]; ok {
				w.Transfer(shared, actor, time)
			}
		}
		for _, tag := range w.Doors(it.Tag) {
			w.Transfer(w.Items[tag], actor, time)
		}
	}
}

// TransferOut marks an item as gone from wherever the actor believed it to
// be. The actor still knows the item exists.
func (w *World) TransferOut(it *item.Item, actor string, time int) {
	c, ok := w.Concepts[actor]
	if !ok {
		return
	}
	known, ok := c.Items[it.Tag]
	if !ok {
		return
	}
	missing := known.Clone()
	missing.Link = item.Of
	missing.Parent = item.Cosmos
	c.UpdateItem(missing, time)
}
