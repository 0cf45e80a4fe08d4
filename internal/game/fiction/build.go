package fiction

import (
	"fmt"

	"storyworld/internal/game/commands"
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

// RuleClause is one way a containment rule can be satisfied. Empty fields
// match anything.
type RuleClause struct {
	Tag        string `yaml:"tag"`
	Link       string `yaml:"link"`
	OnlyThings bool   `yaml:"only_things"`
}

// ConditionSpec is a named condition actors' refusals can refer to.
type ConditionSpec struct {
	Actor   string       `yaml:"actor"`
	InRoom  string       `yaml:"in_room"`
	Feature *FeatureTest `yaml:"feature"`
}

// CommandSpec adds a command of the fiction's own. Every parameter is an
// item tag and can be used as a variable in the action.
type CommandSpec struct {
	Name   string     `yaml:"name"`
	Help   string     `yaml:"help"`
	Params []string   `yaml:"params"`
	Action ActionSpec `yaml:"action"`
}

// Reaction produces actions in response to an action matching When.
type Reaction struct {
	When Match        `yaml:"when"`
	Then []ActionSpec `yaml:"then"`
}

// HookSpec is the behavior attached to one item.
type HookSpec struct {
	Prevent       []Match    `yaml:"prevent"`
	React         []Reaction `yaml:"react"`
	ReactToFailed []Reaction `yaml:"react_to_failed"`
}

// Game is a fiction ready to be played.
type Game struct {
	Fiction   *Fiction
	World     *world.World
	Registry  *commands.Registry
	Commanded string
	Focalizer string
	// Actors holds how each autonomous actor behaves, by tag.
	Actors map[string]ActorSpec
}

// Build creates the world a fiction describes, with every actor's Concept
// in place, and the registry of commands that can be used in it.
func Build(f *Fiction, opts ...world.Option) (*Game, error) {
	items := make([]*item.Item, 0, len(f.Items))
	for _, spec := range f.Items {
		it, err := spec.Item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	var initial []*world.Action
	for i, spec := range f.Initial {
		a, err := spec.Action(vars{})
		if err != nil {
			return nil, fmt.Errorf("initial action %d: %w", i+1, err)
		}
		initial = append(initial, a)
	}

	options := []world.Option{world.WithRules(f.ruleSet())}
	for name, spec := range f.Conditions {
		options = append(options, world.WithCondition(name, spec.condition()))
	}
	for tag, spec := range f.Hooks {
		options = append(options, world.WithHooks(tag, spec.hooks()))
	}
	w, err := world.New(items, initial, append(options, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFiction, err)
	}
	for tag := range f.Hooks {
		if _, ok := w.Get(tag); !ok {
			return nil, fmt.Errorf("%w: hooks for unknown item %s", ErrInvalidFiction, tag)
		}
	}

	g := &Game{
		Fiction:   f,
		World:     w,
		Registry:  commands.Default(),
		Commanded: f.Spin.Commanded,
		Focalizer: f.Spin.Focalizer,
		Actors:    f.Actors,
	}
	if g.Focalizer == "" {
		g.Focalizer = g.Commanded
	}
	for _, tag := range []string{g.Commanded, g.Focalizer} {
		if !w.Has(item.KindActor, tag) {
			return nil, fmt.Errorf("%w: %s is not an actor", ErrInvalidFiction, tag)
		}
	}
	for tag := range f.Actors {
		if !w.Has(item.KindActor, tag) {
			return nil, fmt.Errorf("%w: %s is not an actor", ErrInvalidFiction, tag)
		}
	}
	for _, spec := range f.Commands {
		g.Registry.Register(spec.command())
	}

	seeds, err := f.seeds(w)
	if err != nil {
		return nil, err
	}
	w.SetConcepts(seeds...)
	return g, nil
}

// Item builds the item s describes.
func (s ItemSpec) Item() (*item.Item, error) {
	link := item.Link(s.Link)
	var it *item.Item
	switch item.Kind(s.Kind) {
	case item.KindActor:
		it = item.NewActor(s.Tag, link, s.Parent)
	case item.KindThing:
		it = item.NewThing(s.Tag, link, s.Parent)
	case item.KindSharedThing:
		it = item.NewSharedThing(s.Tag)
	case item.KindRoom:
		exits := s.Exits
		if exits == nil {
			exits = map[string]string{}
		}
		it = item.NewRoom(s.Tag, exits)
	case item.KindDoor:
		it = item.NewDoor(s.Tag, "", "")
		it.Connects = s.Connects
	case item.KindSubstance:
		it = item.NewSubstance(s.Tag)
	default:
		return nil, fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidFiction, s.Tag, s.Kind)
	}
	if it.Parent == item.Cosmos && s.Parent != "" && s.Parent != item.Cosmos {
		return nil, fmt.Errorf("%w: %s is a %s and cannot be placed in %s", ErrInvalidFiction, s.Tag, s.Kind, s.Parent)
	}

	it.Article = s.Article
	it.Called = s.Called
	it.Referring = s.Referring
	it.Qualities = s.Qualities
	if s.Gender != "" {
		it.Gender = s.Gender
	}
	if s.Number != "" {
		it.Number = s.Number
	}
	if s.Glow != nil {
		it.Glow = *s.Glow
	}
	if s.Prominence != nil {
		it.Prominence = *s.Prominence
	}
	if s.Mention != nil {
		it.Mention = *s.Mention
	}
	it.Transparent = s.Transparent
	it.Senses = s.Senses
	if s.Allowed != "" {
		it.Allowed = s.Allowed
	}
	if len(s.Features) > 0 {
		it.Features = make(map[string]any, len(s.Features))
		for name, v := range s.Features {
			it.Features[name] = item.Normalize(v)
		}
	}
	if s.Exits != nil {
		it.Exits = s.Exits
	}
	it.View = s.View
	it.Shared = s.Shared
	it.Refuses = s.Refuses
	it.Key = s.Key
	it.Source = s.Source
	it.Vessel = s.Vessel
	return it, nil
}

func (f *Fiction) ruleSet() item.RuleSet {
	rules := make(item.RuleSet, len(f.Rules))
	for name, clauses := range f.Rules {
		clauses := clauses
		rules[name] = func(tag string, link item.Link, t item.Tree) bool {
			for _, c := range clauses {
				if c.Tag != "" && c.Tag != tag {
					continue
				}
				if c.Link != "" && item.Link(c.Link) != link {
					continue
				}
				if c.OnlyThings && !item.OnlyThings(tag, t) {
					continue
				}
				return true
			}
			return false
		}
	}
	return rules
}

func (s ConditionSpec) condition() world.Condition {
	return func(w *world.World) bool {
		if s.Actor != "" && s.InRoom != "" {
			room := w.RoomOf(s.Actor)
			if room == nil || room.Tag != s.InRoom {
				return false
			}
		}
		return s.Feature.holds(w, vars{})
	}
}

func (s HookSpec) hooks() world.Hooks {
	h := world.HookFuncs{}
	if len(s.Prevent) > 0 {
		h.OnPrevent = func(w *world.World, a *world.Action) bool {
			for _, m := range s.Prevent {
				if m.matches(w, a) {
					return true
				}
			}
			return false
		}
	}
	if len(s.React) > 0 {
		h.OnReact = reactions(s.React)
	}
	if len(s.ReactToFailed) > 0 {
		h.OnReactToFailed = reactions(s.ReactToFailed)
	}
	return h
}

func reactions(rs []Reaction) func(*world.World, *world.Action) []*world.Action {
	return func(w *world.World, basis *world.Action) []*world.Action {
		var out []*world.Action
		for _, r := range rs {
			if !r.When.matches(w, basis) {
				continue
			}
			for _, spec := range r.Then {
				a, err := spec.Action(basisVars(basis))
				if err != nil {
					w.Logger().Warn("reaction skipped", "basis", basis.ID, "verb", spec.Verb, "error", err)
					continue
				}
				a.Cause = fmt.Sprintf(":%d:", basis.ID)
				out = append(out, a)
			}
		}
		return out
	}
}

func (s CommandSpec) command() commands.Command {
	params := make([]commands.Param, len(s.Params))
	for i, name := range s.Params {
		params[i] = commands.Param{Name: name}
	}
	return commands.New(s.Name, s.Help, params,
		func(agent string, args commands.Args, _ *world.Concept) (*world.Action, error) {
			v := vars{"agent": agent}
			for _, name := range s.Params {
				v[name] = args.Str(name)
			}
			return s.Action.Action(v)
		})
}

// seeds gives each actor named in the fiction's concepts what it can see
// now and, in addition, the items it is said to know about.
func (f *Fiction) seeds(w *world.World) ([]world.ConceptSeed, error) {
	var seeds []world.ConceptSeed
	for actor, known := range f.Concepts {
		if !w.Has(item.KindActor, actor) {
			return nil, fmt.Errorf("%w: concept for %s, which is not an actor", ErrInvalidFiction, actor)
		}
		seen := make(map[string]bool)
		var items []*item.Item
		for _, tag := range w.Tags() {
			if tag != item.Cosmos && w.CanSee(actor, tag) {
				seen[tag] = true
				items = append(items, w.Items[tag].Clone())
			}
		}
		for _, tag := range known {
			it, ok := w.Get(tag)
			if !ok {
				return nil, fmt.Errorf("%w: %s is said to know of unknown item %s", ErrInvalidFiction, actor, tag)
			}
			if !seen[tag] {
				seen[tag] = true
				items = append(items, it.Clone())
			}
		}
		seeds = append(seeds, world.ConceptSeed{Actor: actor, Items: items})
	}
	return seeds, nil
}
