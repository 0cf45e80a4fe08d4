package fiction

import (
	"fmt"
	"strings"

	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

// ActionSpec describes an action in a fiction. Tag fields may name a
// variable such as $agent or $direct, filled in from the action being
// reacted to, or from a command's arguments.
type ActionSpec struct {
	Category  string   `yaml:"category"`
	Verb      string   `yaml:"verb"`
	Agent     string   `yaml:"agent"`
	Direct    string   `yaml:"direct"`
	Indirect  string   `yaml:"indirect"`
	Target    string   `yaml:"target"`
	Direction string   `yaml:"direction"`
	Utterance string   `yaml:"utterance"`
	Link      string   `yaml:"link"`
	Parent    string   `yaml:"parent"`
	Feature   string   `yaml:"feature"`
	Value     any      `yaml:"value"`
	Modality  string   `yaml:"modality"`
	Template  string   `yaml:"template"`
	Salience  *float64 `yaml:"salience"`
	Final     bool     `yaml:"final"`
}

type vars map[string]string

func (v vars) resolve(s string) (string, error) {
	if !strings.HasPrefix(s, "$") {
		return s, nil
	}
	val, ok := v[strings.TrimPrefix(s, "$")]
	if !ok || val == "" {
		return "", fmt.Errorf("%w: %s is not set here", ErrInvalidFiction, s)
	}
	return val, nil
}

// Action builds the action s describes, resolving $vars from v.
func (s ActionSpec) Action(v vars) (*world.Action, error) {
	var err error
	field := func(x string) string {
		if err != nil || x == "" {
			return x
		}
		var out string
		out, err = v.resolve(x)
		return out
	}
	agent := field(s.Agent)
	direct := field(s.Direct)
	indirect := field(s.Indirect)
	target := field(s.Target)
	parent := field(s.Parent)
	if err != nil {
		return nil, err
	}

	var a *world.Action
	switch world.Category(s.Category) {
	case world.CategoryBehave:
		a = world.NewBehave(s.Verb, agent, world.BehavePayload{
			Direct:    direct,
			Indirect:  indirect,
			Target:    target,
			Direction: s.Direction,
			Utterance: s.Utterance,
		})
	case world.CategoryConfigure:
		a = world.NewConfigure(s.Verb, agent, direct, item.Link(s.Link), parent)
	case world.CategoryModify:
		value := s.Value
		if str, ok := value.(string); ok {
			if value, err = v.resolve(str); err != nil {
				return nil, err
			}
		}
		a = world.NewModify(s.Verb, agent, direct, s.Feature, value)
		if indirect != "" {
			a.Modify.Indirect = indirect
		}
	case world.CategorySense:
		modality := s.Modality
		if modality == "" {
			modality = "sight"
		}
		a = world.NewSense(s.Verb, agent, direct, modality)
	default:
		return nil, fmt.Errorf("%w: unknown action category %q", ErrInvalidFiction, s.Category)
	}
	a.Template = s.Template
	if s.Salience != nil {
		a.Salience = *s.Salience
	}
	a.Final = s.Final
	return a, nil
}

// FeatureTest holds when an item's feature has a value.
type FeatureTest struct {
	Tag    string `yaml:"tag"`
	Name   string `yaml:"name"`
	Equals any    `yaml:"equals"`
}

func (f *FeatureTest) holds(w *world.World, v vars) bool {
	if f == nil {
		return true
	}
	tag, err := v.resolve(f.Tag)
	if err != nil {
		return false
	}
	it, ok := w.Get(tag)
	if !ok {
		return false
	}
	got, ok := it.Feature(f.Name)
	return ok && item.SameValue(got, f.Equals)
}

// Match selects actions by their fields. Empty fields match anything.
type Match struct {
	Verb     string       `yaml:"verb"`
	Category string       `yaml:"category"`
	Agent    string       `yaml:"agent"`
	Direct   string       `yaml:"direct"`
	Modality string       `yaml:"modality"`
	Feature  *FeatureTest `yaml:"feature"`
}

func (m Match) matches(w *world.World, a *world.Action) bool {
	switch {
	case m.Verb != "" && m.Verb != a.Verb,
		m.Category != "" && m.Category != string(a.Category()),
		m.Agent != "" && m.Agent != a.Agent,
		m.Direct != "" && m.Direct != a.Direct():
		return false
	}
	if m.Modality != "" && (a.Sense == nil || a.Sense.Modality != m.Modality) {
		return false
	}
	return m.Feature.holds(w, basisVars(a))
}

func basisVars(a *world.Action) vars {
	return vars{"agent": a.Agent, "direct": a.Direct(), "indirect": a.Indirect()}
}
