// Package item models the things that exist in a simulated fiction: actors,
// rooms, doors, things, shared things and substances, arranged in a single
// ownership tree rooted at the cosmos.
package item

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
)

// Kind is the category of an Item.
type Kind string

const (
	KindActor       Kind = "actor"
	KindDoor        Kind = "door"
	KindRoom        Kind = "room"
	KindThing       Kind = "thing"
	KindSharedThing Kind = "sharedthing"
	KindSubstance   Kind = "substance"
)

// Link names the relation between a child and its parent.
type Link string

const (
	In      Link = "in"
	On      Link = "on"
	Of      Link = "of"
	PartOf  Link = "part_of"
	Through Link = "through"
)

// Reserved tags.
const (
	Cosmos    = "@cosmos"
	Focalizer = "@focalizer"
	Commanded = "@commanded"
)

var tagPattern = regexp.MustCompile(`^@[a-z0-9_]{2,30}$`)

// Child is one (link, tag) entry in an item's ordered child list.
type Child struct {
	Link Link   `json:"link" yaml:"link"`
	Tag  string `json:"tag" yaml:"tag"`
}

// View describes how well a room can be seen from another room.
type View struct {
	Visibility float64 `json:"visibility" yaml:"visibility"`
	Direction  string  `json:"direction" yaml:"direction"`
}

// Refusal is a declarative veto an actor applies to actions it is asked to
// perform. Pattern is a space separated list of regular expressions, all of
// which must match the action's one-line signature. The veto applies when the
// actor is in one of Rooms, or, if Rooms is empty, when the named condition
// holds.
type Refusal struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	When    string   `json:"when,omitempty" yaml:"when,omitempty"`
	Rooms   []string `json:"rooms,omitempty" yaml:"rooms,omitempty"`
	Reason  string   `json:"reason" yaml:"reason"`
}

// Item is a node in the ownership tree. Descriptive state is held in explicit
// fields; mutable state particular to a fiction (open, locked, consumable,
// alive, ...) lives in Features.
type Item struct {
	Tag    string `json:"tag"`
	Kind   Kind   `json:"kind"`
	Parent string `json:"parent"`
	Link   Link   `json:"link"`

	Children []Child `json:"children,omitempty"`

	Article     string            `json:"article,omitempty"`
	Called      string            `json:"called,omitempty"`
	Referring   string            `json:"referring,omitempty"`
	Qualities   []string          `json:"qualities,omitempty"`
	Gender      string            `json:"gender,omitempty"`
	Number      string            `json:"number,omitempty"`
	Glow        float64           `json:"glow"`
	Prominence  float64           `json:"prominence"`
	Transparent bool              `json:"transparent"`
	Mention     bool              `json:"mention"`
	Senses      map[string]string `json:"senses,omitempty"`

	// Allowed names the containment rule consulted before anything becomes
	// a child of this item.
	Allowed string `json:"allowed"`

	Features map[string]any `json:"features,omitempty"`

	Exits    map[string]string `json:"exits,omitempty"`
	View     map[string]View   `json:"view,omitempty"`
	Shared   []string          `json:"shared,omitempty"`
	Connects []string          `json:"connects,omitempty"`
	Refuses  []Refusal         `json:"refuses,omitempty"`

	Key    string `json:"key,omitempty"`
	Source string `json:"source,omitempty"`
	Vessel string `json:"vessel,omitempty"`
	// AmountOf is set on substance amounts to the tag of their substance.
	AmountOf string `json:"amount_of,omitempty"`

	Blanked bool `json:"blanked,omitempty"`
}

func newItem(tag string, kind Kind, link Link, parent string) *Item {
	return &Item{
		Tag:        tag,
		Kind:       kind,
		Parent:     parent,
		Link:       link,
		Gender:     "neuter",
		Number:     "singular",
		Prominence: 0.5,
		Mention:    true,
		Allowed:    RuleNotHaveItems,
	}
}

// NewActor returns an actor placed under parent.
func NewActor(tag string, link Link, parent string) *Item {
	return newItem(tag, KindActor, link, parent)
}

// NewThing returns a thing placed under parent.
func NewThing(tag string, link Link, parent string) *Item {
	return newItem(tag, KindThing, link, parent)
}

// NewSharedThing returns a thing that appears in every room listing it in
// Shared. Shared things hang off the cosmos and contain nothing.
func NewSharedThing(tag string) *Item {
	return newItem(tag, KindSharedThing, Of, Cosmos)
}

// NewRoom returns a room with the given exits. Rooms are lit and prominent
// unless a fiction says otherwise.
func NewRoom(tag string, exits map[string]string) *Item {
	it := newItem(tag, KindRoom, Of, Cosmos)
	it.Exits = exits
	it.Glow = 1.0
	it.Prominence = 1.0
	it.Allowed = RuleContainPermitAndHaveParts
	return it
}

// NewDoor returns a door joining two rooms.
func NewDoor(tag string, a, b string) *Item {
	it := newItem(tag, KindDoor, Of, Cosmos)
	it.Connects = []string{a, b}
	it.Allowed = RulePermitAnyItem
	return it
}

// NewSubstance returns the root item of a substance. Amounts of it are
// created when a world is built.
func NewSubstance(tag string) *Item {
	it := newItem(tag, KindSubstance, Of, Cosmos)
	it.Allowed = RuleHaveAnyItem
	return it
}

func (it *Item) String() string { return it.Tag }

func (it *Item) IsActor() bool     { return it.Kind == KindActor }
func (it *Item) IsDoor() bool      { return it.Kind == KindDoor }
func (it *Item) IsRoom() bool      { return it.Kind == KindRoom }
func (it *Item) IsSubstance() bool { return it.Kind == KindSubstance }
func (it *Item) IsShared() bool    { return it.Kind == KindSharedThing }

// IsThing reports whether the item is a thing, shared or not.
func (it *Item) IsThing() bool {
	return it.Kind == KindThing || it.Kind == KindSharedThing
}

// Is reports whether the item belongs to kind. KindThing also matches
// shared things.
func (it *Item) Is(kind Kind) bool {
	if kind == KindThing {
		return it.IsThing()
	}
	return it.Kind == kind
}

// Opens reports whether the item has an open/closed state at all.
func (it *Item) Opens() bool {
	_, ok := it.Features["open"]
	return ok
}

// IsOpen reports whether the item is open. Items that do not open count as
// open.
func (it *Item) IsOpen() bool {
	v, ok := it.Features["open"]
	if !ok {
		return true
	}
	b, _ := v.(bool)
	return b
}

// Alive reports whether the item may act, prevent and react. Items without
// an alive feature are alive.
func (it *Item) Alive() bool {
	v, ok := it.Features["alive"]
	if !ok {
		return true
	}
	b, _ := v.(bool)
	return b
}

// Exit returns the tag that lies in direction, or "" if the exit is missing
// or is only descriptive text.
func (it *Item) Exit(direction string) string {
	dest, ok := it.Exits[direction]
	if !ok || len(dest) == 0 || dest[0] != '@' {
		return ""
	}
	return dest
}

// HasChild reports whether (link, tag) is among the item's children.
func (it *Item) HasChild(link Link, tag string) bool {
	return slices.Contains(it.Children, Child{Link: link, Tag: tag})
}

// AddChild adds (link, tag) to the children. With apply false it removes
// the pair instead, so the same call can be replayed to invert a change.
func (it *Item) AddChild(link Link, tag string, apply bool) {
	if !apply {
		it.RemoveChild(link, tag, true)
		return
	}
	if !it.HasChild(link, tag) {
		it.Children = append(it.Children, Child{Link: link, Tag: tag})
	}
}

// RemoveChild is the inverse of AddChild.
func (it *Item) RemoveChild(link Link, tag string, apply bool) {
	if !apply {
		it.AddChild(link, tag, true)
		return
	}
	it.Children = slices.DeleteFunc(it.Children, func(c Child) bool {
		return c.Link == link && c.Tag == tag
	})
}

// Blank erases what is known about the item while keeping its tag and kind.
func (it *Item) Blank() {
	it.Article = "the"
	it.Called = "object"
	switch it.Kind {
	case KindRoom:
		it.Called = "place"
	case KindActor:
		it.Called = "individual"
	}
	it.Referring = ""
	it.Link = ""
	it.Parent = ""
	it.Senses = nil
	it.Children = nil
	it.Allowed = RuleNotHaveItems
	it.Blanked = true
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Children = slices.Clone(it.Children)
	c.Qualities = slices.Clone(it.Qualities)
	c.Shared = slices.Clone(it.Shared)
	c.Connects = slices.Clone(it.Connects)
	c.Senses = cloneMap(it.Senses)
	c.Features = cloneMap(it.Features)
	c.Exits = cloneMap(it.Exits)
	c.View = cloneMap(it.View)
	if it.Refuses != nil {
		c.Refuses = make([]Refusal, len(it.Refuses))
		for i, r := range it.Refuses {
			r.Rooms = slices.Clone(r.Rooms)
			c.Refuses[i] = r
		}
	}
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether two items carry identical state.
func (it *Item) Equal(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return reflect.DeepEqual(it, other)
}

// ValidTag reports whether tag is syntactically valid.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// Validate checks an item definition for defects in the fiction that
// defines it.
func (it *Item) Validate() error {
	if it.Tag == Cosmos {
		return nil
	}
	if !ValidTag(it.Tag) {
		return fmt.Errorf("%w: %q: tags start with \"@\" followed by 2-30 lowercase letters, digits or underscores", ErrInvalidTag, it.Tag)
	}
	switch it.Kind {
	case KindActor, KindThing:
		if it.Parent == "" || it.Link == "" {
			return fmt.Errorf("%w: %s needs a link and a parent", ErrInvalidItem, it.Tag)
		}
	case KindRoom, KindDoor, KindSharedThing, KindSubstance:
		if it.Parent != Cosmos {
			return fmt.Errorf("%w: %s is placed automatically and cannot have a parent", ErrInvalidItem, it.Tag)
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidItem, it.Tag, it.Kind)
	}
	switch it.Kind {
	case KindRoom:
		if it.Exits == nil {
			return fmt.Errorf("%w: room %s is missing exits", ErrInvalidItem, it.Tag)
		}
	case KindDoor:
		if len(it.Connects) != 2 {
			return fmt.Errorf("%w: door %s must connect two rooms", ErrInvalidItem, it.Tag)
		}
	}
	if it.Kind != KindRoom && (len(it.Exits) > 0 || len(it.Shared) > 0) {
		return fmt.Errorf("%w: only rooms have exits or shared things (%s)", ErrInvalidItem, it.Tag)
	}
	if it.Kind != KindActor && len(it.Refuses) > 0 {
		return fmt.Errorf("%w: only actors refuse (%s)", ErrInvalidItem, it.Tag)
	}
	for name := range it.Features {
		if !featureName.MatchString(name) {
			return fmt.Errorf("%w: feature %q on %s", ErrInvalidFeature, name, it.Tag)
		}
	}
	return nil
}
