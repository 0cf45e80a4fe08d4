package world

import (
	"fmt"
	"slices"
	"strings"

	"storyworld/internal/game/item"
)

// Precondition heads.
const (
	Allowed              = "allowed"
	CanAccessDirect      = "can_access_direct"
	CanAccessIndirect    = "can_access_indirect"
	CanAccessKey         = "can_access_key"
	CanAccessFlames      = "can_access_flames"
	CanSee               = "can_see"
	ConfigureToDifferent = "configure_to_different"
	ExitExists           = "exit_exists"
	HasFeature           = "has_feature"
	HasValue             = "has_value"
	ModifyToDifferent    = "modify_to_different"
	Never                = "never"
	ParentIs             = "parent_is"
)

// Reasons an item may not be placed somewhere, besides "<head>_<link>".
const (
	RoomsCannotMove    = "rooms_cannot_move"
	NotOwnDescendant   = "not_own_descendant"
	SubstanceContained = "substance_contained"
)

// Clause is one precondition. Which fields are used depends on Head.
type Clause struct {
	Head      string    `json:"head"`
	Agent     string    `json:"agent,omitempty"`
	Tag       string    `json:"tag,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Link      item.Link `json:"link,omitempty"`
	Parent    string    `json:"parent,omitempty"`
	Feature   string    `json:"feature,omitempty"`
	Value     any       `json:"value,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

func (c Clause) String() string {
	parts := []string{c.Head}
	for _, s := range []string{c.Reason, c.Agent, c.Tag} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(c.Tags) > 0 {
		parts = append(parts, "["+strings.Join(c.Tags, " ")+"]")
	}
	if c.Link != "" {
		parts = append(parts, string(c.Link))
	}
	for _, s := range []string{c.Parent, c.Feature, c.Direction} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if c.Head == HasValue || c.Head == ModifyToDifferent {
		parts = append(parts, fmt.Sprint(c.Value))
	}
	return strings.Join(parts, " ")
}

// Precondition records whether a clause held when the action was tried.
type Precondition struct {
	Met    bool   `json:"met"`
	Clause Clause `json:"clause"`
}

// Failure is one reason an action did not take effect.
type Failure struct {
	Reason string `json:"reason"`
	Agent  string `json:"agent,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Clause Clause `json:"clause"`
}

func (f Failure) String() string {
	return strings.TrimSpace(strings.Join([]string{f.Reason, f.Agent, f.Tag}, " "))
}

func (a *Action) pre(w *World) []Clause {
	switch {
	case a.Behave != nil:
		return a.preBehave()
	case a.Configure != nil:
		return a.preConfigure(w)
	case a.Modify != nil:
		return a.preModify(w)
	case a.Sense != nil:
		return a.preSense()
	}
	return nil
}

func (a *Action) checkPreconditions(w *World) {
	for _, c := range a.pre(w) {
		var failure *Failure
		switch {
		case c.Head == Allowed:
			if reason := w.checkAllowed(c); reason != "" {
				failure = &Failure{Reason: reason, Agent: a.Agent, Tag: c.Tag}
			}
		case strings.HasPrefix(c.Head, "can_access"):
			reachable := w.Accessible(c.Agent)
			if !slices.ContainsFunc(c.Tags, func(t string) bool { return slices.Contains(reachable, t) }) {
				failure = &Failure{Reason: c.Head, Agent: c.Agent, Tag: strings.Join(c.Tags, " ")}
			}
		case c.Head == CanSee:
			if reason := w.PreventsSight(c.Agent, c.Tag); reason != "" {
				failure = &Failure{Reason: reason, Agent: c.Agent, Tag: c.Tag}
			}
		case c.Head == ConfigureToDifferent:
			if it := w.Items[c.Tag]; it.Link == c.Link && it.Parent == c.Parent {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		case c.Head == ExitExists:
			room := w.RoomOf(c.Tag)
			if room == nil {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			} else if _, ok := room.Exits[c.Direction]; !ok {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		case c.Head == HasFeature:
			if it, ok := w.Items[c.Tag]; !ok || !it.HasFeature(c.Feature) {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		case c.Head == HasValue:
			if v, ok := w.feature(c.Tag, c.Feature); ok && !item.SameValue(v, c.Value) {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		case c.Head == ModifyToDifferent:
			if v, ok := w.feature(c.Tag, c.Feature); ok && item.SameValue(v, c.Value) {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		case c.Head == Never:
			failure = &Failure{Reason: Never + "_" + c.Reason, Agent: a.Agent}
		case c.Head == ParentIs:
			if it := w.Items[c.Tag]; it.Link != c.Link || it.Parent != c.Parent {
				failure = &Failure{Reason: c.Head, Tag: c.Tag}
			}
		}
		a.Preconditions = append(a.Preconditions, Precondition{Met: failure == nil, Clause: c})
		if failure != nil {
			failure.Clause = c
			a.Failed = append(a.Failed, *failure)
		}
	}
}

func (w *World) feature(tag, name string) (any, bool) {
	it, ok := w.Items[tag]
	if !ok || !it.HasFeature(name) {
		return nil, false
	}
	return it.Feature(name)
}

// checkAllowed decides whether c.Tag may become a child of c.Parent via
// c.Link, returning the reason it may not.
func (w *World) checkAllowed(c Clause) string {
	tag, link, parent := c.Tag, c.Link, c.Parent
	it := w.Items[tag]
	p := w.Items[parent]
	switch {
	case it.IsRoom():
		return RoomsCannotMove
	case tag == parent || slices.Contains(w.Ancestors(parent), tag):
		return NotOwnDescendant
	case it.IsSubstance():
		base := substanceOf(it)
		switch link {
		case item.In:
			if !((p.IsSubstance() && parent == base) ||
				p.Source == base ||
				(p.Vessel != "" && len(p.Children) == 0)) {
				return SubstanceContained
			}
		case item.Of:
			return SubstanceContained
		}
		// Anything poured on something is dealt with by entailment.
		return ""
	case !w.rules.Permits(p.Allowed, tag, link, &w.Model):
		return c.Head + "_" + string(link)
	case parent == item.Cosmos || p.Parent == item.Cosmos:
		return ""
	}

	// A parent's own placement may depend on what it holds, so recheck
	// every ancestor, innermost first, with the change made in a copy.
	test := w.scratch()
	moving := test.Items[tag]
	if old, ok := test.Items[moving.Parent]; ok {
		old.RemoveChild(moving.Link, tag, true)
	}
	test.Items[parent].AddChild(link, tag, true)
	moving.Parent, moving.Link = parent, link

	met := w.rules.Permits(test.Items[parent].Allowed, tag, link, test)
	for met && parent != item.Cosmos {
		tag = parent
		child := test.Items[tag]
		parent, link = child.Parent, child.Link
		up, ok := test.Items[parent]
		if !ok {
			break
		}
		met = w.rules.Permits(up.Allowed, tag, link, test)
	}
	if !met {
		return c.Head + "_" + string(link)
	}
	return ""
}

// substanceOf returns the tag of the substance an amount belongs to.
func substanceOf(it *item.Item) string {
	if it.AmountOf != "" {
		return it.AmountOf
	}
	return it.Tag
}
