package item

// Stop selects how far Descendants descends.
type Stop int

const (
	// StopBottom descends unconditionally.
	StopBottom Stop = iota
	// StopClosed does not descend into closed items.
	StopClosed
	// StopOpaque does not descend into items that are closed and opaque.
	StopOpaque
)

// Tree is the read-only view of an item set that containment rules consult.
type Tree interface {
	Get(tag string) (*Item, bool)
	Descendants(tag string, stop Stop) []string
}

// Rule reports whether tag may become a child of some parent via link.
type Rule func(tag string, link Link, t Tree) bool

// RuleSet maps rule names, as stored in Item.Allowed, to rules.
type RuleSet map[string]Rule

const (
	RuleHaveAnyItem               = "have_any_item"
	RuleNotHaveItems              = "not_have_items"
	RulePossessAnyItem            = "possess_any_item"
	RulePermitAnyItem             = "permit_any_item"
	RuleContainAnyItem            = "contain_any_item"
	RuleContainAndSupportAnyItem  = "contain_and_support_any_item"
	RuleContainPermitAndHaveParts = "contain_permit_and_have_parts"
	RulePossessAnyThing           = "possess_any_thing"
	RulePossessAndWearAnyThing    = "possess_and_wear_any_thing"
	RuleContainAnyThing           = "contain_any_thing"
	RuleContainAndSupportThings   = "contain_and_support_things"
)

// DefaultRules returns the built-in containment rules. Fictions add their
// own to the returned set.
func DefaultRules() RuleSet {
	return RuleSet{
		RuleHaveAnyItem:               func(string, Link, Tree) bool { return true },
		RuleNotHaveItems:              func(string, Link, Tree) bool { return false },
		RulePossessAnyItem:            linkIn(Of),
		RulePermitAnyItem:             linkIn(Through),
		RuleContainAnyItem:            linkIn(In),
		RuleContainAndSupportAnyItem:  linkIn(In, On),
		RuleContainPermitAndHaveParts: linkIn(In, PartOf, Through),
		RulePossessAnyThing:           thingsVia(Of),
		RulePossessAndWearAnyThing:    thingsVia(Of, On),
		RuleContainAnyThing:           thingsVia(In),
		RuleContainAndSupportThings:   thingsVia(In, On),
	}
}

// Merge returns a new set holding the rules of rs overlaid with extra.
func (rs RuleSet) Merge(extra RuleSet) RuleSet {
	out := make(RuleSet, len(rs)+len(extra))
	for k, v := range rs {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Permits evaluates the named rule. Unknown rules permit nothing.
func (rs RuleSet) Permits(name, tag string, link Link, t Tree) bool {
	rule, ok := rs[name]
	if !ok {
		return false
	}
	return rule(tag, link, t)
}

func linkIn(links ...Link) Rule {
	return func(_ string, link Link, _ Tree) bool {
		for _, l := range links {
			if l == link {
				return true
			}
		}
		return false
	}
}

func thingsVia(links ...Link) Rule {
	byLink := linkIn(links...)
	return func(tag string, link Link, t Tree) bool {
		return byLink(tag, link, t) && OnlyThings(tag, t)
	}
}

// OnlyThings reports whether tag and everything under it are things or
// substances.
func OnlyThings(tag string, t Tree) bool {
	for _, tg := range append([]string{tag}, t.Descendants(tag, StopBottom)...) {
		it, ok := t.Get(tg)
		if !ok {
			continue
		}
		if !(it.IsThing() || it.IsSubstance()) {
			return false
		}
	}
	return true
}
