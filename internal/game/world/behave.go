package world

import "storyworld/internal/game/item"

func (a *Action) preBehave() []Clause {
	p := a.Behave
	var pre []Clause
	if p.Direct != "" {
		pre = append(pre, Clause{Head: CanAccessDirect, Agent: a.Agent, Tags: []string{p.Direct}})
	}
	if p.Indirect != "" {
		pre = append(pre, Clause{Head: CanAccessIndirect, Agent: a.Agent, Tags: []string{p.Indirect}})
	}
	if p.Target != "" {
		pre = append(pre, Clause{Head: CanSee, Agent: a.Agent, Tag: p.Target})
	}
	if (a.Verb == "drink" || a.Verb == "eat") && p.Direct != "" {
		pre = append(pre, Clause{Head: HasFeature, Tag: p.Direct, Feature: "consumable"})
	}
	if a.Verb == "leave" {
		pre = append(pre, Clause{Head: ExitExists, Tag: a.Agent, Direction: p.Direction})
	}
	return pre
}

// entailsBehave turns leaving into entering the next room and consuming
// into the consumed thing going away.
func (a *Action) entailsBehave(w *World) []*Action {
	p := a.Behave
	var actions []*Action
	if room := w.RoomOf(a.Agent); a.Verb == "leave" && room != nil {
		if goal := room.Exit(p.Direction); goal != "" {
			link := item.In
			if w.Has(item.KindDoor, goal) {
				link = item.Through
			}
			enter := NewConfigure("enter", a.Agent, a.Agent, link, goal)
			enter.Template = "[agent/s] [arrive/v]"
			enter.Salience = 0.1
			actions = append(actions, enter)
		}
	}
	if a.Verb == "drink" || a.Verb == "eat" {
		consumed := p.Direct
		if consumed == "" && p.Indirect != "" {
			if held := w.Items[p.Indirect].Children; len(held) > 0 {
				consumed = held[0].Tag
			}
		}
		if consumed != "" {
			it := w.Items[consumed]
			link, parent := item.Of, item.Cosmos
			if it.IsSubstance() {
				link, parent = item.In, substanceOf(it)
			}
			gone := NewConfigure("polish_off", item.Cosmos, consumed, link, parent)
			gone.Salience = 0
			actions = append(actions, gone)
		}
	}
	return actions
}

func (a *Action) preSense() []Clause {
	p := a.Sense
	switch p.Modality {
	case "sight":
		return []Clause{{Head: CanSee, Agent: a.Agent, Tag: p.Direct}}
	case "touch":
		return []Clause{{Head: CanAccessDirect, Agent: a.Agent, Tags: []string{p.Direct}}}
	}
	return nil
}
