package world

import (
	"fmt"
	"slices"

	"storyworld/internal/game/item"
)

func (a *Action) preConfigure(w *World) []Clause {
	p := a.Configure
	it := w.Items[p.Direct]
	var pre []Clause
	if a.Agent != item.Cosmos {
		if it.Link == item.PartOf {
			pre = append(pre, Clause{Head: Never, Reason: "configure_parts"})
		}
		if it.IsDoor() {
			pre = append(pre, Clause{Head: Never, Reason: "configure_doors"})
		}
		if it.IsShared() {
			pre = append(pre, Clause{Head: Never, Reason: "configure_sharedthings"})
		}
	}
	pre = append(pre, Clause{Head: ConfigureToDifferent, Tag: p.Direct, Link: p.New.Link, Parent: p.New.Parent})
	if p.Old != nil && p.Old.Link == item.In && w.Items[p.Old.Parent].Opens() {
		pre = append(pre, Clause{Head: HasValue, Tag: p.Old.Parent, Feature: "open", Value: true})
	}
	if (p.New.Link == item.In || p.New.Link == item.Through) && w.Items[p.New.Parent].Opens() {
		pre = append(pre, Clause{Head: HasValue, Tag: p.New.Parent, Feature: "open", Value: true})
	}
	if p.Old != nil {
		pre = append(pre, Clause{Head: ParentIs, Tag: p.Direct, Link: p.Old.Link, Parent: p.Old.Parent})
	}
	pre = append(pre, Clause{Head: CanAccessDirect, Agent: a.Agent, Tags: []string{p.Direct}})
	if p.New.Parent != item.Cosmos && !w.Items[p.New.Parent].IsRoom() {
		pre = append(pre, Clause{Head: CanAccessIndirect, Agent: a.Agent, Tags: []string{p.New.Parent}})
	}
	return append(pre, Clause{Head: Allowed, Tag: p.Direct, Link: p.New.Link, Parent: p.New.Parent})
}

// changeConfigure moves the item and tells each agent what it saw of the
// move: the container it left, the item, and the container it arrived in.
func (a *Action) changeConfigure(w *World, apply bool) {
	a.fillOld(w)
	p := a.Configure
	old, dest := *p.Old, p.New
	end := a.End()

	seenBy := make(map[string]bool)
	if apply {
		for _, actor := range w.ConceptTags() {
			seenBy[actor] = w.CanSee(actor, p.Direct)
			if actor == a.Agent || actor == p.Direct || seenBy[actor] {
				from := w.Items[old.Parent].Clone()
				from.RemoveChild(old.Link, p.Direct, true)
				if !w.CanSee(actor, old.Parent) {
					from.Blank()
				}
				w.Transfer(from, actor, end)
			}
		}
	}

	w.Items[old.Parent].RemoveChild(old.Link, p.Direct, apply)
	w.Items[dest.Parent].AddChild(dest.Link, p.Direct, apply)
	it := w.Items[p.Direct]
	if !apply {
		it.Parent, it.Link = old.Parent, old.Link
		return
	}
	it.Parent, it.Link = dest.Parent, dest.Link

	for _, actor := range w.ConceptTags() {
		room := ""
		if r := w.RoomOf(actor); r != nil {
			room = r.Tag
		}
		if seenBy[actor] && !w.CanSee(actor, p.Direct) {
			w.TransferOut(it, actor, end)
		}
		if actor == a.Agent || actor == p.Direct || w.CanSee(actor, p.Direct) {
			w.Transfer(it, actor, end)
		}
		to := w.Items[dest.Parent].Clone()
		if actor == dest.Parent || w.CanSee(actor, dest.Parent) {
			w.Transfer(to, actor, end)
			if to.IsRoom() {
				for _, viewed := range sortedKeys(to.View) {
					if w.CanSee(actor, viewed) {
						w.Transfer(w.Items[viewed], actor, end)
					}
				}
			}
		} else if actor == p.Direct && !w.CanSee(actor, room) {
			// Moved somewhere dark: all the agent knows is that it is in
			// something.
			to.Blank()
			to.AddChild(dest.Link, p.Direct, true)
			w.Transfer(to, actor, end)
		}
		a.enlighten(w, actor, room, end)
	}
}

// enlighten refreshes a room the actor had only a blank idea of, once it
// can be seen, and queues a look at it.
func (a *Action) enlighten(w *World, actor, room string, end int) {
	if room == "" {
		return
	}
	known, ok := w.Concepts[actor].Items[room]
	if !ok || !known.Blanked || !w.CanSee(actor, room) {
		return
	}
	w.Transfer(w.Items[room], actor, end)
	look := NewSense("examine", actor, room, "sight")
	look.Cause = fmt.Sprintf(":%d:", a.ID)
	a.enlightened = append(a.enlightened, look)
}

func (a *Action) entailsConfigure(w *World) []*Action {
	p := a.Configure
	old, dest := *p.Old, p.New
	it := w.Items[p.Direct]
	var actions []*Action
	switch {
	case dest.Link == item.Through:
		if door := w.Items[dest.Parent]; door.IsDoor() {
			rooms := slices.DeleteFunc(slices.Clone(door.Connects), func(r string) bool { return r == old.Parent })
			if len(rooms) == 0 {
				break
			}
			next := NewConfigure("pass_through", a.Agent, p.Direct, item.In, rooms[0])
			next.Template = "[agent/s] [emerge/v] from [" + dest.Parent + "/o]"
			actions = append(actions, next)
		} else {
			next := NewConfigure("fall", a.Agent, p.Direct, item.In, dest.Parent)
			next.Template = "[direct/s] [drop/v] to the ground"
			actions = append(actions, next)
		}
	case it.IsActor() && old.Parent != dest.Parent && dest.Parent != item.Cosmos:
		look := NewSense("examine", p.Direct, dest.Parent, "sight")
		look.Cause = fmt.Sprintf(":%d:", a.ID)
		actions = append(actions, look)
	case it.IsSubstance():
		base := substanceOf(it)
		from := w.Items[old.Parent]
		to := w.Items[dest.Parent]
		switch {
		case dest.Link == item.In && from.Source == base:
			if refill := firstAmount(w, base); refill != "" {
				next := NewConfigure("replenish", item.Cosmos, refill, item.In, old.Parent)
				next.Salience = 0
				actions = append(actions, next)
			}
		case to.Vessel == "" && to.Source != base && dest.Parent != base:
			next := NewConfigure("vanish", item.Cosmos, p.Direct, item.In, base)
			next.Template = "the [" + p.Direct + "/s] [is/v] gone [now]"
			actions = append(actions, next)
		}
	}
	return append(actions, a.enlightened...)
}

// firstAmount returns the first unused amount held by a substance.
func firstAmount(w *World, base string) string {
	s, ok := w.Items[base]
	if !ok || len(s.Children) == 0 {
		return ""
	}
	return s.Children[0].Tag
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
