package world

import "storyworld/internal/game/item"

func (a *Action) preModify(w *World) []Clause {
	p := a.Modify
	it := w.Items[p.Direct]
	pre := []Clause{
		{Head: HasFeature, Tag: p.Direct, Feature: p.Feature},
		{Head: ModifyToDifferent, Tag: p.Direct, Feature: p.Feature, Value: p.New},
	}
	if p.HasOld {
		pre = append(pre, Clause{Head: HasValue, Tag: p.Direct, Feature: p.Feature, Value: p.Old})
	}
	pre = append(pre, Clause{Head: CanAccessDirect, Agent: a.Agent, Tags: []string{p.Direct}})
	if opening, _ := p.New.(bool); p.Feature == "open" && opening && it.HasFeature("locked") {
		pre = append(pre, Clause{Head: HasValue, Tag: p.Direct, Feature: "locked", Value: false})
	}
	switch p.Feature {
	case "burnt":
		var flames []string
		for _, tag := range w.Tags() {
			if lit, _ := w.Items[tag].Features["flame"].(bool); lit {
				flames = append(flames, tag)
			}
		}
		pre = append(pre, Clause{Head: CanAccessFlames, Agent: a.Agent, Tags: flames})
	case "locked":
		if it.Key != "" {
			pre = append(pre, Clause{Head: CanAccessKey, Agent: a.Agent, Tags: []string{it.Key}})
		} else if a.Agent != item.Cosmos {
			pre = append(pre, Clause{Head: Never, Reason: "permanently_locked"})
		}
	}
	return pre
}

// changeModify sets the feature and shows the item to everyone who can
// perceive it.
func (a *Action) changeModify(w *World, apply bool) {
	a.fillOld(w)
	p := a.Modify
	it := w.Items[p.Direct]
	if apply {
		it.SetFeature(p.Feature, p.New)
	} else {
		it.SetFeature(p.Feature, p.Old)
		return
	}
	end := a.End()
	for _, actor := range w.ConceptTags() {
		if actor == a.Agent || actor == p.Direct || w.CanSee(actor, p.Direct) {
			w.Transfer(it, actor, end)
		}
		room := ""
		if r := w.RoomOf(actor); r != nil {
			room = r.Tag
		}
		a.enlighten(w, actor, room, end)
	}
}
