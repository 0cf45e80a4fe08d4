package world

import (
	"sort"

	"storyworld/internal/game/item"
)

// Change records the state of an item before a Concept update, so that the
// Concept can be queried and rolled back by time.
type Change struct {
	Time int        `json:"time"`
	Tag  string     `json:"tag"`
	Old  *item.Item `json:"old"`
}

// Concept is one agent's partial, time-indexed model of the World. It is
// written only by the World while actions are processed.
type Concept struct {
	Model
	Of      string   `json:"of"`
	Changed []Change `json:"changed"`
}

func newConcept(items []*item.Item, acts map[int]*Action, cosmos *item.Item) *Concept {
	c := &Concept{Model: newModel()}
	order := make([]string, 0, len(items))
	for _, it := range items {
		if it.Tag == item.Cosmos {
			continue
		}
		c.Items[it.Tag] = it
		order = append(order, it.Tag)
	}
	for id, a := range acts {
		c.Acts[id] = a
	}
	if cosmos == nil {
		cosmos = newCosmos()
	}
	c.Items[item.Cosmos] = cosmos
	c.linkChildren(order)
	return c
}

// ItemAt returns the item as this Concept held it at time, or nil if the
// item was not known then.
func (c *Concept) ItemAt(tag string, time int) *item.Item {
	it, ok := c.Items[tag]
	if !ok {
		return nil
	}
	for i := len(c.Changed) - 1; i >= 0 && c.Changed[i].Time > time; i-- {
		if c.Changed[i].Tag == tag {
			it = c.Changed[i].Old
		}
	}
	return it
}

// UpdateItem replaces the Concept's version of an item as of time.
func (c *Concept) UpdateItem(it *item.Item, time int) {
	old := c.Items[it.Tag]
	c.Items[it.Tag] = it
	c.Changed = append(c.Changed, Change{Time: time, Tag: it.Tag, Old: old})
}

// RollBackTo discards every action that started, and every change made,
// after time.
func (c *Concept) RollBackTo(time int) {
	for _, id := range actsByStart(c.Acts) {
		if c.Acts[id].Start > time {
			delete(c.Acts, id)
		}
	}
	for len(c.Changed) > 0 && c.Changed[len(c.Changed)-1].Time > time {
		last := c.Changed[len(c.Changed)-1]
		c.Changed = c.Changed[:len(c.Changed)-1]
		if last.Old == nil {
			delete(c.Items, last.Tag)
		} else {
			c.Items[last.Tag] = last.Old
		}
	}
}

// CopyAt returns an independent copy of the Concept as it was at time.
func (c *Concept) CopyAt(time int) *Concept {
	cp := &Concept{
		Model:   c.Model.clone(),
		Of:      c.Of,
		Changed: make([]Change, len(c.Changed)),
	}
	for i, ch := range c.Changed {
		cp.Changed[i] = Change{Time: ch.Time, Tag: ch.Tag, Old: ch.Old.Clone()}
	}
	cp.RollBackTo(time)
	return cp
}

// actsByStart returns action ids ordered by start time, then id.
func actsByStart(acts map[int]*Action) []int {
	ids := make([]int, 0, len(acts))
	for id := range acts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := acts[ids[i]].Start, acts[ids[j]].Start
		if si != sj {
			return si < sj
		}
		return ids[i] < ids[j]
	})
	return ids
}
