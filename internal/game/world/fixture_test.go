package world

import (
	"testing"

	"storyworld/internal/game/item"
)

// manor builds a small lit house:
//
//	@hall  (north → @study, west → @gate → @yard, east is a wall)
//	  @ann, @cat, @coin, @box (closed, holding @gem), @table (@vase on it)
//	  @sack of @ann
//	@study
//	  @bob
//	@yard
func manor(t *testing.T, opts ...Option) *World {
	t.Helper()
	hall := item.NewRoom("@hall", map[string]string{
		"north": "@study",
		"west":  "@gate",
		"east":  "a wall blocks the way",
	})
	study := item.NewRoom("@study", map[string]string{"south": "@hall"})
	yard := item.NewRoom("@yard", map[string]string{"east": "@gate"})

	gate := item.NewDoor("@gate", "@hall", "@yard")
	gate.Features = map[string]any{"locked": true, "open": false}

	ann := item.NewActor("@ann", item.In, "@hall")
	ann.Allowed = item.RulePossessAnyThing
	cat := item.NewActor("@cat", item.In, "@hall")
	bob := item.NewActor("@bob", item.In, "@study")
	bob.Allowed = item.RulePossessAnyThing

	coin := item.NewThing("@coin", item.In, "@hall")
	table := item.NewThing("@table", item.In, "@hall")
	table.Allowed = item.RuleContainAndSupportThings
	vase := item.NewThing("@vase", item.On, "@table")
	vase.Allowed = item.RuleContainAnyItem
	box := item.NewThing("@box", item.In, "@hall")
	box.Allowed = item.RuleContainAnyThing
	box.Features = map[string]any{"open": false}
	gem := item.NewThing("@gem", item.In, "@box")
	sack := item.NewThing("@sack", item.Of, "@ann")
	sack.Allowed = item.RuleContainAnyItem

	w, err := New([]*item.Item{
		hall, study, yard, gate, ann, cat, bob, coin, table, vase, box, gem, sack,
	}, nil, opts...)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	w.SetConcepts()
	return w
}

// run processes actions depth first, advancing the clock after each one,
// and returns every action done in order.
func run(t *testing.T, w *World, queue ...*Action) []*Action {
	t.Helper()
	var done []*Action
	for len(queue) > 0 && w.Running {
		a := queue[0]
		queue = queue[1:]
		next, err := a.Do(w)
		if err != nil {
			t.Fatalf("doing %s: %v", a, err)
		}
		done = append(done, a)
		queue = append(next, queue...)
		if a.End() > w.Ticks {
			w.AdvanceClock(a.End() - w.Ticks)
		}
	}
	return done
}

func snapshot(items map[string]*item.Item) map[string]*item.Item {
	out := make(map[string]*item.Item, len(items))
	for tag, it := range items {
		out[tag] = it.Clone()
	}
	return out
}

func sameItems(t *testing.T, want, got map[string]*item.Item) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for tag, it := range want {
		if !it.Equal(got[tag]) {
			t.Fatalf("item %s differs:\nwant %+v\ngot  %+v", tag, it, got[tag])
		}
	}
}

func firstReason(t *testing.T, a *Action) string {
	t.Helper()
	f, ok := a.FirstFailure()
	if !ok {
		t.Fatalf("expected %s to fail", a)
	}
	return f.Reason
}
