package world

import (
	"math"
	"testing"

	"storyworld/internal/game/item"
)

func build(t *testing.T, items ...*item.Item) *World {
	t.Helper()
	w, err := New(items, nil)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	return w
}

func darkRoom(tag string, glow float64) *item.Item {
	r := item.NewRoom(tag, map[string]string{})
	r.Glow = glow
	return r
}

func TestSightCulprits(t *testing.T) {
	speck := item.NewThing("@speck", item.In, "@hall")
	speck.Prominence = 0.1

	porch := func(visibility float64) *World {
		p := item.NewRoom("@porch", map[string]string{})
		p.View = map[string]item.View{"@garden": {Visibility: visibility, Direction: "north"}}
		return build(t,
			p,
			item.NewRoom("@garden", map[string]string{}),
			item.NewActor("@dan", item.In, "@porch"),
			item.NewThing("@rose", item.In, "@garden"),
		)
	}
	prominent := item.NewThing("@statue", item.In, "@crypt")
	prominent.Prominence = 1

	tests := []struct {
		name  string
		world *World
		actor string
		tag   string
		want  string
	}{
		{
			name: "dark room",
			world: build(t,
				darkRoom("@cellar", 0.1),
				item.NewActor("@dan", item.In, "@cellar"),
			),
			actor: "@dan", tag: "@cellar", want: BlameLight,
		},
		{
			name: "faint item",
			world: build(t,
				item.NewRoom("@hall", map[string]string{}),
				item.NewActor("@dan", item.In, "@hall"),
				speck,
			),
			actor: "@dan", tag: "@speck", want: BlameProminence,
		},
		{name: "poor view", world: porch(0.15), actor: "@dan", tag: "@rose", want: BlameView},
		{name: "good view", world: porch(0.5), actor: "@dan", tag: "@rose", want: ""},
		{
			name: "exactly at threshold",
			world: build(t,
				darkRoom("@crypt", 0.2),
				item.NewActor("@dan", item.In, "@crypt"),
				prominent,
			),
			actor: "@dan", tag: "@statue", want: "",
		},
		{
			name: "actor out of play",
			world: build(t,
				item.NewRoom("@hall", map[string]string{}),
				item.NewActor("@ghost", item.Of, item.Cosmos),
			),
			actor: "@ghost", tag: "@hall", want: ActorInPlay,
		},
		{
			name: "no such item",
			world: build(t,
				item.NewRoom("@hall", map[string]string{}),
				item.NewActor("@dan", item.In, "@hall"),
			),
			actor: "@dan", tag: "@unicorn", want: ItemInPlay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.world.PreventsSight(tt.actor, tt.tag); got != tt.want {
				t.Fatalf("PreventsSight(%s, %s) = %q, want %q", tt.actor, tt.tag, got, tt.want)
			}
		})
	}
}

func TestLineOfSight(t *testing.T) {
	w := manor(t)
	if got := w.PreventsSight("@ann", "@gem"); got != LineOfSight {
		t.Fatalf("gem in closed box: got %q", got)
	}
	if got := w.PreventsSight("@ann", "@bob"); got != LineOfSight {
		t.Fatalf("bob in another room: got %q", got)
	}
	w.Items["@box"].Transparent = true
	if !w.CanSee("@ann", "@gem") {
		t.Fatalf("gem should show through a transparent box")
	}
	if !w.CanSee(item.Cosmos, "@gem") {
		t.Fatalf("nature sees everything")
	}
}

func cellar(t *testing.T) *World {
	t.Helper()
	chest := item.NewThing("@chest", item.In, "@cellar")
	chest.Glow = 0.1
	chest.Allowed = item.RuleContainAnyThing
	chest.Features = map[string]any{"open": false}
	lamp := item.NewThing("@lamp", item.In, "@chest")
	lamp.Glow = 1
	return build(t,
		darkRoom("@cellar", 0),
		item.NewActor("@dan", item.In, "@cellar"),
		chest,
		lamp,
	)
}

func TestLightStaysInClosedContainers(t *testing.T) {
	w := cellar(t)
	if got := w.LightLevel("@cellar"); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("closed chest light = %v, want 0.1", got)
	}
	if got := w.PreventsSight("@dan", "@cellar"); got != BlameLight {
		t.Fatalf("expected the cellar to be too dark, got %q", got)
	}
	w.SetConcepts()
	open := NewModify("open", "@dan", "@chest", "open", true).Was(false)
	run(t, w, open)
	if open.Status() != Applied {
		t.Fatalf("open failed: %v", open.Failed)
	}
	if got := w.LightLevel("@cellar"); math.Abs(got-1.1) > 1e-9 {
		t.Fatalf("open chest light = %v, want 1.1", got)
	}
	if !w.CanSee("@dan", "@cellar") {
		t.Fatalf("lamp light should reach the cellar")
	}
}

func TestOpeningLampEnlightens(t *testing.T) {
	w := cellar(t)
	blank := w.Items["@cellar"].Clone()
	blank.Blank()
	w.SetConcepts(ConceptSeed{
		Actor: "@dan",
		Items: []*item.Item{blank, w.Items["@dan"].Clone(), w.Items["@chest"].Clone()},
	})

	open := NewModify("open", "@dan", "@chest", "open", true)
	next, err := open.Do(w)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if open.Status() != Applied {
		t.Fatalf("open failed: %v", open.Failed)
	}
	if len(next) != 1 {
		t.Fatalf("expected a look around, got %v", next)
	}
	look := next[0]
	if look.Sense == nil || look.Sense.Direct != "@cellar" || look.Agent != "@dan" {
		t.Fatalf("unexpected entailment %s", look)
	}
	if look.Cause != ":1:" {
		t.Fatalf("cause = %q", look.Cause)
	}
	if w.Concepts["@dan"].Items["@cellar"].Blanked {
		t.Fatalf("dan still has only a blank idea of the cellar")
	}
	if _, ok := w.Concepts["@dan"].Items["@lamp"]; !ok {
		t.Fatalf("dan should now know about the lamp")
	}
}
