package item

import (
	"errors"
	"testing"
)

func TestAddRemoveChildAreInverses(t *testing.T) {
	box := NewThing("@box", In, "@room")

	box.AddChild(In, "@coin", true)
	box.AddChild(In, "@coin", true)
	if len(box.Children) != 1 {
		t.Fatalf("expected one child after duplicate add, got %v", box.Children)
	}

	box.AddChild(In, "@coin", false)
	if box.HasChild(In, "@coin") {
		t.Fatalf("inverted add should remove child, got %v", box.Children)
	}

	box.RemoveChild(On, "@lid", false)
	if !box.HasChild(On, "@lid") {
		t.Fatalf("inverted remove should add child, got %v", box.Children)
	}
	box.RemoveChild(On, "@lid", true)
	if len(box.Children) != 0 {
		t.Fatalf("expected no children, got %v", box.Children)
	}
}

func TestBlankKeepsTagAndKind(t *testing.T) {
	room := NewRoom("@hall", map[string]string{"north": "@yard"})
	room.Called = "great hall"
	room.SetFeature("sight", "tapestries everywhere")
	room.AddChild(In, "@chair", true)

	room.Blank()

	if room.Tag != "@hall" || room.Kind != KindRoom {
		t.Fatalf("blank changed identity: %s %s", room.Tag, room.Kind)
	}
	if room.Called != "place" || !room.Blanked {
		t.Fatalf("expected anonymous place, got called=%q blanked=%v", room.Called, room.Blanked)
	}
	if len(room.Children) != 0 || room.Parent != "" || room.Senses != nil {
		t.Fatalf("blank kept relations or senses: %+v", room)
	}
	if room.Allowed != RuleNotHaveItems {
		t.Fatalf("blank should forbid children, got %s", room.Allowed)
	}

	actor := NewActor("@ann", In, "@hall")
	actor.Blank()
	if actor.Called != "individual" {
		t.Fatalf("blank actor called %q", actor.Called)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewThing("@lamp", On, "@table")
	orig.SetFeature("setting", "off")
	orig.AddChild(PartOf, "@switch", true)

	cp := orig.Clone()
	if !cp.Equal(orig) {
		t.Fatalf("clone differs from original")
	}

	cp.SetFeature("setting", "on")
	cp.AddChild(In, "@bulb", true)
	if v, _ := orig.Feature("setting"); v != "off" {
		t.Fatalf("clone shares features: %v", v)
	}
	if len(orig.Children) != 1 {
		t.Fatalf("clone shares children: %v", orig.Children)
	}
	if cp.Equal(orig) {
		t.Fatalf("modified clone still equal")
	}
}

func TestFeatures(t *testing.T) {
	chest := NewThing("@chest", In, "@room")
	if chest.Opens() || !chest.IsOpen() {
		t.Fatalf("item without open feature should count as open and not openable")
	}
	chest.SetFeature("open", false)
	if !chest.Opens() || chest.IsOpen() {
		t.Fatalf("expected closed chest")
	}
	if !chest.HasFeature("glow") || chest.HasFeature("locked") {
		t.Fatalf("unexpected feature presence")
	}
	chest.SetFeature("glow", 2)
	if chest.Glow != 2.0 {
		t.Fatalf("glow not normalized: %v", chest.Glow)
	}
	chest.SetFeature("weight", 3)
	if v, _ := chest.Feature("weight"); !SameValue(v, 3.0) {
		t.Fatalf("weight = %v", v)
	}
	if !chest.Alive() {
		t.Fatalf("things without alive feature are alive")
	}
	chest.SetFeature("alive", false)
	if chest.Alive() {
		t.Fatalf("alive feature ignored")
	}
}

func TestExit(t *testing.T) {
	room := NewRoom("@cell", map[string]string{
		"east": "@corridor",
		"up":   "the ceiling is far too high",
	})
	if got := room.Exit("east"); got != "@corridor" {
		t.Fatalf("east exit = %q", got)
	}
	if got := room.Exit("up"); got != "" {
		t.Fatalf("descriptive exit should not be a tag, got %q", got)
	}
	if got := room.Exit("west"); got != "" {
		t.Fatalf("missing exit = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		it   *Item
		want error
	}{
		{"ok thing", NewThing("@rock", In, "@field"), nil},
		{"ok room", NewRoom("@field", map[string]string{}), nil},
		{"bad tag", NewThing("rock", In, "@field"), ErrInvalidTag},
		{"short tag", NewThing("@r", In, "@field"), ErrInvalidTag},
		{"upper tag", NewThing("@Rock", In, "@field"), ErrInvalidTag},
		{"thing without parent", NewThing("@rock", "", ""), ErrInvalidItem},
		{"room without exits", NewRoom("@field", nil), ErrInvalidItem},
		{"door with one room", &Item{Tag: "@gate", Kind: KindDoor, Parent: Cosmos, Link: Of, Connects: []string{"@a"}}, ErrInvalidItem},
		{"thing with exits", func() *Item {
			it := NewThing("@rock", In, "@field")
			it.Exits = map[string]string{"down": "@pit"}
			return it
		}(), ErrInvalidItem},
		{"bad feature", func() *Item {
			it := NewThing("@rock", In, "@field")
			it.Features = map[string]any{"Heavy": true}
			return it
		}(), ErrInvalidFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.it.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
