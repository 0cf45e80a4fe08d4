package world

import (
	"strings"
	"testing"

	"storyworld/internal/game/item"
)

// fountainYard has a fountain of water and a cup of water held by @ann.
func fountainYard(t *testing.T) *World {
	t.Helper()
	water := item.NewSubstance("@water")
	water.Features = map[string]any{"consumable": true}
	fountain := item.NewThing("@fountain", item.In, "@yard")
	fountain.Source = "@water"
	cup := item.NewThing("@cup", item.Of, "@ann")
	cup.Vessel = "@water"
	ann := item.NewActor("@ann", item.In, "@yard")
	ann.Allowed = item.RulePossessAnyThing
	table := item.NewThing("@table", item.In, "@yard")
	table.Allowed = item.RuleContainAndSupportThings

	w := build(t, item.NewRoom("@yard", map[string]string{}), ann, water, fountain, cup, table)
	w.SetConcepts()
	return w
}

func TestAmountsCreatedForSourcesAndVessels(t *testing.T) {
	w := fountainYard(t)
	tests := []struct {
		tag    string
		parent string
	}{
		{"@water_1", "@fountain"},
		{"@water_2", "@cup"},
	}
	for _, tt := range tests {
		it, ok := w.Items[tt.tag]
		if !ok {
			t.Fatalf("%s was not created", tt.tag)
		}
		if it.Parent != tt.parent || it.Link != item.In || it.AmountOf != "@water" {
			t.Fatalf("%s: %s %s of %s", tt.tag, it.Link, it.Parent, it.AmountOf)
		}
		if !w.Items[tt.parent].HasChild(item.In, tt.tag) {
			t.Fatalf("%s not listed in %s", tt.tag, tt.parent)
		}
	}
	if _, ok := w.Items["@water_3"]; ok {
		t.Fatalf("unexpected third amount")
	}
}

func TestSubstancesGoBackInMatchingPlaces(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		parent string
	}{
		{"into the substance itself", "@water_2", "@water"},
		{"into its source", "@water_2", "@fountain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := fountainYard(t)
			a := NewConfigure("pour_in", item.Cosmos, tt.amount, item.In, tt.parent)
			done := run(t, w, a)
			if a.Status() != Applied {
				t.Fatalf("status = %s: %v", a.Status(), a.Failed)
			}
			if it := w.Items[tt.amount]; it.Parent != tt.parent || it.Link != item.In {
				t.Fatalf("%s ended up %s %s", tt.amount, it.Link, it.Parent)
			}
			for _, d := range done {
				if d.Verb == "vanish" {
					t.Fatalf("matching placement should not vanish: %v", done)
				}
			}
		})
	}
}

func TestSubstancesCannotBeHeld(t *testing.T) {
	w := fountainYard(t)
	a := NewConfigure("take", "@ann", "@water_1", item.Of, "@ann")
	if _, err := a.Do(w); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := firstReason(t, a); got != SubstanceContained {
		t.Fatalf("expected %s, got %s", SubstanceContained, got)
	}

	full := NewConfigure("pour_in", "@ann", "@water_1", item.In, "@cup")
	if _, err := full.Do(w); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := firstReason(t, full); got != SubstanceContained {
		t.Fatalf("pouring into a full cup: expected %s, got %s", SubstanceContained, got)
	}
}

func TestPouringOntoSurfaceVanishes(t *testing.T) {
	w := fountainYard(t)
	done := run(t, w, NewConfigure("pour_on", "@ann", "@water_2", item.On, "@table"))
	if len(done) != 2 || done[1].Verb != "vanish" {
		t.Fatalf("expected pour_on then vanish, got %v", done)
	}
	if done[1].Template == "" || !strings.Contains(done[1].Template, "@water_2") {
		t.Fatalf("vanish template = %q", done[1].Template)
	}
	if it := w.Items["@water_2"]; it.Parent != "@water" || it.Link != item.In {
		t.Fatalf("water ended up %s %s", it.Link, it.Parent)
	}
	if len(w.Items["@cup"].Children) != 0 {
		t.Fatalf("cup should be empty")
	}

	refill := NewConfigure("fill", "@ann", "@water_1", item.In, "@cup")
	if _, err := refill.Do(w); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if refill.Status() != Applied {
		t.Fatalf("empty vessel should take water: %v", refill.Failed)
	}
}

func TestDrinkingFromSourceReplenishes(t *testing.T) {
	w := fountainYard(t)
	done := run(t, w, NewBehave("drink", "@ann", BehavePayload{Direct: "@water_1"}))
	var verbs []string
	for _, a := range done {
		if a.Status() != Applied {
			t.Fatalf("%s: %v", a, a.Failed)
		}
		verbs = append(verbs, a.Verb)
	}
	if strings.Join(verbs, " ") != "drink polish_off replenish" {
		t.Fatalf("unexpected cascade %v", verbs)
	}
	if !w.Items["@fountain"].HasChild(item.In, "@water_1") {
		t.Fatalf("fountain was not replenished")
	}
	if done[1].Salience != 0 || done[2].Salience != 0 {
		t.Fatalf("bookkeeping actions should not be salient")
	}
}

func TestDrinkingRequiresConsumable(t *testing.T) {
	w := fountainYard(t)
	a := NewBehave("drink", "@ann", BehavePayload{Direct: "@table"})
	if _, err := a.Do(w); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := firstReason(t, a); got != HasFeature {
		t.Fatalf("expected %s, got %s", HasFeature, got)
	}
}
