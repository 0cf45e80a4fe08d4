package commands

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

func parlour(t *testing.T) *world.World {
	t.Helper()
	hall := item.NewRoom("@hall", map[string]string{"north": "@study"})
	study := item.NewRoom("@study", map[string]string{"south": "@hall"})
	ann := item.NewActor("@ann", item.In, "@hall")
	ann.Allowed = item.RulePossessAndWearAnyThing
	bob := item.NewActor("@bob", item.In, "@hall")
	bob.Allowed = item.RulePossessAnyThing
	coin := item.NewThing("@coin", item.In, "@hall")
	hat := item.NewThing("@hat", item.Of, "@ann")
	box := item.NewThing("@box", item.In, "@hall")
	box.Allowed = item.RuleContainAnyThing
	box.Features = map[string]any{"open": false}
	water := item.NewSubstance("@water")
	water.Features = map[string]any{"consumable": true}
	fountain := item.NewThing("@fountain", item.In, "@hall")
	fountain.Source = "@water"
	cup := item.NewThing("@cup", item.Of, "@ann")
	cup.Vessel = "@water"

	w, err := world.New([]*item.Item{hall, study, ann, bob, coin, hat, box, water, fountain, cup}, nil)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	w.SetConcepts()
	return w
}

func TestDefaultRegistryCoversVerbs(t *testing.T) {
	names := Default().Names()
	for _, want := range []string{
		"leave", "look", "examine", "take", "drop", "put_in", "put_on", "wear", "doff",
		"open", "close", "lock", "unlock", "drink", "eat", "pour_in", "pour_on", "touch", "wait",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("missing command %s", want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("names not sorted: %v", names)
	}
}

func TestParse(t *testing.T) {
	r := Default()
	tests := []struct {
		line    string
		name    string
		args    Args
		wantErr error
	}{
		{line: "put_in @coin @box", name: "put_in", args: Args{"item": "@coin", "container": "@box"}},
		{line: "TAKE @coin", name: "take", args: Args{"item": "@coin"}},
		{line: "say hello there", name: "say", args: Args{"utterance": "hello there"}},
		{line: "look", name: "look", args: Args{}},
		{line: "take", wantErr: ErrBadArguments},
		{line: "take @coin @box", wantErr: ErrBadArguments},
		{line: "   ", wantErr: ErrBadArguments},
		{line: "fly north", wantErr: ErrUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := r.Parse(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if name != tt.name || len(args) != len(tt.args) {
				t.Fatalf("got %s %v", name, args)
			}
			for k, v := range tt.args {
				if args[k] != v {
					t.Fatalf("arg %s = %v, want %v", k, args[k], v)
				}
			}
		})
	}
}

func TestValidateRejectsNonTags(t *testing.T) {
	cmd, _ := Default().Get("take")
	if err := cmd.Validate(Args{"item": "coin"}); !errors.Is(err, ErrBadArguments) {
		t.Fatalf("expected ErrBadArguments, got %v", err)
	}
	if err := cmd.Validate(Args{"item": 7}); !errors.Is(err, ErrBadArguments) {
		t.Fatalf("expected ErrBadArguments for a non-string, got %v", err)
	}
	if err := cmd.Validate(Args{"item": "@coin"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCommandsBuildActions(t *testing.T) {
	tests := []struct {
		line     string
		verb     string
		category world.Category
		direct   string
		status   world.Status
		reason   string
	}{
		{line: "take @coin", verb: "take", category: world.CategoryConfigure, direct: "@coin", status: world.Applied},
		{line: "wear @hat", verb: "wear", category: world.CategoryConfigure, direct: "@hat", status: world.Applied},
		{line: "doff @hat", verb: "doff", category: world.CategoryConfigure, direct: "@hat", status: world.Failed, reason: world.ConfigureToDifferent},
		{line: "give @hat @bob", verb: "give", category: world.CategoryConfigure, direct: "@hat", status: world.Applied},
		{line: "drop @water_2", verb: "drop", category: world.CategoryConfigure, direct: "@cup", status: world.Applied},
		{line: "put_in @coin @box", verb: "put", category: world.CategoryConfigure, direct: "@coin", status: world.Failed, reason: world.HasValue},
		{line: "open @box", verb: "open", category: world.CategoryModify, direct: "@box", status: world.Applied},
		{line: "close @box", verb: "close", category: world.CategoryModify, direct: "@box", status: world.Failed, reason: world.ModifyToDifferent},
		{line: "unlock @box", verb: "unlock", category: world.CategoryModify, direct: "@box", status: world.Failed, reason: world.HasFeature},
		{line: "enter @study", verb: "enter", category: world.CategoryConfigure, direct: "@ann", status: world.Applied},
		{line: "leave north", verb: "leave", category: world.CategoryBehave, direct: "@ann", status: world.Applied},
		{line: "look", verb: "examine", category: world.CategorySense, direct: "@hall", status: world.Applied},
		{line: "inventory", verb: "examine", category: world.CategorySense, direct: "@ann", status: world.Applied},
		{line: "listen", verb: "hear", category: world.CategorySense, direct: "@hall", status: world.Applied},
		{line: "touch @coin", verb: "touch", category: world.CategorySense, direct: "@coin", status: world.Applied},
		{line: "drink_from @cup", verb: "drink", category: world.CategoryBehave, direct: "@water_2", status: world.Applied},
		{line: "pour_on @water_2 @coin", verb: "pour", category: world.CategoryConfigure, direct: "@water_2", status: world.Applied},
		{line: "fill @cup @fountain", verb: "fill", category: world.CategoryConfigure, direct: "@water_1", status: world.Failed, reason: world.SubstanceContained},
		{line: "wait", verb: "wait", category: world.CategoryBehave, status: world.Applied},
	}
	r := Default()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			w := parlour(t)
			a, err := r.FromLine("@ann", tt.line, w.Concepts["@ann"])
			if err != nil {
				t.Fatalf("FromLine: %v", err)
			}
			if a.Verb != tt.verb || a.Category() != tt.category || a.Direct() != tt.direct {
				t.Fatalf("built %s", a)
			}
			if _, err := a.Do(w); err != nil {
				t.Fatalf("Do: %v", err)
			}
			if a.Status() != tt.status {
				t.Fatalf("status = %v (%v %q)", a.Status(), a.Failed, a.Refusal)
			}
			if tt.reason != "" {
				if f, _ := a.FirstFailure(); f.Reason != tt.reason {
					t.Fatalf("reason = %s, want %s", f.Reason, tt.reason)
				}
			}
		})
	}
}

func TestTurnToParsesNumbers(t *testing.T) {
	w := parlour(t)
	a, err := Default().FromLine("@ann", "turn_to @coin 3", w.Concepts["@ann"])
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if a.Modify.New != 3.0 {
		t.Fatalf("setting = %#v", a.Modify.New)
	}
}

func TestBuildErrors(t *testing.T) {
	r := Default()
	if _, err := r.Build("@ann", "fly", nil, &world.Concept{}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if _, err := r.Build("@ann", "look", nil, nil); err == nil {
		t.Fatalf("expected an error without a concept")
	}
	if _, err := r.Build("@ann", "look", nil, &world.Concept{}); !errors.Is(err, ErrUnknownPlace) {
		t.Fatalf("expected ErrUnknownPlace, got %v", err)
	}
}

func TestCustomCommands(t *testing.T) {
	r := NewRegistry()
	r.Register(New("xyzzy", "say the magic word", nil,
		func(agent string, _ Args, _ *world.Concept) (*world.Action, error) {
			return world.NewBehave("xyzzy", agent, world.BehavePayload{}), nil
		}))
	a, err := r.FromLine("@ann", "xyzzy", &world.Concept{})
	if err != nil || a.Verb != "xyzzy" {
		t.Fatalf("custom command: %v %v", a, err)
	}
	if !strings.Contains(Default().Describe(), "- put_in <item> <container>: ") {
		t.Fatalf("describe is missing usage:\n%s", Default().Describe())
	}
}
