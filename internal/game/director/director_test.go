package director

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storyworld/internal/game"
	"storyworld/internal/game/actors"
	"storyworld/internal/game/commands"
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

func house(t *testing.T, initial ...*world.Action) *world.World {
	t.Helper()
	ann := item.NewActor("@ann", item.In, "@hall")
	ann.Allowed = item.RulePossessAnyThing
	w, err := world.New([]*item.Item{
		item.NewRoom("@hall", map[string]string{"north": "@study"}),
		item.NewRoom("@study", map[string]string{"south": "@hall"}),
		ann,
		item.NewActor("@cat", item.In, "@hall"),
		item.NewThing("@coin", item.In, "@hall"),
	}, initial)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.SetConcepts()
	return w
}

func verbs(as []*world.Action) string {
	var out []string
	for _, a := range as {
		out = append(out, a.Verb)
	}
	return strings.Join(out, " ")
}

type recorder struct {
	logged []int
	undone []int
}

func (r *recorder) LogAction(_ string, a *world.Action, _ time.Time) error {
	r.logged = append(r.logged, a.ID)
	return nil
}

func (r *recorder) MarkUndone(_ string, fromID int) error {
	r.undone = append(r.undone, fromID)
	return nil
}

func TestTurnRunsActorsThenCommand(t *testing.T) {
	w := house(t)
	reg := commands.Default()
	rec := &recorder{}
	d := New(w, reg, "@ann",
		WithPolicy("@cat", actors.NewScriptPolicy(reg, []string{"wait"}, true)),
		WithActionLog(rec, "session"))

	turn, err := d.Turn(context.Background(), "leave north")
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if got := verbs(turn.Actions); got != "wait leave enter examine" {
		t.Fatalf("verbs = %q", got)
	}
	if w.Ticks != 4 {
		t.Fatalf("ticks = %d", w.Ticks)
	}
	if room := w.RoomOf("@ann"); room.Tag != "@study" {
		t.Fatalf("ann is in %s", room.Tag)
	}
	if room := d.Concept().RoomOf("@ann"); room == nil || room.Tag != "@study" {
		t.Fatalf("concept of @ann puts @ann in %v", room)
	}
	leave, ok := turn.Commanded("@ann")
	if !ok || leave.Verb != "leave" || leave.Cause != `"leave north"` {
		t.Fatalf("commanded = %v", leave)
	}
	if len(turn.Events) != 4 || turn.Events[1].Actor != "@ann" {
		t.Fatalf("events = %+v", turn.Events)
	}
	if len(rec.logged) != 4 {
		t.Fatalf("logged %v", rec.logged)
	}
	for i, a := range turn.Actions {
		if a.Start != i {
			t.Errorf("%s started at %d, want %d", a.Verb, a.Start, i)
		}
	}
}

func TestBadCommandTakesNoTime(t *testing.T) {
	w := house(t)
	h := game.NewHistory(5)
	d := New(w, commands.Default(), "@ann", WithHistory(h))
	if _, err := d.Turn(context.Background(), "dance wildly"); !errors.Is(err, commands.ErrUnknownCommand) {
		t.Fatalf("err = %v", err)
	}
	if w.Ticks != 0 || len(w.Acts) != 0 || len(d.Turns()) != 0 {
		t.Fatalf("time passed: ticks=%d acts=%d", w.Ticks, len(w.Acts))
	}
	if got := h.GetEntries(); len(got) != 1 || !strings.HasPrefix(got[0], "Error: ") {
		t.Fatalf("history = %v", got)
	}
}

func TestUndoTakesBackWholeTurn(t *testing.T) {
	w := house(t)
	rec := &recorder{}
	d := New(w, commands.Default(), "@ann", WithActionLog(rec, "s"))
	ctx := context.Background()

	if _, err := d.Turn(ctx, "take @coin"); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if _, err := d.Turn(ctx, "leave north"); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	undone, err := d.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undone.Input != "leave north" || w.RoomOf("@ann").Tag != "@hall" || w.Ticks != 1 {
		t.Fatalf("after undo: input=%q room=%s ticks=%d", undone.Input, w.RoomOf("@ann").Tag, w.Ticks)
	}
	if coin := w.Items["@coin"]; coin.Parent != "@ann" {
		t.Fatalf("the first turn was undone too: coin is %s %s", coin.Link, coin.Parent)
	}
	if len(rec.undone) != 1 || rec.undone[0] != 2 {
		t.Fatalf("marked undone = %v", rec.undone)
	}

	if _, err := d.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if w.Items["@coin"].Parent != "@hall" || w.Ticks != 0 {
		t.Fatalf("coin not put back")
	}
	if _, err := d.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("err = %v", err)
	}
}

func TestFinalActionStopsTheWorld(t *testing.T) {
	w := house(t)
	final := actors.PolicyFunc(func(_ context.Context, agent string, _ *world.Concept) ([]*world.Action, error) {
		a := world.NewBehave("wait", agent, world.BehavePayload{})
		a.Final = true
		return []*world.Action{a}, nil
	})
	d := New(w, commands.Default(), "@ann", WithPolicy("@cat", final))

	turn, err := d.Turn(context.Background(), "take @coin")
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if verbs(turn.Actions) != "wait" || w.Running {
		t.Fatalf("actions = %q, running = %v", verbs(turn.Actions), w.Running)
	}
	if _, ok := turn.Commanded("@ann"); ok {
		t.Fatalf("the commanded action ran after the end")
	}
	if _, err := d.Turn(context.Background(), "wait"); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v", err)
	}
}

func TestPolicyErrorsDoNotStopTheTurn(t *testing.T) {
	w := house(t)
	broken := actors.PolicyFunc(func(context.Context, string, *world.Concept) ([]*world.Action, error) {
		return nil, errors.New("confused")
	})
	d := New(w, commands.Default(), "@ann", WithPolicy("@cat", broken))
	turn, err := d.Turn(context.Background(), "wait")
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if verbs(turn.Actions) != "wait" || len(turn.Errors) != 1 || !strings.Contains(turn.Errors[0].Error(), "@cat: confused") {
		t.Fatalf("turn = %+v", turn)
	}
}

func TestDeadActorsDoNotAct(t *testing.T) {
	w := house(t)
	w.Items["@cat"].Features = map[string]any{"alive": false}
	called := false
	p := actors.PolicyFunc(func(context.Context, string, *world.Concept) ([]*world.Action, error) {
		called = true
		return nil, nil
	})
	d := New(w, commands.Default(), "@ann", WithPolicy("@cat", p))
	if _, err := d.Turn(context.Background(), "wait"); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if called {
		t.Fatal("a dead actor was asked to act")
	}
}

func TestStartRunsInitialActions(t *testing.T) {
	w := house(t, world.NewBehave("wait", "@cat", world.BehavePayload{}))
	h := game.NewHistory(5)
	d := New(w, commands.Default(), "@ann", WithHistory(h))
	turn, err := d.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if verbs(turn.Actions) != "wait" || turn.Actions[0].Cause != "initial_action" || w.Ticks != 1 {
		t.Fatalf("turn = %+v ticks = %d", turn.Actions, w.Ticks)
	}
	if _, err := d.Start(context.Background()); !errors.Is(err, ErrStarted) {
		t.Fatalf("err = %v", err)
	}

	if _, err := d.Turn(context.Background(), "wait"); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if got := h.GetEntries(); len(got) != 2 || got[0] != "Player: wait" || got[1] != "World: wait applied" {
		t.Fatalf("history = %v", got)
	}
}
