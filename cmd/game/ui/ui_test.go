package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"storyworld/internal/debug"
	"storyworld/internal/game"
	"storyworld/internal/game/director"
	"storyworld/internal/game/fiction"
)

func demoModel(t *testing.T) Model {
	t.Helper()
	f, err := fiction.Demo()
	if err != nil {
		t.Fatalf("Demo: %v", err)
	}
	g, err := fiction.Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	history := game.NewHistory(10)
	d := director.New(g.World, g.Registry, g.Commanded, director.WithHistory(history))
	return NewModel(Game{
		Title:     f.Title,
		Prologue:  f.Prologue,
		Focalizer: g.Focalizer,
		Director:  d,
		History:   history,
	}, debug.NewLogger(false, ""))
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func contains(messages []string, want string) bool {
	for _, m := range messages {
		if m == want {
			return true
		}
	}
	return false
}

func TestOpeningIsRendered(t *testing.T) {
	m := demoModel(t)
	m = update(t, m, startCmd(m.game.Director)())
	for _, want := range []string{
		"You are glad to see the bright lights of the Opera House",
		"You see yourself standing in a spacious hall, splendidly decorated in red and gold, with glittering chandeliers overhead.",
		"You notice the usher.",
		"Exits: south, west.",
	} {
		if !contains(m.messages, want) {
			t.Errorf("missing %q in:\n%s", want, strings.Join(m.messages, "\n"))
		}
	}
	if m.loading || m.place != "@foyer" || m.tick != 2 {
		t.Fatalf("loading=%v place=%s tick=%d", m.loading, m.place, m.tick)
	}
}

func TestRefusalIsRendered(t *testing.T) {
	m := demoModel(t)
	m = update(t, m, startCmd(m.game.Director)())
	m = update(t, m, turnCmd(m.game.Director, "leave north")())
	want := "! You have only just arrived, and besides, the weather outside seems to be getting worse"
	if !contains(m.messages, want) {
		t.Fatalf("missing %q in:\n%s", want, strings.Join(m.messages, "\n"))
	}
}

func TestSlashCommands(t *testing.T) {
	m := demoModel(t)
	m = update(t, m, startCmd(m.game.Director)())

	type slash struct {
		line string
		want string
	}
	for _, tt := range []slash{
		{"/help", "  - hang <item> <hook>: hang something up on something else"},
		{"/tree @cloakroom", "@cloakroom: (small) cloakroom [of]"},
		{"/concept", "Location: the (splendid) foyer (of the opera house) (@foyer)"},
		{"/concept @nobody", "! @nobody has no concept"},
		{"/dance", "# Unknown command. Try /help"},
	} {
		next, _ := m.handleSlash(tt.line)
		got := next.(Model).messages
		if !contains(got, tt.want) {
			t.Errorf("%s: missing %q in:\n%s", tt.line, tt.want, strings.Join(got[len(m.messages):], "\n"))
		}
	}
}

func TestUndoRestoresTheRoom(t *testing.T) {
	m := demoModel(t)
	m = update(t, m, startCmd(m.game.Director)())
	m = update(t, m, turnCmd(m.game.Director, "leave west")())
	if m.place != "@cloakroom" {
		t.Fatalf("place = %s", m.place)
	}
	m = update(t, m, undoCmd(m.game.Director)())
	if m.place != "@foyer" || !contains(m.messages, "# Undid: leave west") {
		t.Fatalf("place = %s, messages:\n%s", m.place, strings.Join(m.messages, "\n"))
	}
}

func TestConjugate(t *testing.T) {
	tests := []struct {
		verb                string
		third, past, negate bool
		want                string
	}{
		{"see", false, false, false, "see"},
		{"see", true, false, false, "sees"},
		{"is", false, false, false, "are"},
		{"is", true, false, true, "is not"},
		{"find", false, false, true, "do not find"},
		{"lose", true, true, false, "lost"},
		{"carry", true, false, false, "carries"},
		{"have", true, false, false, "has"},
	}
	for _, tt := range tests {
		if got := conjugate(tt.verb, tt.third, tt.past, tt.negate); got != tt.want {
			t.Errorf("conjugate(%q, %v, %v, %v) = %q, want %q", tt.verb, tt.third, tt.past, tt.negate, got, tt.want)
		}
	}
}
