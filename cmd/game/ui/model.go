package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storyworld/internal/debug"
	"storyworld/internal/game"
	"storyworld/internal/game/director"
)

// Game is what the UI plays.
type Game struct {
	Title     string
	Headline  string
	Prologue  string
	Focalizer string
	Director  *director.Director
	History   *game.History
}

type Model struct {
	messages       []string
	input          string
	width          int
	height         int
	loading        bool
	animationFrame int

	// Copied from the world after each turn; View must not read the world
	// while a turn is running.
	place string
	tick  int
	ended bool

	game  Game
	debug *debug.Logger
}

func NewModel(g Game, debugLogger *debug.Logger) Model {
	messages := []string{"# " + g.Title}
	if g.Headline != "" {
		messages = append(messages, "# "+g.Headline)
	}
	messages = append(messages, "")
	for _, line := range strings.Split(strings.TrimSpace(g.Prologue), "\n") {
		if line != "" {
			messages = append(messages, line)
		}
	}
	messages = append(messages, "", "# Type /help for commands.", "")
	if debugLogger.Enabled() {
		messages = append(messages, "[DEBUG] Debug logging enabled")
	}
	messages = append(messages, "LOADING_ANIMATION")
	m := Model{
		messages: messages,
		game:     g,
		debug:    debugLogger,
		loading:  true,
	}
	m.refreshStatus()
	return m
}

func (m *Model) refreshStatus() {
	w := m.game.Director.World
	m.place = "nowhere"
	if room := w.RoomOf(m.game.Focalizer); room != nil {
		m.place = room.Tag
	}
	m.tick = w.Ticks
	m.ended = !w.Running
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(startCmd(m.game.Director), animationTimer())
}

type animationTickMsg struct{}

// turnDoneMsg carries the outcome of the initial actions or of one typed
// command.
type turnDoneMsg struct {
	turn director.Turn
	err  error
}

type undoDoneMsg struct {
	turn director.Turn
	err  error
}
