package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storyworld/internal/game"
	"storyworld/internal/game/director"
	"storyworld/internal/game/item"
)

const conceptActs = 10

func animationTimer() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

func startCmd(d *director.Director) tea.Cmd {
	return func() tea.Msg {
		turn, err := d.Start(context.Background())
		return turnDoneMsg{turn: turn, err: err}
	}
}

func turnCmd(d *director.Director, line string) tea.Cmd {
	return func() tea.Msg {
		turn, err := d.Turn(context.Background(), line)
		return turnDoneMsg{turn: turn, err: err}
	}
}

func undoCmd(d *director.Director) tea.Cmd {
	return func() tea.Msg {
		turn, err := d.Undo()
		return undoDoneMsg{turn: turn, err: err}
	}
}

var slashHelp = []string{
	"/help           list commands",
	"/concept [@tag] what an actor believes (default: you)",
	"/tree [@tag]    the item tree under a tag (default: everything)",
	"/undo           take back the last turn",
}

func (m Model) handleSlash(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	d := m.game.Director

	switch strings.ToLower(fields[0]) {
	case "/help":
		m.messages = append(m.messages, "# Commands:")
		for _, l := range strings.Split(strings.TrimRight(d.Registry.Describe(), "\n"), "\n") {
			m.messages = append(m.messages, "  "+l)
		}
		m.messages = append(m.messages, "# Also:")
		for _, l := range slashHelp {
			m.messages = append(m.messages, "  "+l)
		}

	case "/concept":
		agent := m.game.Focalizer
		if arg != "" {
			agent = arg
		}
		c, ok := d.World.Concept(agent)
		if !ok {
			m.messages = append(m.messages, "! "+agent+" has no concept")
			break
		}
		var entries []string
		if m.game.History != nil {
			entries = m.game.History.GetEntries()
		}
		text := game.BuildConceptContext(c, agent, conceptActs, entries)
		m.messages = append(m.messages, strings.Split(strings.TrimRight(text, "\n"), "\n")...)

	case "/tree":
		root := item.Cosmos
		if arg != "" {
			root = arg
		}
		if _, ok := d.World.Get(root); !ok {
			m.messages = append(m.messages, "! no item "+root)
			break
		}
		m.messages = append(m.messages, strings.Split(strings.TrimRight(d.World.ShowDescendants(root), "\n"), "\n")...)

	case "/undo":
		tick := m.startLoading()
		return m, tea.Batch(undoCmd(d), tick)

	default:
		m.messages = append(m.messages, "# Unknown command. Try /help")
	}
	m.messages = append(m.messages, "")
	return m, nil
}
