package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storyworld/internal/game/director"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case turnDoneMsg:
		return m.handleTurnDone(msg)
	case undoDoneMsg:
		return m.handleUndoDone(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case animationTickMsg:
		return m.handleAnimation(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleTurnDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.stopLoading()
	for _, err := range msg.turn.Errors {
		m.debug.Printf("actor error: %v", err)
		if m.debug.Enabled() {
			m.messages = append(m.messages, "[DEBUG] "+err.Error())
		}
	}
	if msg.err != nil {
		m.messages = append(m.messages, "! "+msg.err.Error(), "")
		return m, nil
	}
	m.messages = append(m.messages, m.renderTurn(msg.turn)...)
	if m.debug.Enabled() {
		for _, a := range msg.turn.Actions {
			m.messages = append(m.messages, "[DEBUG] "+a.String())
		}
	}
	m.messages = append(m.messages, "")
	if !m.game.Director.World.Running {
		m.messages = append(m.messages, "# The story is over. /undo to take back the last turn, ctrl+c to quit.", "")
	}
	return m, nil
}

func (m Model) handleUndoDone(msg undoDoneMsg) (tea.Model, tea.Cmd) {
	m.stopLoading()
	switch {
	case errors.Is(msg.err, director.ErrNothingToUndo):
		m.messages = append(m.messages, "# Nothing to undo.")
	case msg.err != nil:
		m.messages = append(m.messages, "! "+msg.err.Error())
	case msg.turn.Input == "":
		m.messages = append(m.messages, "# Undid the opening of the story.")
	default:
		m.messages = append(m.messages, "# Undid: "+msg.turn.Input)
	}
	m.messages = append(m.messages, "")
	return m, nil
}

func (m *Model) stopLoading() {
	m.refreshStatus()
	if m.loading && len(m.messages) > 0 && m.messages[len(m.messages)-1] == "LOADING_ANIMATION" {
		m.messages = m.messages[:len(m.messages)-1]
	}
	m.loading = false
}

func (m *Model) startLoading() tea.Cmd {
	m.loading = true
	m.animationFrame = 0
	m.messages = append(m.messages, "LOADING_ANIMATION")
	return animationTimer()
}

func (m Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m Model) handleAnimation(msg animationTickMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		m.animationFrame++
		return m, animationTimer()
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		line := strings.TrimSpace(m.input)
		if line == "" || m.loading {
			return m, nil
		}
		m.input = ""
		m.messages = append(m.messages, "> "+line)

		if strings.HasPrefix(line, "/") {
			return m.handleSlash(line)
		}
		if !m.game.Director.World.Running {
			m.messages = append(m.messages, "# The story is over.", "")
			return m, nil
		}
		m.debug.Printf("player command: %q", line)
		tick := m.startLoading()
		return m, tea.Batch(turnCmd(m.game.Director, line), tick)

	case "backspace":
		if len(m.input) > 0 && !m.loading {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	default:
		if len(msg.Runes) > 0 && !m.loading {
			m.input += string(msg.Runes)
		}
		return m, nil
	}
}
