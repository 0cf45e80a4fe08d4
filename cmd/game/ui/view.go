package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	systemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
)

func (m Model) View() string {
	inputHeight := 3
	headerHeight := 1
	chatHeight := m.height - inputHeight - headerHeight

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Width(m.width - 4)

	chatPanel := lipgloss.NewStyle().
		Width(m.width).
		Height(chatHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1)

	var chatContent strings.Builder

	visibleMessages := m.messages
	maxMessages := chatHeight - 2
	if maxMessages < 1 {
		maxMessages = 1
	}
	if len(visibleMessages) > maxMessages {
		visibleMessages = visibleMessages[len(visibleMessages)-maxMessages:]
	}
	for i := len(visibleMessages); i < maxMessages; i++ {
		chatContent.WriteString("\n")
	}

	contentWidth := m.width - 4
	for _, message := range visibleMessages {
		var style lipgloss.Style
		switch {
		case message == "":
			chatContent.WriteString("\n")
			continue
		case message == "LOADING_ANIMATION":
			message = getLoadingAnimation(m.animationFrame)
			style = loadingStyle
		case strings.HasPrefix(message, "> "):
			style = userStyle
		case strings.HasPrefix(message, "[DEBUG] "):
			style = debugStyle
		case strings.HasPrefix(message, "! "):
			message = strings.TrimPrefix(message, "! ")
			style = problemStyle
		case strings.HasPrefix(message, "# "):
			message = strings.TrimPrefix(message, "# ")
			style = systemStyle
		default:
			style = messageStyle
		}
		chatContent.WriteString(style.Render(wrapAndIndent(message, contentWidth, " ")) + "\n")
	}

	header := headerStyle.Width(m.width).Render(m.status())
	chat := chatPanel.Render(chatContent.String())
	input := inputStyle.Render(m.input + "│")

	return header + "\n" + chat + "\n" + input
}

func (m Model) status() string {
	state := ""
	if m.ended {
		state = " | ended"
	}
	return fmt.Sprintf("%s | %s | tick %d%s", m.game.Title, m.place, m.tick, state)
}

func wrapAndIndent(text string, width int, indent string) string {
	if len(text) <= width {
		return indent + text
	}

	var result strings.Builder
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + text
	}

	currentLine := indent + words[0]

	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result.WriteString(currentLine + "\n")
			currentLine = indent + word
		}
	}

	result.WriteString(currentLine)
	return result.String()
}

func getLoadingAnimation(frame int) string {
	arc := []string{"◜", "◠", "◝", "◞", "◡", "◟"}
	return arc[frame%len(arc)]
}
