// Command game plays a story world in the terminal. "game review" lists
// the sessions in the action log, and "game review <session>" replays the
// actions of one of them.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"storyworld/internal/config"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "review", "--review":
			session := ""
			if len(os.Args) > 2 {
				session = os.Args[2]
			}
			if err := runReviewMode(cfg, os.Stdout, session); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "Usage: game [review [session]]\n")
			os.Exit(2)
		}
	}

	model, cleanup, err := createApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
	}
}
