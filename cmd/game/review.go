package main

import (
	"fmt"
	"io"
	"strings"

	"storyworld/internal/config"
	"storyworld/internal/logging"
)

func runReviewMode(cfg config.Config, out io.Writer, session string) error {
	logger, err := logging.NewActionLogger(cfg.ActionLog)
	if err != nil {
		return fmt.Errorf("failed to open action database: %w", err)
	}
	defer logger.Close()

	if session == "" {
		return listSessions(logger, out)
	}
	return listActions(logger, out, session)
}

func listSessions(logger *logging.ActionLogger, out io.Writer) error {
	sessions, err := logger.Sessions()
	if err != nil {
		return fmt.Errorf("failed to get sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found. Play the game first to generate data!")
		return nil
	}

	fmt.Fprintf(out, "Recent sessions (%d):\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(out, "%s | %s | %s | %d actions\n",
			s.ID, s.Started.Format("2006-01-02 15:04:05"), s.Fiction, s.Actions)
	}
	fmt.Fprintln(out, "\nTo see a session's actions: game review <session>")
	return nil
}

func listActions(logger *logging.ActionLogger, out io.Writer, session string) error {
	records, err := logger.Actions(session)
	if err != nil {
		return fmt.Errorf("failed to get actions: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No actions recorded for session %s\n", session)
		return nil
	}

	for _, r := range records {
		line := fmt.Sprintf("[%3d] :%d: %s %s (%s) %s", r.Tick, r.ActionID, r.Agent, r.Verb, r.Category, r.Status)
		if r.Reason != "" {
			line += ": " + r.Reason
		}
		if r.Undone {
			line += " [undone]"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, strings.Repeat("-", 50))
	return nil
}
