package events

import (
	"storyworld/internal/game/world"
)

// ForAgent keeps the events whose actions the agent was aware of, as
// recorded in its Concept.
func ForAgent(c *world.Concept, evs []WorldEvent) []WorldEvent {
	if c == nil {
		return []WorldEvent{}
	}
	out := make([]WorldEvent, 0, len(evs))
	for _, e := range evs {
		if _, ok := c.Act(e.ActionID); ok {
			out = append(out, e)
		}
	}
	return out
}

// Salient drops events below the given salience.
func Salient(evs []WorldEvent, min float64) []WorldEvent {
	out := make([]WorldEvent, 0, len(evs))
	for _, e := range evs {
		if e.Salience >= min {
			out = append(out, e)
		}
	}
	return out
}
