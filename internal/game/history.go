package game

import (
	"fmt"
	"sort"
	"strings"

	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

type History struct {
	exchanges []string
	maxSize   int
}

func NewHistory(maxSize int) *History {
	return &History{
		exchanges: make([]string, 0, maxSize),
		maxSize:   maxSize,
	}
}

func (h *History) AddPlayerCommand(input string) {
	h.add("Player: " + input)
}

func (h *History) AddOutcome(outcome string) {
	h.add("World: " + outcome)
}

func (h *History) AddActorCommand(actor, command string) {
	h.add(fmt.Sprintf("%s: %s", actor, command))
}

func (h *History) AddError(err error) {
	h.add("Error: " + err.Error())
}

func (h *History) add(entry string) {
	h.exchanges = append(h.exchanges, entry)

	if len(h.exchanges) > h.maxSize {
		h.exchanges = h.exchanges[len(h.exchanges)-h.maxSize:]
	}
}

func (h *History) GetEntries() []string {
	result := make([]string, len(h.exchanges))
	copy(result, h.exchanges)
	return result
}

// BuildConceptContext describes the world as one agent believes it to be:
// where it is, what it can see there, what it carries, and the latest
// actions it knows of. It is the only view of the world an autonomous
// actor's prompt gets.
func BuildConceptContext(c *world.Concept, agent string, recentActs int, gameHistory []string) string {
	var context strings.Builder

	context.WriteString("WORLD STATE (as you know it):\n")
	self, ok := c.Get(agent)
	if !ok {
		context.WriteString("You do not know where you are.\n")
		return context.String()
	}
	room := c.RoomOf(agent)
	if room == nil {
		context.WriteString("You do not know where you are.\n")
	} else {
		context.WriteString(fmt.Sprintf("Location: %s (%s)\n", describe(room), room.Tag))
		if text := room.Senses["sight"]; text != "" {
			context.WriteString(text + "\n")
		}
		var here []string
		for _, tag := range c.Descendants(room.Tag, item.StopOpaque) {
			if tag == agent || isCarried(c, tag, agent) {
				continue
			}
			if it, ok := c.Get(tag); ok && it.Mention {
				here = append(here, fmt.Sprintf("%s (%s %s)", tag, it.Link, it.Parent))
			}
		}
		context.WriteString(fmt.Sprintf("Items Here: %v\n", here))
		var exits []string
		for _, dir := range sortedExits(room) {
			exits = append(exits, fmt.Sprintf("%s -> %s", dir, room.Exits[dir]))
		}
		context.WriteString(fmt.Sprintf("Exits: %v\n", exits))
	}

	var carried []string
	for _, child := range self.Children {
		carried = append(carried, fmt.Sprintf("%s (%s)", child.Tag, child.Link))
	}
	context.WriteString(fmt.Sprintf("Carrying: %v\n", carried))

	if recentActs > 0 {
		ids := make([]int, 0, len(c.Acts))
		for id := range c.Acts {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		if len(ids) > recentActs {
			ids = ids[len(ids)-recentActs:]
		}
		if len(ids) > 0 {
			context.WriteString("RECENT ACTIONS:\n")
			for _, id := range ids {
				a := c.Acts[id]
				line := a.String()
				if a.Refusal != "" {
					line += " (refused: " + a.Refusal + ")"
				} else if f, failed := a.FirstFailure(); failed {
					line += " (failed: " + f.String() + ")"
				}
				context.WriteString(line + "\n")
			}
		}
	}

	if len(gameHistory) > 0 {
		context.WriteString("RECENT CONVERSATION:\n")
		for _, exchange := range gameHistory {
			context.WriteString(exchange + "\n")
		}
		context.WriteString("\n")
	}

	return context.String()
}

func describe(it *item.Item) string {
	if it.Called == "" {
		return it.Tag
	}
	if it.Article == "" {
		return it.Called
	}
	return it.Article + " " + it.Called
}

func isCarried(c *world.Concept, tag, agent string) bool {
	for _, a := range c.Ancestors(tag) {
		if a == agent {
			return true
		}
	}
	return false
}

func sortedExits(room *item.Item) []string {
	dirs := make([]string, 0, len(room.Exits))
	for dir := range room.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
