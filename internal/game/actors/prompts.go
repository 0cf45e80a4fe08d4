package actors

import (
	"fmt"
	"strings"
)

// Persona is what an LLM-driven actor knows about itself.
type Persona struct {
	Name        string
	Personality string
	Backstory   string
	Memories    []string
}

func buildDecisionPrompt(agent string, p Persona, commandList string, recentThoughts []string) string {
	b := &strings.Builder{}
	name := p.Name
	if name == "" {
		name = agent
	}
	fmt.Fprintf(b, "You are %s (%s), a character in a simulated world. Decide what you do next, based only on what you know.", name, agent)

	b.WriteString("\n\n<character>\n")
	fmt.Fprintf(b, "- name: %s\n", name)
	if strings.TrimSpace(p.Personality) != "" {
		fmt.Fprintf(b, "- personality: %s\n", p.Personality)
	}
	if strings.TrimSpace(p.Backstory) != "" {
		fmt.Fprintf(b, "- backstory: %s\n", p.Backstory)
	}
	if len(p.Memories) > 0 {
		b.WriteString("- core_memories:\n")
		for _, m := range p.Memories {
			fmt.Fprintf(b, "  - %s\n", m)
		}
	}
	b.WriteString("</character>\n\n")

	if len(recentThoughts) > 0 {
		b.WriteString("<recent_thoughts>\n")
		for _, t := range recentThoughts {
			fmt.Fprintf(b, "- %s\n", t)
		}
		b.WriteString("</recent_thoughts>\n\n")
	}

	b.WriteString("<commands>\n")
	b.WriteString(commandList)
	b.WriteString("</commands>\n\n")

	b.WriteString(`<rules>
- refer to things only by the @tags listed in the world state
- you may only act on what you can see, carry or reach
- it's fine to do nothing; use "command": "" for that
- don't repeat a failed action unless something has changed
</rules>

Return JSON format:
{"thought": "one short line", "command": "take", "args": {"item": "@key"}}`)
	return b.String()
}

func buildDecisionUser(worldContext string) string {
	b := &strings.Builder{}
	b.WriteString("<world_context>\n")
	b.WriteString(strings.TrimSpace(worldContext))
	b.WriteString("\n</world_context>")
	return b.String()
}
