package commands

import (
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

func consumption() []Command {
	consume := func(verb string) Builder {
		return func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
			return world.NewBehave(verb, agent, world.BehavePayload{Direct: args.Str("item")}), nil
		}
	}
	pour := func(link item.Link, prep string) Builder {
		return func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
			a := world.NewConfigure("pour", agent, args.Str("substance"), link, args.Str("container"))
			a.Template = "[agent/s] [pour/v] [direct/o] " + prep + " [indirect/o]"
			return a, nil
		}
	}
	return []Command{
		New("drink", "drink something", []Param{tag("item")}, consume("drink")),
		New("eat", "eat something", []Param{tag("item")}, consume("eat")),
		New("drink_from", "drink from a vessel or source", []Param{tag("vessel")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				vessel := args.Str("vessel")
				a := world.NewBehave("drink", agent, world.BehavePayload{
					Direct:   firstHeld(vessel, c),
					Indirect: vessel,
				})
				a.Template = "[agent/s] [drink/v] from [indirect/o]"
				return a, nil
			}),
		New("pour_in", "pour a substance into a container", []Param{tag("substance"), tag("container")}, pour(item.In, "into")),
		New("pour_on", "pour a substance onto something", []Param{tag("substance"), tag("container")}, pour(item.On, "onto")),
		New("fill", "fill a vessel from a source", []Param{tag("vessel"), tag("source")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				vessel, source := args.Str("vessel"), args.Str("source")
				a := world.NewConfigure("fill", agent, firstHeld(source, c), item.In, vessel).From(item.In, source)
				a.Template = "[agent/s] [fill/v] [indirect/o] from [" + source + "/o]"
				return a, nil
			}),
	}
}
