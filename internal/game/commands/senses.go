package commands

import (
	"fmt"

	"storyworld/internal/game/world"
)

func senses() []Command {
	examine := func(agent, direct string) *world.Action {
		a := world.NewSense("examine", agent, direct, "sight")
		a.Template = "[agent/s] [look/v] at [direct/o]"
		return a
	}
	return []Command{
		New("look", "look around", nil,
			func(agent string, _ Args, c *world.Concept) (*world.Action, error) {
				compartment := c.CompartmentOf(agent)
				if compartment == nil {
					return nil, fmt.Errorf("%w: %s", ErrUnknownPlace, agent)
				}
				a := examine(agent, compartment.Tag)
				a.Template = "[agent/s] [look/v] around"
				return a, nil
			}),
		New("examine", "look closely at something", []Param{tag("item")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				return examine(agent, args.Str("item")), nil
			}),
		New("inventory", "check what you are carrying", nil,
			func(agent string, _ Args, _ *world.Concept) (*world.Action, error) {
				return examine(agent, agent), nil
			}),
		New("touch", "feel something", []Param{tag("item")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				return world.NewSense("touch", agent, args.Str("item"), "touch"), nil
			}),
		New("listen", "listen to the surroundings", nil,
			func(agent string, _ Args, c *world.Concept) (*world.Action, error) {
				room, err := roomOf(agent, c)
				if err != nil {
					return nil, err
				}
				a := world.NewSense("hear", agent, room, "hearing")
				a.Template = "[agent/s] [listen/v]"
				return a, nil
			}),
	}
}
