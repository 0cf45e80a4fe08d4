package commands

import (
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

func movement() []Command {
	return []Command{
		New("leave", "walk out of the room in a direction", []Param{text("direction")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				a := world.NewBehave("leave", agent, world.BehavePayload{
					Direct:    agent,
					Direction: args.Str("direction"),
				})
				a.Template = "[agent/s] [head/v] [direction]"
				return a, nil
			}),
		New("enter", "go into a place or through a door", []Param{tag("place")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				place := args.Str("place")
				link := item.In
				if c.Has(item.KindDoor, place) {
					link = item.Through
				}
				a := world.NewConfigure("enter", agent, agent, link, place)
				a.Template = "[agent/s] [enter/v] [indirect/o]"
				return a, nil
			}),
		New("wait", "do nothing for a moment", nil,
			func(agent string, _ Args, _ *world.Concept) (*world.Action, error) {
				return world.NewBehave("wait", agent, world.BehavePayload{}), nil
			}),
		New("wave_at", "wave at someone", []Param{tag("target")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				a := world.NewBehave("wave", agent, world.BehavePayload{Target: args.Str("target")})
				a.Template = "[agent/s] [wave/v] at [direct/o]"
				return a, nil
			}),
		New("say", "say something out loud", []Param{text("utterance")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				a := world.NewBehave("say", agent, world.BehavePayload{Utterance: args.Str("utterance")})
				a.Template = "[agent/s] [say/v] [utterance]"
				return a, nil
			}),
	}
}
