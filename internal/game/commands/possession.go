package commands

import (
	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

func possession() []Command {
	put := func(link item.Link, prep string) Builder {
		return func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
			a := world.NewConfigure("put", agent, args.Str("item"), link, args.Str("container"))
			a.Template = "[agent/s] [put/v] [direct/o] " + prep + " [indirect/o]"
			return a, nil
		}
	}
	return []Command{
		New("take", "pick something up", []Param{tag("item")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				return world.NewConfigure("take", agent, metonym(args.Str("item"), c), item.Of, agent), nil
			}),
		New("drop", "put down something you carry", []Param{tag("item")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				dropped := metonym(args.Str("item"), c)
				room, err := roomOf(dropped, c)
				if err != nil {
					return nil, err
				}
				a := world.NewConfigure("drop", agent, dropped, item.In, room)
				a.Template = "[agent/s] [set/v] [direct/o] down"
				return a, nil
			}),
		New("give", "hand something you carry to someone", []Param{tag("item"), tag("recipient")},
			func(agent string, args Args, c *world.Concept) (*world.Action, error) {
				a := world.NewConfigure("give", agent, metonym(args.Str("item"), c), item.Of, args.Str("recipient")).
					From(item.Of, agent)
				a.Template = "[agent/s] [give/v] [direct/o] to [indirect/o]"
				return a, nil
			}),
		New("put_in", "put something inside a container", []Param{tag("item"), tag("container")}, put(item.In, "in")),
		New("put_on", "put something on a surface", []Param{tag("item"), tag("container")}, put(item.On, "on")),
		New("wear", "put on something you carry", []Param{tag("item")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				a := world.NewConfigure("wear", agent, args.Str("item"), item.On, agent).From(item.Of, agent)
				a.Template = "[agent/s] [put/v] [direct/o] on"
				return a, nil
			}),
		New("doff", "take off something you wear", []Param{tag("item")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				a := world.NewConfigure("doff", agent, args.Str("item"), item.Of, agent).From(item.On, agent)
				a.Template = "[agent/s] [take/v] off [direct/o]"
				return a, nil
			}),
	}
}
