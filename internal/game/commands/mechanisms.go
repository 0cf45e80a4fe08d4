package commands

import (
	"strconv"

	"storyworld/internal/game/world"
)

// toggle builds a command that flips a boolean feature from !to to to.
func toggle(name, help, feature string, to, metonymy bool) Command {
	return New(name, help, []Param{tag("item")},
		func(agent string, args Args, c *world.Concept) (*world.Action, error) {
			direct := args.Str("item")
			if metonymy {
				direct = metonym(direct, c)
			}
			return world.NewModify(name, agent, direct, feature, to).Was(!to), nil
		})
}

func mechanisms() []Command {
	return []Command{
		toggle("open", "open something", "open", true, true),
		toggle("close", "close something", "open", false, true),
		toggle("lock", "lock something", "locked", true, false),
		toggle("unlock", "unlock something", "locked", false, false),
		toggle("burn", "set something on fire", "burnt", true, false),
		New("turn_to", "turn a dial or knob to a setting", []Param{tag("item"), text("setting")},
			func(agent string, args Args, _ *world.Concept) (*world.Action, error) {
				var setting any = args.Str("setting")
				if n, err := strconv.Atoi(args.Str("setting")); err == nil {
					setting = n
				}
				return world.NewModify("rotate", agent, args.Str("item"), "setting", setting), nil
			}),
	}
}
