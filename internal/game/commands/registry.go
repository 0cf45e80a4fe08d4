package commands

import (
	"fmt"
	"sort"
	"strings"

	"storyworld/internal/game/world"
)

// Registry maps command names to Commands. A Registry is built when a
// fiction is loaded and handed to whoever needs to turn commands into
// actions.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns a registry holding cmds.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command, len(cmds))}
	for _, cmd := range cmds {
		r.Register(cmd)
	}
	return r
}

// Default returns a registry holding every built-in command.
func Default() *Registry {
	var cmds []Command
	cmds = append(cmds, movement()...)
	cmds = append(cmds, senses()...)
	cmds = append(cmds, possession()...)
	cmds = append(cmds, mechanisms()...)
	cmds = append(cmds, consumption()...)
	return NewRegistry(cmds...)
}

// Register adds cmd, replacing any command of the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get returns the named command.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build validates args and builds the named command's action for agent.
func (r *Registry) Build(agent, name string, args Args, c *world.Concept) (*world.Action, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if c == nil {
		return nil, fmt.Errorf("%s has no concept to act from", agent)
	}
	return cmd.Build(agent, args, c)
}

// Parse splits a typed line such as "put_in @coin @box" into a command
// name and its arguments.
func (r *Registry) Parse(line string) (string, Args, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return "", nil, fmt.Errorf("%w: empty command", ErrBadArguments)
	}
	name := strings.ToLower(words[0])
	cmd, ok := r.commands[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	params := cmd.Params()
	rest := words[1:]
	args := make(Args, len(params))
	for i, p := range params {
		if i >= len(rest) {
			return "", nil, fmt.Errorf("%w: usage: %s", ErrBadArguments, Usage(cmd))
		}
		if p.Free && i == len(params)-1 {
			args[p.Name] = strings.Join(rest[i:], " ")
			return name, args, nil
		}
		args[p.Name] = rest[i]
	}
	if len(rest) > len(params) {
		return "", nil, fmt.Errorf("%w: usage: %s", ErrBadArguments, Usage(cmd))
	}
	return name, args, nil
}

// FromLine parses line and builds its action for agent.
func (r *Registry) FromLine(agent, line string, c *world.Concept) (*world.Action, error) {
	name, args, err := r.Parse(line)
	if err != nil {
		return nil, err
	}
	return r.Build(agent, name, args, c)
}

// Describe lists every command with its usage and help, one per line.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, name := range r.Names() {
		cmd := r.commands[name]
		fmt.Fprintf(&b, "- %s: %s\n", Usage(cmd), cmd.Help())
	}
	return b.String()
}
