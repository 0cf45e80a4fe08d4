// Package commands turns commands, typed by a player or chosen by an
// autonomous actor, into world Actions.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"storyworld/internal/game/item"
	"storyworld/internal/game/world"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("bad arguments")
	ErrUnknownPlace   = errors.New("agent does not know where it is")
)

// Args holds a command's arguments by parameter name. Values are strings;
// the any type lets arguments decoded from JSON be passed straight through.
type Args map[string]any

// Str returns the named argument, or "" if it is missing or not a string.
func (a Args) Str(name string) string {
	s, _ := a[name].(string)
	return s
}

// Param is one positional parameter. Tag parameters must be item tags;
// free parameters take any text, and a trailing free parameter swallows the
// rest of a typed line.
type Param struct {
	Name string `json:"name"`
	Free bool   `json:"free,omitempty"`
}

// Command builds one kind of action.
type Command interface {
	Name() string
	Params() []Param
	Help() string
	Validate(args Args) error
	// Build returns the action the agent would attempt, using the agent's
	// Concept for anything it has to look up.
	Build(agent string, args Args, c *world.Concept) (*world.Action, error)
}

// Builder makes an action from validated arguments.
type Builder func(agent string, args Args, c *world.Concept) (*world.Action, error)

type basic struct {
	name   string
	help   string
	params []Param
	build  Builder
}

// New returns a Command backed by build. Fictions use it to add verbs of
// their own to a Registry.
func New(name, help string, params []Param, build Builder) Command {
	return &basic{name: name, help: help, params: params, build: build}
}

func (b *basic) Name() string    { return b.name }
func (b *basic) Params() []Param { return b.params }
func (b *basic) Help() string    { return b.help }

func (b *basic) Validate(args Args) error {
	for _, p := range b.params {
		v := args.Str(p.Name)
		if v == "" {
			return fmt.Errorf("%w: %s requires '%s' parameter", ErrBadArguments, b.name, p.Name)
		}
		if !p.Free && !item.ValidTag(v) {
			return fmt.Errorf("%w: %s: '%s' must be an item tag, got %q", ErrBadArguments, b.name, p.Name, v)
		}
	}
	return nil
}

func (b *basic) Build(agent string, args Args, c *world.Concept) (*world.Action, error) {
	if err := b.Validate(args); err != nil {
		return nil, err
	}
	return b.build(agent, args, c)
}

// Usage renders a command with its parameters, as in "put_in <item> <container>".
func Usage(cmd Command) string {
	parts := []string{cmd.Name()}
	for _, p := range cmd.Params() {
		parts = append(parts, "<"+p.Name+">")
	}
	return strings.Join(parts, " ")
}

// metonym lets a vessel stand in for what it holds: taking the water in a
// cup takes the cup.
func metonym(tag string, c *world.Concept) string {
	it, ok := c.Get(tag)
	if !ok {
		return tag
	}
	if parent, ok := c.Get(it.Parent); ok && parent.Vessel != "" {
		return parent.Tag
	}
	return tag
}

// firstHeld returns the first thing the concept believes is in tag, or the
// cosmos if it knows of nothing there.
func firstHeld(tag string, c *world.Concept) string {
	if it, ok := c.Get(tag); ok && len(it.Children) > 0 {
		return it.Children[0].Tag
	}
	return item.Cosmos
}

func roomOf(tag string, c *world.Concept) (string, error) {
	room := c.RoomOf(tag)
	if room == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlace, tag)
	}
	return room.Tag, nil
}

func tag(name string) Param  { return Param{Name: name} }
func text(name string) Param { return Param{Name: name, Free: true} }
