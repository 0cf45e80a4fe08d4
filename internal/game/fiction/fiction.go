// Package fiction loads story worlds described in YAML: their items, the
// actions they open with, what each actor knows at the start, and the
// fiction's own rules, conditions, reactions and commands.
package fiction

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storyworld/internal/game/item"
)

//go:embed demo/*.yaml
var demos embed.FS

var ErrInvalidFiction = errors.New("invalid fiction")

type Fiction struct {
	Title    string `yaml:"title"`
	Headline string `yaml:"headline"`
	Author   string `yaml:"author"`
	Prologue string `yaml:"prologue"`
	Spin     Spin   `yaml:"spin"`

	Rules      map[string][]RuleClause  `yaml:"rules"`
	Conditions map[string]ConditionSpec `yaml:"conditions"`
	Commands   []CommandSpec            `yaml:"commands"`
	Items      []ItemSpec               `yaml:"items"`
	Initial    []ActionSpec             `yaml:"initial"`
	Concepts   map[string][]string      `yaml:"concepts"`
	Hooks      map[string]HookSpec      `yaml:"hooks"`
	Actors     map[string]ActorSpec     `yaml:"actors"`
}

// Spin names who is commanded by the player and whose view is narrated.
type Spin struct {
	Commanded string `yaml:"commanded"`
	Focalizer string `yaml:"focalizer"`
}

type ItemSpec struct {
	Tag    string `yaml:"tag"`
	Kind   string `yaml:"kind"`
	Link   string `yaml:"link"`
	Parent string `yaml:"parent"`

	Article     string            `yaml:"article"`
	Called      string            `yaml:"called"`
	Referring   string            `yaml:"referring"`
	Qualities   []string          `yaml:"qualities"`
	Gender      string            `yaml:"gender"`
	Number      string            `yaml:"number"`
	Glow        *float64          `yaml:"glow"`
	Prominence  *float64          `yaml:"prominence"`
	Transparent bool              `yaml:"transparent"`
	Mention     *bool             `yaml:"mention"`
	Senses      map[string]string `yaml:"senses"`

	Allowed  string               `yaml:"allowed"`
	Features map[string]any       `yaml:"features"`
	Exits    map[string]string    `yaml:"exits"`
	View     map[string]item.View `yaml:"view"`
	Shared   []string             `yaml:"shared"`
	Connects []string             `yaml:"connects"`
	Refuses  []item.Refusal       `yaml:"refuses"`
	Key      string               `yaml:"key"`
	Source   string               `yaml:"source"`
	Vessel   string               `yaml:"vessel"`
}

// ActorSpec says how an actor other than the commanded one behaves.
type ActorSpec struct {
	Script  []string `yaml:"script"`
	Loops   bool     `yaml:"loops"`
	LLM     bool     `yaml:"llm"`
	Persona Persona  `yaml:"persona"`
}

type Persona struct {
	Name        string   `yaml:"name"`
	Personality string   `yaml:"personality"`
	Backstory   string   `yaml:"backstory"`
	Memories    []string `yaml:"memories"`
}

// Parse validates a YAML fiction against the fiction schema and decodes it.
func Parse(data []byte) (*Fiction, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f Fiction
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFiction, err)
	}
	return &f, nil
}

// Load reads and parses the fiction at path.
func Load(path string) (*Fiction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fiction: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Demo returns the fiction shipped with the game.
func Demo() (*Fiction, error) {
	data, err := demos.ReadFile("demo/cloak.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
