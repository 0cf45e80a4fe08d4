package world

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"storyworld/internal/game/item"
)

// Category is the kind of an Action.
type Category string

const (
	CategoryBehave    Category = "behave"
	CategoryConfigure Category = "configure"
	CategoryModify    Category = "modify"
	CategorySense     Category = "sense"
)

// Status is where an Action stands after Do.
type Status int

const (
	Pending Status = iota
	Refused
	Failed
	Prevented
	Applied
)

func (s Status) String() string {
	switch s {
	case Refused:
		return "refused"
	case Failed:
		return "failed"
	case Prevented:
		return "prevented"
	case Applied:
		return "applied"
	}
	return "pending"
}

// PreventedBy is the failure reason recorded when a respondent vetoes.
const PreventedBy = "prevented_by"

// Placement is a (link, parent) pair.
type Placement struct {
	Link   item.Link `json:"link"`
	Parent string    `json:"parent"`
}

// BehavePayload is carried by actions that change nothing themselves.
type BehavePayload struct {
	Direct    string `json:"direct,omitempty"`
	Indirect  string `json:"indirect,omitempty"`
	Target    string `json:"target,omitempty"`
	Direction string `json:"direction,omitempty"`
	Utterance string `json:"utterance,omitempty"`
}

// ConfigurePayload moves Direct to New. Old is filled in from the world when
// the action is applied if it was not given.
type ConfigurePayload struct {
	Direct string     `json:"direct"`
	New    Placement  `json:"new"`
	Old    *Placement `json:"old,omitempty"`
}

// ModifyPayload sets Feature of Direct to New. Old is captured from the
// world when the action is applied unless HasOld is set.
type ModifyPayload struct {
	Direct   string `json:"direct"`
	Feature  string `json:"feature"`
	New      any    `json:"new"`
	Old      any    `json:"old,omitempty"`
	HasOld   bool   `json:"has_old,omitempty"`
	Indirect string `json:"indirect,omitempty"`
}

// SensePayload is a perception of Direct.
type SensePayload struct {
	Direct   string `json:"direct"`
	Modality string `json:"modality"`
}

// Action is one attempted change by an agent. Exactly one payload is set.
type Action struct {
	ID       int     `json:"id"`
	Verb     string  `json:"verb"`
	Agent    string  `json:"agent"`
	Cause    string  `json:"cause"`
	Salience float64 `json:"salience"`
	Template string  `json:"template,omitempty"`
	Force    float64 `json:"force"`
	Final    bool    `json:"final,omitempty"`
	Start    int     `json:"start"`
	Location string  `json:"location,omitempty"`

	Preconditions []Precondition `json:"preconditions,omitempty"`
	Failed        []Failure      `json:"failed,omitempty"`
	Refusal       string         `json:"refusal,omitempty"`

	Behave    *BehavePayload    `json:"behave,omitempty"`
	Configure *ConfigurePayload `json:"configure,omitempty"`
	Modify    *ModifyPayload    `json:"modify,omitempty"`
	Sense     *SensePayload     `json:"sense,omitempty"`

	Done bool `json:"done"`

	enlightened []*Action
}

func newAction(verb, agent string, force float64) *Action {
	return &Action{Verb: verb, Agent: agent, Cause: agent, Salience: 0.5, Force: force}
}

// NewBehave returns an action with no effect of its own.
func NewBehave(verb, agent string, p BehavePayload) *Action {
	a := newAction(verb, agent, 0.2)
	a.Behave = &p
	return a
}

// NewConfigure returns an action moving direct to (link, parent).
func NewConfigure(verb, agent, direct string, link item.Link, parent string) *Action {
	a := newAction(verb, agent, 0.2)
	a.Configure = &ConfigurePayload{Direct: direct, New: Placement{Link: link, Parent: parent}}
	return a
}

// NewModify returns an action setting a feature of direct.
func NewModify(verb, agent, direct, feature string, value any) *Action {
	a := newAction(verb, agent, 0.2)
	a.Modify = &ModifyPayload{Direct: direct, Feature: feature, New: item.Normalize(value)}
	return a
}

// NewSense returns a perception of direct through modality.
func NewSense(verb, agent, direct, modality string) *Action {
	a := newAction(verb, agent, 0)
	a.Sense = &SensePayload{Direct: direct, Modality: modality}
	return a
}

// From requires the item to start at (link, parent).
func (a *Action) From(link item.Link, parent string) *Action {
	if a.Configure != nil {
		a.Configure.Old = &Placement{Link: link, Parent: parent}
	}
	return a
}

// Was requires the feature to start with value.
func (a *Action) Was(value any) *Action {
	if a.Modify != nil {
		a.Modify.Old = item.Normalize(value)
		a.Modify.HasOld = true
	}
	return a
}

// Category returns the action's kind.
func (a *Action) Category() Category {
	switch {
	case a.Configure != nil:
		return CategoryConfigure
	case a.Modify != nil:
		return CategoryModify
	case a.Sense != nil:
		return CategorySense
	}
	return CategoryBehave
}

// Direct returns the direct object, if any.
func (a *Action) Direct() string {
	switch {
	case a.Behave != nil:
		return a.Behave.Direct
	case a.Configure != nil:
		return a.Configure.Direct
	case a.Modify != nil:
		return a.Modify.Direct
	case a.Sense != nil:
		return a.Sense.Direct
	}
	return ""
}

// Indirect returns the indirect object, if any.
func (a *Action) Indirect() string {
	switch {
	case a.Behave != nil:
		return a.Behave.Indirect
	case a.Modify != nil:
		return a.Modify.Indirect
	}
	return ""
}

// End is the tick at which the action is over. Every action lasts one tick.
func (a *Action) End() int { return a.Start + 1 }

// Status reports the outcome.
func (a *Action) Status() Status {
	switch {
	case !a.Done:
		return Pending
	case a.Refusal != "":
		return Refused
	case len(a.Failed) > 0 && a.Failed[0].Reason == PreventedBy:
		return Prevented
	case len(a.Failed) > 0:
		return Failed
	}
	return Applied
}

// FirstFailure returns the authoritative failure, if any.
func (a *Action) FirstFailure() (Failure, bool) {
	if len(a.Failed) == 0 {
		return Failure{}, false
	}
	return a.Failed[0], true
}

// MovedSomewhereDifferent reports whether the action moved actor to a new
// parent.
func (a *Action) MovedSomewhereDifferent(actor string) bool {
	c := a.Configure
	return c != nil && c.Direct == actor && (c.Old == nil || c.Old.Parent != c.New.Parent)
}

// String is the action's one-line signature, which refusal patterns match.
func (a *Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, ":%d: ", a.ID)
	if a.Refusal != "" {
		b.WriteString("Refused ")
	} else if len(a.Failed) > 0 {
		b.WriteString("Failed ")
	}
	fmt.Fprintf(&b, "%s (%s)", strings.ToUpper(a.Verb), a.Category())
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, " %s=%s", name, value)
		}
	}
	field("agent", a.Agent)
	field("direct", a.Direct())
	field("indirect", a.Indirect())
	if p := a.Behave; p != nil {
		field("direction", p.Direction)
		field("utterance", p.Utterance)
	}
	if p := a.Sense; p != nil {
		field("modality", p.Modality)
	}
	field("force", strconv.FormatFloat(a.Force, 'g', -1, 64))
	if p := a.Modify; p != nil {
		field("feature", p.Feature)
		if p.HasOld {
			field("old_value", fmt.Sprint(p.Old))
		}
		field("new_value", fmt.Sprint(p.New))
	}
	if p := a.Configure; p != nil {
		if p.Old != nil {
			field("old_link", string(p.Old.Link))
			field("old_parent", p.Old.Parent)
		}
		field("new_link", string(p.New.Link))
		field("new_parent", p.New.Parent)
	}
	if p := a.Behave; p != nil {
		field("target", p.Target)
	}
	field("cause", a.Cause)
	field("start", strconv.Itoa(a.Start))
	return b.String()
}

// Show renders the preconditions, the signature and, for actions that
// change the world, the postcondition.
func (a *Action) Show() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, p := range a.Preconditions {
		mark := "#####> "
		if p.Met {
			mark = "/ / /  "
		}
		b.WriteString(mark + p.Clause.String() + "\n")
	}
	b.WriteString(a.String() + "\n")
	if post, ok := a.post(); ok {
		mark := " ##### "
		if a.Refusal == "" && len(a.Failed) == 0 {
			mark = `\ \ \  `
		}
		b.WriteString(mark + post.String() + "\n")
	}
	return b.String()
}

func (a *Action) post() (Clause, bool) {
	switch {
	case a.Configure != nil:
		c := a.Configure
		return Clause{Head: ParentIs, Tag: c.Direct, Link: c.New.Link, Parent: c.New.Parent}, true
	case a.Modify != nil:
		m := a.Modify
		return Clause{Head: HasValue, Tag: m.Direct, Feature: m.Feature, Value: m.New}, true
	}
	return Clause{}, false
}

// Clone returns a deep copy of the action.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	c.Preconditions = slices.Clone(a.Preconditions)
	for i := range c.Preconditions {
		c.Preconditions[i].Clause.Tags = slices.Clone(c.Preconditions[i].Clause.Tags)
	}
	c.Failed = slices.Clone(a.Failed)
	if a.Behave != nil {
		p := *a.Behave
		c.Behave = &p
	}
	if a.Configure != nil {
		p := *a.Configure
		if p.Old != nil {
			old := *p.Old
			p.Old = &old
		}
		c.Configure = &p
	}
	if a.Modify != nil {
		p := *a.Modify
		c.Modify = &p
	}
	if a.Sense != nil {
		p := *a.Sense
		c.Sense = &p
	}
	c.enlightened = nil
	for _, e := range a.enlightened {
		c.enlightened = append(c.enlightened, e.Clone())
	}
	return &c
}

func (a *Action) validate(w *World) error {
	n := 0
	for _, set := range []bool{a.Behave != nil, a.Configure != nil, a.Modify != nil, a.Sense != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %s needs exactly one payload", ErrMissingPayload, a.Verb)
	}
	tags := []string{a.Agent}
	switch {
	case a.Behave != nil:
		tags = append(tags, a.Behave.Direct, a.Behave.Indirect)
	case a.Configure != nil:
		tags = append(tags, a.Configure.Direct, a.Configure.New.Parent)
		if a.Configure.New.Link == "" {
			return fmt.Errorf("%w: %s needs a new link", ErrMissingPayload, a.Verb)
		}
		if a.Configure.Old != nil {
			tags = append(tags, a.Configure.Old.Parent)
		}
	case a.Modify != nil:
		tags = append(tags, a.Modify.Direct, a.Modify.Indirect)
		if a.Modify.Feature == "" {
			return fmt.Errorf("%w: %s needs a feature", ErrMissingPayload, a.Verb)
		}
	case a.Sense != nil:
		tags = append(tags, a.Sense.Direct)
		if a.Sense.Direct == "" || a.Sense.Modality == "" {
			return fmt.Errorf("%w: %s needs a direct object and modality", ErrMissingPayload, a.Verb)
		}
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := w.Items[tag]; !ok {
			return fmt.Errorf("%w: %s in %s", ErrUnknownItem, tag, a.Verb)
		}
	}
	if a.Configure != nil && a.Configure.Direct == "" {
		return fmt.Errorf("%w: %s needs a direct object", ErrMissingPayload, a.Verb)
	}
	if a.Modify != nil && a.Modify.Direct == "" {
		return fmt.Errorf("%w: %s needs a direct object", ErrMissingPayload, a.Verb)
	}
	return nil
}

// Do applies the action to the world and returns the actions it entails or
// provokes, which the caller must process before anything else it has
// queued. Refusal, failure and prevention are recorded on the action; an
// error means the action itself is malformed.
func (a *Action) Do(w *World) ([]*Action, error) {
	if a.Done {
		return nil, fmt.Errorf("%w: %d", ErrAlreadyApplied, a.ID)
	}
	if err := a.validate(w); err != nil {
		return nil, err
	}
	w.number(a)
	a.Start = w.Ticks
	if room := w.RoomOf(a.Agent); room != nil {
		a.Location = room.Tag
	}

	direct := a.Direct()
	aware := make(map[string]bool)
	for _, actor := range w.ConceptTags() {
		if actor == a.Agent || w.CanSee(actor, a.Agent) || (direct != "" && w.CanSee(actor, direct)) {
			aware[actor] = true
		}
	}

	var next []*Action
	a.checkRefusal(w)
	if a.Refusal == "" {
		a.checkPreconditions(w)
	}
	respondents := w.Respondents(a)
	if a.Refusal == "" && len(a.Failed) == 0 {
		for _, tag := range respondents {
			if w.hooksFor(tag).Prevent(w, a) {
				a.Failed = append(a.Failed, Failure{Reason: PreventedBy, Agent: a.Agent, Tag: tag})
			}
		}
	}
	if a.Refusal == "" && len(a.Failed) == 0 {
		for _, tag := range respondents {
			next = append(next, w.hooksFor(tag).React(w, a)...)
		}
		a.change(w, true)
		next = append(next, a.entails(w)...)
	} else {
		a.fillOld(w)
		for _, tag := range respondents {
			next = append(next, w.hooksFor(tag).ReactToFailed(w, a)...)
		}
	}
	a.Done = true
	a.logOutcome(w)

	for _, actor := range w.ConceptTags() {
		if w.CanSee(actor, a.Agent) {
			aware[actor] = true
		}
	}
	for _, actor := range w.ConceptTags() {
		if aware[actor] {
			w.Concepts[actor].Acts[a.ID] = a.Clone()
		}
	}
	w.Acts[a.ID] = a
	if a.Final {
		w.Running = false
	}
	return next, nil
}

func (a *Action) logOutcome(w *World) {
	switch a.Status() {
	case Refused:
		w.log.Debug("action refused", "action", a.ID, "verb", a.Verb, "agent", a.Agent, "reason", a.Refusal)
	case Failed, Prevented:
		f := a.Failed[0]
		w.log.Debug("action failed", "action", a.ID, "verb", a.Verb, "agent", a.Agent, "reason", f.Reason, "tag", f.Tag)
	}
}

// Undo makes the world as if the action had never been applied. Actions
// that were refused, failed or prevented changed nothing.
func (a *Action) Undo(w *World) error {
	if a.Status() != Applied {
		return nil
	}
	if err := a.validate(w); err != nil {
		return err
	}
	a.change(w, false)
	return nil
}

func (a *Action) change(w *World, apply bool) {
	switch {
	case a.Configure != nil:
		a.changeConfigure(w, apply)
	case a.Modify != nil:
		a.changeModify(w, apply)
	}
}

func (a *Action) entails(w *World) []*Action {
	switch {
	case a.Behave != nil:
		return a.entailsBehave(w)
	case a.Configure != nil:
		return a.entailsConfigure(w)
	case a.Modify != nil:
		return a.enlightened
	}
	return nil
}

func (a *Action) fillOld(w *World) {
	switch {
	case a.Configure != nil && a.Configure.Old == nil:
		it := w.Items[a.Configure.Direct]
		a.Configure.Old = &Placement{Link: it.Link, Parent: it.Parent}
	case a.Modify != nil && !a.Modify.HasOld:
		it := w.Items[a.Modify.Direct]
		a.Modify.Old, _ = it.Feature(a.Modify.Feature)
		a.Modify.HasOld = true
	}
}

func (a *Action) checkRefusal(w *World) {
	if a.Agent == item.Cosmos {
		return
	}
	agent := w.Items[a.Agent]
	signature := a.String()
	for _, r := range agent.Refuses {
		if !matchSignature(r.Pattern, signature) {
			continue
		}
		if len(r.Rooms) > 0 {
			if room := w.RoomOf(a.Agent); room != nil && slices.Contains(r.Rooms, room.Tag) {
				a.Refusal = r.Reason
				break
			}
		} else if w.condition(r.When)(w) {
			a.Refusal = r.Reason
			break
		}
	}
	if a.Refusal == "" && a.Verb == "leave" && a.Behave != nil {
		a.Refusal = leaveRefusal(w, a.Agent, a.Behave.Direction)
	}
	if a.Refusal != "" {
		a.Refusal = strings.ReplaceAll(a.Refusal, "[*", "["+a.Agent)
	}
}

func leaveRefusal(w *World, agent, direction string) string {
	room := w.RoomOf(agent)
	if room == nil {
		return ""
	}
	if w.CanSee(agent, room.Tag) {
		if room.Exit(direction) != "" {
			return ""
		}
		if text, ok := room.Exits[direction]; ok {
			return text
		}
		return "[" + agent + "/s] [see/v] no way to do that"
	}
	if direction == "up" || direction == "down" {
		return "[" + agent + "/s] [find/not/v] any way to go [direction]"
	}
	return ""
}

// matchSignature reports whether every pattern in a space separated list
// matches the signature.
func matchSignature(patterns, signature string) bool {
	for _, p := range strings.Fields(patterns) {
		re, err := regexp.Compile(p)
		if err != nil || !re.MatchString(signature) {
			return false
		}
	}
	return true
}
