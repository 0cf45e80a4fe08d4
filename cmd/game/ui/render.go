package ui

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"storyworld/internal/game/director"
	"storyworld/internal/game/events"
	"storyworld/internal/game/world"
)

// Events below this salience are not shown.
const minSalience = 0.05

var markup = regexp.MustCompile(`\[([^\]]+)\]`)

// renderTurn describes what the focalizer perceived during a turn.
func (m Model) renderTurn(turn director.Turn) []string {
	c, ok := m.game.Director.World.Concept(m.game.Focalizer)
	if !ok {
		return nil
	}
	byID := make(map[int]*world.Action, len(turn.Actions))
	for _, a := range turn.Actions {
		byID[a.ID] = a
	}
	r := renderer{concept: c, focalizer: m.game.Focalizer}

	var lines []string
	for _, ev := range events.Salient(events.ForAgent(c, turn.Events), minSalience) {
		a, ok := byID[ev.ActionID]
		if !ok {
			continue
		}
		lines = append(lines, r.action(a)...)
	}
	return lines
}

type renderer struct {
	concept   *world.Concept
	focalizer string
}

func (r renderer) action(a *world.Action) []string {
	switch a.Status() {
	case world.Refused:
		return []string{"! " + capitalize(r.realize(a.Refusal, a))}
	case world.Failed, world.Prevented:
		f, _ := a.FirstFailure()
		return []string{fmt.Sprintf("! %s cannot %s (%s)", capitalize(r.name(a.Agent)), a.Verb, f.Reason)}
	}

	if a.Sense != nil && a.Agent == r.focalizer {
		return r.perception(a)
	}
	if a.Behave != nil && a.Behave.Utterance != "" {
		return []string{fmt.Sprintf("%s: %q", capitalize(r.name(a.Agent)), a.Behave.Utterance)}
	}
	if a.Template != "" {
		return []string{capitalize(r.realize(a.Template, a))}
	}
	line := r.name(a.Agent) + " " + a.Verb
	if d := a.Direct(); d != "" && d != a.Agent {
		line += " " + r.name(d)
	}
	return []string{capitalize(line)}
}

// perception shows what the focalizer now believes about what it sensed.
func (r renderer) perception(a *world.Action) []string {
	it, ok := r.concept.Get(a.Sense.Direct)
	if !ok {
		return nil
	}
	var lines []string
	if text := it.Senses[a.Sense.Modality]; text != "" {
		lines = append(lines, capitalize(r.realize(text, a))+".")
	} else {
		lines = append(lines, capitalize(r.name(a.Sense.Direct))+".")
	}
	if a.Sense.Modality != "sight" || !(it.IsRoom() || len(it.Children) > 0) {
		return lines
	}

	var here []string
	for _, child := range it.Children {
		if child.Tag == r.focalizer {
			continue
		}
		if c, ok := r.concept.Get(child.Tag); ok && c.Mention {
			here = append(here, r.name(child.Tag))
		}
	}
	if len(here) > 0 {
		lines = append(lines, "You notice "+strings.Join(here, ", ")+".")
	}
	if it.IsRoom() && len(it.Exits) > 0 {
		var dirs []string
		for dir := range it.Exits {
			if it.Exit(dir) != "" {
				dirs = append(dirs, dir)
			}
		}
		slices.Sort(dirs)
		if len(dirs) > 0 {
			lines = append(lines, "Exits: "+strings.Join(dirs, ", ")+".")
		}
	}
	return lines
}

// realize fills in a sense or reason template: tags become the names the
// focalizer knows things by and verbs agree with the last subject.
func (r renderer) realize(text string, a *world.Action) string {
	subject := r.name(a.Agent)
	out := markup.ReplaceAllStringFunc(text, func(m string) string {
		parts := strings.Split(m[1:len(m)-1], "/")
		head, marks := parts[0], parts[1:]
		var tag string
		switch {
		case head == "*" || head == "agent":
			tag = a.Agent
		case head == "direct":
			tag = a.Direct()
		case head == "indirect":
			tag = a.Indirect()
			if a.Configure != nil {
				tag = a.Configure.New.Parent
			}
		case strings.HasPrefix(head, "@"):
			tag = head
		case head == "direction":
			if a.Behave != nil {
				return a.Behave.Direction
			}
			return ""
		case head == "begin-caps":
			return ""
		}
		if tag != "" {
			name := r.name(tag)
			if slices.Contains(marks, "s") {
				subject = name
			} else if slices.Contains(marks, "o") && name == "you" && subject == "you" {
				return "yourself"
			}
			return name
		}
		if slices.Contains(marks, "v") {
			third := subject != "you" || slices.Contains(marks, "1")
			return conjugate(head, third, slices.Contains(marks, "ed"), slices.Contains(marks, "not"))
		}
		return head
	})
	return strings.Join(strings.Fields(out), " ")
}

var pastTense = map[string]string{
	"is": "was", "are": "were", "have": "had", "see": "saw",
	"find": "found", "win": "won", "lose": "lost", "read": "read",
}

func conjugate(verb string, third, past, negate bool) string {
	if verb == "is" || verb == "are" {
		form := "are"
		switch {
		case past && third:
			form = "was"
		case past:
			form = "were"
		case third:
			form = "is"
		}
		if negate {
			return form + " not"
		}
		return form
	}
	if negate {
		aux := "do"
		switch {
		case past:
			aux = "did"
		case third:
			aux = "does"
		}
		return aux + " not " + verb
	}
	if past {
		if p, ok := pastTense[verb]; ok {
			return p
		}
		if strings.HasSuffix(verb, "e") {
			return verb + "d"
		}
		return verb + "ed"
	}
	if !third {
		return verb
	}
	switch {
	case verb == "have":
		return "has"
	case strings.HasSuffix(verb, "s"), strings.HasSuffix(verb, "sh"), strings.HasSuffix(verb, "ch"),
		strings.HasSuffix(verb, "x"), strings.HasSuffix(verb, "o"):
		return verb + "es"
	case strings.HasSuffix(verb, "y") && len(verb) > 1 && !strings.ContainsRune("aeiou", rune(verb[len(verb)-2])):
		return verb[:len(verb)-1] + "ies"
	}
	return verb + "s"
}

func (r renderer) name(tag string) string {
	if tag == r.focalizer {
		return "you"
	}
	it, ok := r.concept.Get(tag)
	if !ok || it.Called == "" {
		return tag
	}
	called := strings.NewReplacer("(", "", ")", "").Replace(it.Called)
	if it.Article == "" {
		return called
	}
	return "the " + called
}

func capitalize(s string) string {
	for i, c := range s {
		return string(unicode.ToUpper(c)) + s[i+len(string(c)):]
	}
	return s
}
