package events

import (
	"time"

	"github.com/google/uuid"

	"storyworld/internal/game/world"
)

// WorldEventType represents the canonical type of an in-game event.
type WorldEventType string

const (
	EventMovement     WorldEventType = "movement"
	EventItemTransfer WorldEventType = "item_transfer"
	EventSpeech       WorldEventType = "speak"
	EventStateChange  WorldEventType = "state_change"
	EventPerception   WorldEventType = "perception"
	EventBehavior     WorldEventType = "behavior"
)

// WorldEvent is the flat record of one completed action that the narration
// layer consumes.
type WorldEvent struct {
	ID        string                 `json:"id"`
	ActionID  int                    `json:"action_id"`
	Type      WorldEventType         `json:"type"`
	Verb      string                 `json:"verb"`
	Actor     string                 `json:"actor,omitempty"`
	Target    string                 `json:"target,omitempty"`
	Indirect  string                 `json:"indirect,omitempty"`
	Location  string                 `json:"location,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Template  string                 `json:"template,omitempty"`
	Status    string                 `json:"status"`
	Reason    string                 `json:"reason,omitempty"`
	Salience  float64                `json:"salience"`
	Tick      int                    `json:"tick"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Succeeded reports whether the action took effect.
func (e WorldEvent) Succeeded() bool {
	return e.Status == world.Applied.String()
}

// FromAction converts a completed action into an event. location is the
// room the action happened in, if known.
func FromAction(a *world.Action, location string, ts time.Time) WorldEvent {
	ev := WorldEvent{
		ID:        uuid.NewString(),
		ActionID:  a.ID,
		Type:      EventBehavior,
		Verb:      a.Verb,
		Actor:     a.Agent,
		Target:    a.Direct(),
		Indirect:  a.Indirect(),
		Location:  location,
		Content:   a.String(),
		Template:  a.Template,
		Status:    a.Status().String(),
		Salience:  a.Salience,
		Tick:      a.Start,
		Timestamp: ts,
	}
	switch a.Status() {
	case world.Refused:
		ev.Reason = a.Refusal
	case world.Failed, world.Prevented:
		f, _ := a.FirstFailure()
		ev.Reason = f.Reason
		if f.Tag != "" {
			ev.Meta = map[string]interface{}{"blame": f.Tag}
		}
	}
	switch a.Category() {
	case world.CategoryConfigure:
		c := a.Configure
		ev.Type = EventItemTransfer
		if c.Direct == a.Agent {
			ev.Type = EventMovement
		}
		ev.Indirect = c.New.Parent
		ev.Meta = merge(ev.Meta, map[string]interface{}{"link": string(c.New.Link)})
		if c.Old != nil {
			ev.Meta["from"] = c.Old.Parent
		}
	case world.CategoryModify:
		m := a.Modify
		ev.Type = EventStateChange
		ev.Meta = merge(ev.Meta, map[string]interface{}{"feature": m.Feature, "new": m.New})
		if m.HasOld {
			ev.Meta["old"] = m.Old
		}
	case world.CategorySense:
		ev.Type = EventPerception
		ev.Meta = merge(ev.Meta, map[string]interface{}{"modality": a.Sense.Modality})
	case world.CategoryBehave:
		if a.Behave.Utterance != "" {
			ev.Type = EventSpeech
			ev.Content = a.Behave.Utterance
		}
		if a.Behave.Direction != "" {
			ev.Meta = merge(ev.Meta, map[string]interface{}{"direction": a.Behave.Direction})
		}
	}
	return ev
}

// FromActions converts actions in order. Each event is placed in the room
// its agent was in when the action started; actions not yet done are placed
// where their agent is now.
func FromActions(w *world.World, actions []*world.Action, ts time.Time) []WorldEvent {
	out := make([]WorldEvent, 0, len(actions))
	for _, a := range actions {
		location := a.Location
		if !a.Done {
			if room := w.RoomOf(a.Agent); room != nil {
				location = room.Tag
			}
		}
		out = append(out, FromAction(a, location, ts))
	}
	return out
}

func merge(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		return src
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
