package world

import (
	"slices"

	"storyworld/internal/game/item"
)

// Sight failure reasons.
const (
	BlameLight      = "enough_light"
	BlameView       = "good_enough_view"
	BlameProminence = "item_prominent_enough"
	ActorInPlay     = "actor_in_play"
	ItemInPlay      = "item_in_play"
	LineOfSight     = "line_of_sight"
)

// SightThreshold is the least prominence × view × light that can be seen.
const SightThreshold = 0.2

// LightLevel is the light in the item's compartment: the compartment's glow
// plus whatever shines from inside it.
func (w *World) LightLevel(tag string) float64 {
	c := w.CompartmentOf(tag)
	if c == nil {
		return 0
	}
	total := c.Glow
	for _, child := range c.Children {
		total += w.LightWithin(child.Tag)
	}
	return total
}

// LightWithin is an item's own glow plus the light of its contents. Light
// from things inside a closed opaque item stays inside.
func (w *World) LightWithin(tag string) float64 {
	it, ok := w.Items[tag]
	if !ok {
		return 0
	}
	total := it.Glow
	for _, child := range it.Children {
		if child.Link == item.In && !it.IsOpen() && !it.Transparent {
			continue
		}
		total += w.LightWithin(child.Tag)
	}
	return total
}

// PreventsSight returns why actor cannot see tag, or "" if it can.
func (w *World) PreventsSight(actor, tag string) string {
	if actor == item.Cosmos {
		return ""
	}
	target, ok := w.Items[tag]
	if !ok {
		return ItemInPlay
	}
	actorPlace := w.RoomOf(actor)
	if actorPlace == nil {
		return ActorInPlay
	}
	itemPlace := w.RoomOf(tag)
	if itemPlace == nil &&
		!slices.Contains(actorPlace.Shared, tag) &&
		!slices.Contains(w.Doors(actorPlace.Tag), tag) {
		return ItemInPlay
	}

	compartment := w.CompartmentOf(actor)
	if compartment == nil {
		return ActorInPlay
	}
	var inView []string
	if compartment != actorPlace {
		inView = append(inView, compartment.Tag)
		for _, child := range compartment.Children {
			if child.Link == item.On {
				continue
			}
			inView = append(inView, child.Tag)
			inView = append(inView, w.Descendants(child.Tag, item.StopOpaque)...)
		}
	} else {
		rooms := []string{actorPlace.Tag}
		if actorPlace.IsDoor() {
			rooms = append(rooms, actorPlace.Connects...)
		} else {
			for r := range actorPlace.View {
				rooms = append(rooms, r)
			}
		}
		for _, r := range rooms {
			inView = append(inView, r)
			inView = append(inView, w.Descendants(r, item.StopOpaque)...)
		}
	}
	if !slices.Contains(inView, tag) {
		return LineOfSight
	}

	view := 1.0
	if actorPlace.IsRoom() && itemPlace != nil {
		if v, ok := actorPlace.View[itemPlace.Tag]; ok {
			view = v.Visibility
		}
	}
	lit := w.LightLevel(tag)
	if compartment.Tag == tag && len(target.Children) > 0 {
		// Seen from inside, a compartment is lit by what is inside it.
		lit = w.LightLevel(target.Children[0].Tag)
	}
	if target.Prominence*view*lit >= SightThreshold {
		return ""
	}
	return sightCulprit(target.Prominence, view, lit)
}

// CanSee reports whether actor can see tag.
func (w *World) CanSee(actor, tag string) bool {
	return w.PreventsSight(actor, tag) == ""
}

func sightCulprit(prominence, view, lit float64) string {
	if lit <= prominence && lit <= view {
		return BlameLight
	}
	if view <= prominence && view <= lit {
		return BlameView
	}
	return BlameProminence
}
