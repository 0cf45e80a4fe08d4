package world

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"storyworld/internal/game/item"
)

// Model is the item tree and action log shared by the World and by every
// Concept. A Concept's Model is partial: items an agent never perceived are
// simply absent.
type Model struct {
	Items map[string]*item.Item `json:"items"`
	Acts  map[int]*Action       `json:"acts"`
	Ticks int                   `json:"ticks"`
}

func newModel() Model {
	return Model{
		Items: make(map[string]*item.Item),
		Acts:  make(map[int]*Action),
	}
}

// Get returns the item with the given tag.
func (m *Model) Get(tag string) (*item.Item, bool) {
	it, ok := m.Items[tag]
	return it, ok
}

// Act returns the action with the given id.
func (m *Model) Act(id int) (*Action, bool) {
	a, ok := m.Acts[id]
	return a, ok
}

// Has reports whether tag names an item of the given kind.
func (m *Model) Has(kind item.Kind, tag string) bool {
	it, ok := m.Items[tag]
	return ok && it.Is(kind)
}

// Tags returns all item tags in sorted order.
func (m *Model) Tags() []string {
	tags := make([]string, 0, len(m.Items))
	for tag := range m.Items {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Ancestors lists the items above tag, nearest first, ending at the root.
func (m *Model) Ancestors(tag string) []string {
	var above []string
	it, ok := m.Items[tag]
	if !ok {
		return nil
	}
	seen := map[string]bool{tag: true}
	for p := it.Parent; p != ""; {
		if seen[p] {
			break
		}
		seen[p] = true
		above = append(above, p)
		parent, ok := m.Items[p]
		if !ok {
			break
		}
		p = parent.Parent
	}
	return above
}

// Descendants lists every item under tag. StopClosed does not enter closed
// items and StopOpaque does not enter items that are closed and opaque. A
// room's shared things and doors are included.
func (m *Model) Descendants(tag string, stop item.Stop) []string {
	it, ok := m.Items[tag]
	if !ok {
		return nil
	}
	var under []string
	descend := false
	switch stop {
	case item.StopBottom:
		descend = true
	case item.StopClosed:
		descend = it.IsOpen()
	case item.StopOpaque:
		descend = it.IsOpen() || it.Transparent
	}
	if descend {
		for _, c := range it.Children {
			if _, ok := m.Items[c.Tag]; ok {
				under = append(under, c.Tag)
				under = append(under, m.Descendants(c.Tag, stop)...)
			}
		}
	}
	under = append(under, it.Shared...)
	return append(under, m.Doors(tag)...)
}

// Doors returns the doors leading out of a room, in exit order.
func (m *Model) Doors(tag string) []string {
	it, ok := m.Items[tag]
	if !ok || !it.IsRoom() {
		return nil
	}
	directions := make([]string, 0, len(it.Exits))
	for dir := range it.Exits {
		directions = append(directions, dir)
	}
	sort.Strings(directions)
	var doors []string
	for _, dir := range directions {
		to := it.Exits[dir]
		if m.Has(item.KindDoor, to) && !slices.Contains(doors, to) {
			doors = append(doors, to)
		}
	}
	return doors
}

// RoomOf returns the room or door the item is in, or nil if the item is out
// of play.
func (m *Model) RoomOf(tag string) *item.Item {
	seen := make(map[string]bool)
	for tag != "" && tag != item.Cosmos && !seen[tag] {
		seen[tag] = true
		it, ok := m.Items[tag]
		if !ok {
			return nil
		}
		if it.IsRoom() || it.IsDoor() {
			return it
		}
		tag = it.Parent
	}
	return nil
}

// Place returns the room the item is in. Unlike RoomOf, doors are not places.
func (m *Model) Place(tag string) *item.Item {
	for tag != "" && tag != item.Cosmos {
		it, ok := m.Items[tag]
		if !ok {
			return nil
		}
		if it.IsRoom() {
			return it
		}
		tag = it.Parent
	}
	return nil
}

// CompartmentOf returns the nearest enclosing room, door, root or closed
// opaque item: the boundary perception does not cross.
func (m *Model) CompartmentOf(tag string) *item.Item {
	it, ok := m.Items[tag]
	if !ok {
		return nil
	}
	if tag == item.Cosmos || it.IsRoom() {
		return it
	}
	c, ok := m.Items[it.Parent]
	for ok && !boundary(c) {
		c, ok = m.Items[c.Parent]
	}
	if !ok {
		return nil
	}
	return c
}

func boundary(c *item.Item) bool {
	return c.IsRoom() || c.IsDoor() || c.Tag == item.Cosmos ||
		(!c.Transparent && c.Opens() && !c.IsOpen())
}

// Accessible lists every item the actor can physically reach: its
// compartment and whatever is inside it without opening anything, plus the
// compartment's shared things and doors. Items whose accessible feature is
// false are left out.
func (m *Model) Accessible(actor string) []string {
	if actor == item.Cosmos {
		return m.Tags()
	}
	c := m.CompartmentOf(actor)
	if c == nil {
		return nil
	}
	tags := []string{c.Tag}
	for _, child := range c.Children {
		if child.Link == item.On {
			continue
		}
		tags = append(tags, child.Tag)
		tags = append(tags, m.Descendants(child.Tag, item.StopClosed)...)
	}
	tags = append(tags, c.Shared...)
	tags = append(tags, m.Doors(c.Tag)...)

	reachable := tags[:0]
	for _, tag := range tags {
		it, ok := m.Items[tag]
		if !ok {
			continue
		}
		if v, ok := it.Features["accessible"]; ok {
			if b, _ := v.(bool); !b {
				continue
			}
		}
		reachable = append(reachable, tag)
	}
	return reachable
}

// ShowDescendants renders the subtree rooted at tag, one item per line.
func (m *Model) ShowDescendants(tag string) string {
	var b strings.Builder
	m.showDescendants(&b, tag, "")
	return b.String()
}

func (m *Model) showDescendants(b *strings.Builder, tag, padding string) {
	it, ok := m.Items[tag]
	if !ok {
		return
	}
	fmt.Fprintf(b, "%s%s: %s [%s]\n", padding, tag, it.Called, it.Link)
	for _, c := range it.Children {
		m.showDescendants(b, c.Tag, padding+"    ")
	}
}

// clone deep copies items and actions.
func (m *Model) clone() Model {
	c := Model{
		Items: make(map[string]*item.Item, len(m.Items)),
		Acts:  make(map[int]*Action, len(m.Acts)),
		Ticks: m.Ticks,
	}
	for tag, it := range m.Items {
		c.Items[tag] = it.Clone()
	}
	for id, a := range m.Acts {
		c.Acts[id] = a.Clone()
	}
	return c
}

// scratch deep copies only the items, for speculative changes.
func (m *Model) scratch() *Model {
	c := &Model{Items: make(map[string]*item.Item, len(m.Items))}
	for tag, it := range m.Items {
		c.Items[tag] = it.Clone()
	}
	return c
}

func (m *Model) linkChildren(order []string) {
	for _, tag := range order {
		it := m.Items[tag]
		if tag == item.Cosmos || it.Parent == "" {
			continue
		}
		if parent, ok := m.Items[it.Parent]; ok {
			parent.AddChild(it.Link, tag, true)
		}
	}
}

func newCosmos() *item.Item {
	c := item.NewActor(item.Cosmos, "", "")
	c.Called = "nature"
	c.Allowed = item.RuleHaveAnyItem
	return c
}
