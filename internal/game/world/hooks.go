package world

// Hooks lets an item respond to actions happening around it. Items without
// registered hooks never prevent and never react.
type Hooks interface {
	// Prevent vetoes an action whose preconditions all hold.
	Prevent(w *World, a *Action) bool
	// React returns actions to queue before the action takes effect.
	React(w *World, a *Action) []*Action
	// ReactToFailed returns actions to queue after a refused, failed or
	// prevented action.
	ReactToFailed(w *World, a *Action) []*Action
}

// NoHooks is the default, inert Hooks.
type NoHooks struct{}

func (NoHooks) Prevent(*World, *Action) bool            { return false }
func (NoHooks) React(*World, *Action) []*Action         { return nil }
func (NoHooks) ReactToFailed(*World, *Action) []*Action { return nil }

// HookFuncs adapts plain functions to Hooks. Nil fields behave like NoHooks.
type HookFuncs struct {
	OnPrevent       func(w *World, a *Action) bool
	OnReact         func(w *World, a *Action) []*Action
	OnReactToFailed func(w *World, a *Action) []*Action
}

func (h HookFuncs) Prevent(w *World, a *Action) bool {
	if h.OnPrevent == nil {
		return false
	}
	return h.OnPrevent(w, a)
}

func (h HookFuncs) React(w *World, a *Action) []*Action {
	if h.OnReact == nil {
		return nil
	}
	return h.OnReact(w, a)
}

func (h HookFuncs) ReactToFailed(w *World, a *Action) []*Action {
	if h.OnReactToFailed == nil {
		return nil
	}
	return h.OnReactToFailed(w, a)
}
