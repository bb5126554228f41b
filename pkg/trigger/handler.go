package trigger

// Handler is returned on registration and is the way to take a trigger down again.
type Handler struct {
	runtime *Runtime
	trigger *Trigger
}

func (h *Handler) ID() TriggerID {
	return h.trigger.ID
}

func (h *Handler) Trigger() *Trigger {
	return h.trigger
}

// Remove unregisters the trigger. Removing twice returns ErrTriggerNotFound.
func (h *Handler) Remove() error {
	return h.runtime.Remove(h.trigger.ID)
}

// Removed reports whether the trigger is gone, either removed explicitly or disabled by its condition.
func (h *Handler) Removed() bool {
	return !h.runtime.registered(h.trigger.ID)
}

/*
========================
Fluent registration
========================
*/

// WhenClause is the first half of When(site, condition).Do(action).
type WhenClause struct {
	runtime   *Runtime
	site      Site
	condition Condition
	opts      []TriggerOption
}

func (r *Runtime) When(site Site, condition Condition, opts ...TriggerOption) *WhenClause {
	return &WhenClause{runtime: r, site: site, condition: condition, opts: opts}
}

func (w *WhenClause) Do(action Action) (*Handler, error) {
	return w.runtime.Register(w.site, w.condition, action, w.opts...)
}

// DoClause is the first half of Do(action).When(site, condition).
type DoClause struct {
	runtime *Runtime
	action  Action
}

func (r *Runtime) Do(action Action) *DoClause {
	return &DoClause{runtime: r, action: action}
}

func (d *DoClause) When(site Site, condition Condition, opts ...TriggerOption) (*Handler, error) {
	return d.runtime.Register(site, condition, d.action, opts...)
}
