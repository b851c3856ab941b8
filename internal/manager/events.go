package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + instance coordinates and optional fields.
type Event struct {
	Name    string
	ModelID string
	Task    string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (m *Manager) publish(name string, inst *Instance, fields map[string]any) {
	m.publisher.Publish(Event{
		Name:    name,
		ModelID: inst.ModelID,
		Task:    string(inst.Task),
		Fields:  fields,
	})
}
