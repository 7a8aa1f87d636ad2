package mqtt

// discard is a Publisher that drops everything. Used when telemetry is
// disabled with an empty broker address.
type discard struct{}

// Discard returns a Publisher that silently drops all events.
func Discard() Publisher {
	return discard{}
}

func (discard) Publish(Event) error             { return nil }
func (discard) PublishSystem(SystemEvent) error { return nil }
func (discard) Close() error                    { return nil }
