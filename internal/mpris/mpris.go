// Package mpris watches MPRIS media players on the session D-Bus and turns
// their now-playing announcements into a stream of events. It is the only
// entry point through which the outside world drives the recording pipeline:
// players come and go and re-announce metadata at times the process does not
// control.
package mpris

// Metadata is one now-playing snapshot as announced by a player. Fields are
// free text straight from the player; the detector trims and validates them.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	ArtURL string
}

// EventKind discriminates watcher events.
type EventKind int

const (
	// EventConnected is emitted once when the watcher (re)attaches to the
	// bus. Consumers reset their track-change state on it.
	EventConnected EventKind = iota
	// EventMetadata carries a now-playing snapshot from a watched player.
	EventMetadata
	// EventRemoved is emitted when a watched player leaves the bus. Meta
	// holds the last snapshot seen from that player.
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventMetadata:
		return "metadata"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one watcher occurrence.
type Event struct {
	Kind   EventKind
	Player string // well-known MPRIS bus name, empty for EventConnected
	Meta   Metadata
}
