//go:build linux

package mpris

import (
	"context"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"

	propsInterface = "org.freedesktop.DBus.Properties"
	busInterface   = "org.freedesktop.DBus"

	signalBufferSize = 32
	eventBufferSize  = 16
)

// Watcher observes MPRIS players over the session bus.
type Watcher struct {
	conn   *dbus.Conn
	filter string // lowercase substring of the bus name, "" watches all
	log    zerolog.Logger

	events chan Event

	// owners maps unique bus names (":1.42") to well-known MPRIS names,
	// so PropertiesChanged signals can be attributed to a player.
	owners map[string]string
	// lastMeta remembers the last snapshot per player for removal events.
	lastMeta map[string]Metadata
}

// NewWatcher connects to the session bus and prepares signal matches.
// filter restricts watching to players whose bus name contains it
// (case-insensitive); an empty filter watches every player.
func NewWatcher(filter string, log zerolog.Logger) (*Watcher, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchObjectPath(mprisObjectPath),
	); err != nil {
		return nil, err
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(busInterface),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		return nil, err
	}

	return &Watcher{
		conn:     conn,
		filter:   strings.ToLower(filter),
		log:      log,
		events:   make(chan Event, eventBufferSize),
		owners:   make(map[string]string),
		lastMeta: make(map[string]Metadata),
	}, nil
}

// Events returns the watcher's event stream. The channel closes when Run
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run delivers events until ctx is cancelled. It first emits EventConnected,
// then a metadata event per already-running player, then follows bus
// signals.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)

	signals := make(chan *dbus.Signal, signalBufferSize)
	w.conn.Signal(signals)
	defer w.conn.RemoveSignal(signals)

	w.emit(ctx, Event{Kind: EventConnected})
	w.scanExistingPlayers(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			w.handleSignal(ctx, sig)
		}
	}
}

// scanExistingPlayers picks up players already on the bus and processes
// their current metadata, so a track playing before the watcher started is
// still recorded.
func (w *Watcher) scanExistingPlayers(ctx context.Context) {
	var names []string
	err := w.conn.BusObject().Call(busInterface+".ListNames", 0).Store(&names)
	if err != nil {
		// Leave the watcher running on signals alone.
		w.log.Error().Err(err).Msg("mpris: listing bus names failed")
		return
	}

	for _, name := range names {
		if !w.watches(name) {
			continue
		}
		var owner string
		if err := w.conn.BusObject().Call(busInterface+".GetNameOwner", 0, name).Store(&owner); err == nil {
			w.owners[owner] = name
		}
		w.readCurrentMetadata(ctx, name)
	}
}

// readCurrentMetadata queries a player's Metadata property and emits it.
func (w *Watcher) readCurrentMetadata(ctx context.Context, name string) {
	obj := w.conn.Object(name, mprisObjectPath)
	variant, err := obj.GetProperty(playerInterface + ".Metadata")
	if err != nil {
		w.log.Debug().Err(err).Str("player", name).Msg("mpris: reading metadata failed")
		return
	}
	raw, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		return
	}
	w.emitMetadata(ctx, name, parseMetadata(raw))
}

func (w *Watcher) handleSignal(ctx context.Context, sig *dbus.Signal) {
	switch sig.Name {
	case propsInterface + ".PropertiesChanged":
		w.handlePropertiesChanged(ctx, sig)
	case busInterface + ".NameOwnerChanged":
		w.handleNameOwnerChanged(ctx, sig)
	}
}

func (w *Watcher) handlePropertiesChanged(ctx context.Context, sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != playerInterface {
		return
	}

	name, ok := w.owners[sig.Sender]
	if !ok {
		// Unknown sender: a player that appeared without a
		// NameOwnerChanged we saw. Resolve lazily.
		name = w.resolveSender(sig.Sender)
		if name == "" {
			return
		}
	}
	if !w.watches(name) {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}
	metaVariant, ok := changed["Metadata"]
	if !ok {
		return
	}
	raw, ok := metaVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return
	}
	w.emitMetadata(ctx, name, parseMetadata(raw))
}

func (w *Watcher) handleNameOwnerChanged(ctx context.Context, sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, _ := sig.Body[0].(string)
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	if !w.watches(name) {
		return
	}

	if oldOwner != "" {
		delete(w.owners, oldOwner)
	}

	if newOwner != "" {
		// Player appeared or changed owner.
		w.owners[newOwner] = name
		w.readCurrentMetadata(ctx, name)
		return
	}

	// Player left the bus.
	last, ok := w.lastMeta[name]
	delete(w.lastMeta, name)
	if !ok {
		return
	}
	w.log.Debug().Str("player", name).Msg("mpris: player left")
	w.emit(ctx, Event{Kind: EventRemoved, Player: name, Meta: last})
}

// resolveSender maps a unique bus name back to a watched MPRIS name by
// rescanning the bus.
func (w *Watcher) resolveSender(sender string) string {
	var names []string
	if err := w.conn.BusObject().Call(busInterface+".ListNames", 0).Store(&names); err != nil {
		return ""
	}
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		var owner string
		if err := w.conn.BusObject().Call(busInterface+".GetNameOwner", 0, name).Store(&owner); err != nil {
			continue
		}
		w.owners[owner] = name
		if owner == sender {
			return name
		}
	}
	return ""
}

func (w *Watcher) emitMetadata(ctx context.Context, name string, meta Metadata) {
	w.lastMeta[name] = meta
	w.emit(ctx, Event{Kind: EventMetadata, Player: name, Meta: meta})
}

// emit blocks until the consumer takes the event or ctx is cancelled. The
// pipeline consumes serially, so ordering is preserved end to end.
func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// watches reports whether a bus name is an MPRIS player matching the filter.
func (w *Watcher) watches(name string) bool {
	if !strings.HasPrefix(name, mprisPrefix) {
		return false
	}
	if w.filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), w.filter)
}

// parseMetadata extracts the fields streamlog cares about from an MPRIS
// metadata map. Missing or oddly-typed entries yield empty strings.
func parseMetadata(raw map[string]dbus.Variant) Metadata {
	var m Metadata
	m.Title = stringValue(raw, "xesam:title")
	m.Album = stringValue(raw, "xesam:album")
	m.ArtURL = stringValue(raw, "mpris:artUrl")

	// xesam:artist is a list per spec, but some players send a plain string.
	if v, ok := raw["xesam:artist"]; ok {
		switch artists := v.Value().(type) {
		case []string:
			m.Artist = strings.Join(artists, ", ")
		case string:
			m.Artist = artists
		}
	}
	return m
}

func stringValue(raw map[string]dbus.Variant, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}
