//go:build linux

package mpris

import (
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

func TestParseMetadata(t *testing.T) {
	raw := map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Song A"),
		"xesam:artist": dbus.MakeVariant([]string{"Artist X"}),
		"xesam:album":  dbus.MakeVariant("Album 1"),
		"mpris:artUrl": dbus.MakeVariant("https://example.com/a.jpg"),
	}

	m := parseMetadata(raw)
	if m.Title != "Song A" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Artist != "Artist X" {
		t.Errorf("Artist = %q", m.Artist)
	}
	if m.Album != "Album 1" {
		t.Errorf("Album = %q", m.Album)
	}
	if m.ArtURL != "https://example.com/a.jpg" {
		t.Errorf("ArtURL = %q", m.ArtURL)
	}
}

func TestParseMetadata_MultipleArtists(t *testing.T) {
	raw := map[string]dbus.Variant{
		"xesam:artist": dbus.MakeVariant([]string{"Artist X", "Artist Y"}),
	}
	if m := parseMetadata(raw); m.Artist != "Artist X, Artist Y" {
		t.Errorf("Artist = %q, want joined list", m.Artist)
	}
}

func TestParseMetadata_ArtistAsPlainString(t *testing.T) {
	// Some players violate the spec and send a single string.
	raw := map[string]dbus.Variant{
		"xesam:artist": dbus.MakeVariant("Artist X"),
	}
	if m := parseMetadata(raw); m.Artist != "Artist X" {
		t.Errorf("Artist = %q, want Artist X", m.Artist)
	}
}

func TestParseMetadata_MissingOrWrongTypes(t *testing.T) {
	raw := map[string]dbus.Variant{
		"xesam:title": dbus.MakeVariant(int32(7)),
	}
	m := parseMetadata(raw)
	if m.Title != "" || m.Artist != "" || m.Album != "" || m.ArtURL != "" {
		t.Errorf("malformed metadata should parse to empty fields, got %+v", m)
	}
}

func TestWatches(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		bus    string
		want   bool
	}{
		{"non-mpris name", "", "org.freedesktop.Notifications", false},
		{"any player with empty filter", "", "org.mpris.MediaPlayer2.spotify", true},
		{"matching filter", "tidal", "org.mpris.MediaPlayer2.tidal-hifi", true},
		{"matching filter is case-insensitive", "Tidal", "org.mpris.MediaPlayer2.TIDAL-hifi", true},
		{"non-matching filter", "tidal", "org.mpris.MediaPlayer2.spotify", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Watcher{filter: strings.ToLower(tt.filter), log: zerolog.Nop()}
			if got := w.watches(tt.bus); got != tt.want {
				t.Errorf("watches(%q) with filter %q = %v, want %v", tt.bus, tt.filter, got, tt.want)
			}
		})
	}
}
