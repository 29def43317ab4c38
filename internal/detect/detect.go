// Package detect decides whether a now-playing metadata snapshot is a new
// play, distinct from the last one recorded. Media players re-announce the
// same track repeatedly while it plays; the detector collapses those
// announcements into a single accepted transition.
package detect

import "strings"

// Detector holds the last accepted (title, artist) pair. The zero value is
// ready to use and tracks nothing.
//
// A Detector is not safe for concurrent use; the recording pipeline drives
// it from a single goroutine.
type Detector struct {
	lastTitle  string
	lastArtist string
}

// ShouldRecord reports whether the candidate pair represents a new play.
// Inputs are trimmed of surrounding whitespace before comparison. A blank
// title or artist is rejected without touching state, as is a pair equal to
// the last accepted one. On acceptance the trimmed pair becomes the new
// last-seen pair and is returned to the caller.
func (d *Detector) ShouldRecord(title, artist string) (string, string, bool) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)

	if title == "" || artist == "" {
		return "", "", false
	}
	if title == d.lastTitle && artist == d.lastArtist {
		return "", "", false
	}

	d.lastTitle = title
	d.lastArtist = artist
	return title, artist, true
}

// Reset clears the last-seen pair. Called when the watcher (re)connects to
// the bus, so the first snapshot after a reconnect is always recorded.
func (d *Detector) Reset() {
	d.lastTitle = ""
	d.lastArtist = ""
}

// TrackRemoved clears the last-seen pair when the removed track matches it.
// The next snapshot, even an identical one, will then count as a new play.
// A removal for some other track leaves the state alone.
func (d *Detector) TrackRemoved(title, artist string) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)

	if title == d.lastTitle && artist == d.lastArtist {
		d.Reset()
	}
}
