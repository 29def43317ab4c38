package detect

import "testing"

func TestShouldRecord_NewTrackThenDuplicate(t *testing.T) {
	var d Detector

	title, artist, ok := d.ShouldRecord("Song A", "Artist X")
	if !ok {
		t.Fatal("first occurrence should be recorded")
	}
	if title != "Song A" || artist != "Artist X" {
		t.Errorf("accepted pair = (%q, %q), want (Song A, Artist X)", title, artist)
	}

	// Players re-announce the same track while it plays.
	if _, _, ok := d.ShouldRecord("Song A", "Artist X"); ok {
		t.Error("identical pair right after acceptance should be rejected")
	}
}

func TestShouldRecord_TrimsBeforeComparing(t *testing.T) {
	var d Detector

	if _, _, ok := d.ShouldRecord("  Song A  ", "\tArtist X\n"); !ok {
		t.Fatal("padded pair should be accepted")
	}
	// Same pair with different padding is still the same track.
	if _, _, ok := d.ShouldRecord("Song A", "Artist X "); ok {
		t.Error("pair differing only in whitespace should be rejected")
	}
}

func TestShouldRecord_BlankFields(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
	}{
		{"empty title", "", "Artist X"},
		{"empty artist", "Song A", ""},
		{"whitespace title", "   ", "Artist X"},
		{"whitespace artist", "Song A", " \t "},
		{"both blank", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Detector
			d.ShouldRecord("Prev", "Prev Artist")

			if _, _, ok := d.ShouldRecord(tt.title, tt.artist); ok {
				t.Error("blank candidate should be rejected")
			}
			// State must be untouched: the previous pair still dedupes.
			if _, _, ok := d.ShouldRecord("Prev", "Prev Artist"); ok {
				t.Error("state changed by a rejected candidate")
			}
		})
	}
}

func TestShouldRecord_DifferentTrackAccepted(t *testing.T) {
	var d Detector

	d.ShouldRecord("Song A", "Artist X")
	if _, _, ok := d.ShouldRecord("Song B", "Artist X"); !ok {
		t.Error("different title should be accepted")
	}
	if _, _, ok := d.ShouldRecord("Song B", "Artist Y"); !ok {
		t.Error("different artist should be accepted")
	}
}

func TestTrackRemoved_ResetsMatchingPair(t *testing.T) {
	var d Detector

	d.ShouldRecord("Song A", "Artist X")
	d.TrackRemoved("Song A", "Artist X")

	// Playback of the track ended; the same pair counts as a new play.
	if _, _, ok := d.ShouldRecord("Song A", "Artist X"); !ok {
		t.Error("same pair after a matching removal should be accepted")
	}
}

func TestTrackRemoved_IgnoresOtherTracks(t *testing.T) {
	var d Detector

	d.ShouldRecord("Song A", "Artist X")
	d.TrackRemoved("Song B", "Artist Y")

	if _, _, ok := d.ShouldRecord("Song A", "Artist X"); ok {
		t.Error("removal of an unrelated track should not reset state")
	}
}

func TestTrackRemoved_TrimsBeforeMatching(t *testing.T) {
	var d Detector

	d.ShouldRecord("Song A", "Artist X")
	d.TrackRemoved(" Song A ", " Artist X ")

	if _, _, ok := d.ShouldRecord("Song A", "Artist X"); !ok {
		t.Error("padded removal should still match and reset")
	}
}

func TestReset(t *testing.T) {
	var d Detector

	d.ShouldRecord("Song A", "Artist X")

	// Listener reconnects: everything is new again.
	d.Reset()
	if _, _, ok := d.ShouldRecord("Song A", "Artist X"); !ok {
		t.Error("same pair after reset should be accepted")
	}
}
