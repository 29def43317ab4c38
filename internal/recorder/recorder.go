// Package recorder is the pipeline between the media-session watcher and the
// store: it runs the track-change detector over incoming metadata events,
// persists accepted plays and acknowledges each stored play with a desktop
// notification. Failures are logged and swallowed; losing one record beats
// crashing the listener.
package recorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/loicnogier/streamlog/internal/detect"
	"github.com/loicnogier/streamlog/internal/mpris"
	"github.com/loicnogier/streamlog/internal/notify"
	"github.com/loicnogier/streamlog/internal/store"
)

// Options tunes the pipeline's acknowledgement behavior.
type Options struct {
	// Notifications enables the per-play desktop acknowledgement.
	Notifications bool
	// NotificationTimeout is the acknowledgement expiry in ms
	// (-1 = server default).
	NotificationTimeout int32
}

// Recorder consumes watcher events serially on its own goroutine. It is the
// store's only writer.
type Recorder struct {
	store    *store.Store
	notifier notify.Notifier
	opts     Options
	log      zerolog.Logger

	det detect.Detector

	// lastNotifyID makes each acknowledgement replace the previous one
	// instead of stacking up in the notification tray.
	lastNotifyID uint32

	now func() time.Time
}

// New builds a pipeline writing to st and acknowledging via notifier.
func New(st *store.Store, notifier notify.Notifier, opts Options, log zerolog.Logger) *Recorder {
	return &Recorder{
		store:    st,
		notifier: notifier,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Run processes events until the channel closes or ctx is cancelled. Events
// are handled one at a time in arrival order, so store writes are issued in
// detection order.
func (r *Recorder) Run(ctx context.Context, events <-chan mpris.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handle(ev)
		}
	}
}

func (r *Recorder) handle(ev mpris.Event) {
	switch ev.Kind {
	case mpris.EventConnected:
		r.log.Info().Msg("watcher connected, resetting track state")
		r.det.Reset()
	case mpris.EventMetadata:
		r.handleMetadata(ev)
	case mpris.EventRemoved:
		r.log.Debug().Str("player", ev.Player).Msg("player removed")
		r.det.TrackRemoved(ev.Meta.Title, ev.Meta.Artist)
	}
}

func (r *Recorder) handleMetadata(ev mpris.Event) {
	title, artist, ok := r.det.ShouldRecord(ev.Meta.Title, ev.Meta.Artist)
	if !ok {
		r.log.Debug().
			Str("title", ev.Meta.Title).
			Str("artist", ev.Meta.Artist).
			Msg("metadata ignored (blank or same as previous)")
		return
	}

	rec := store.PlayRecord{
		Title:      title,
		Artist:     artist,
		Album:      strings.TrimSpace(ev.Meta.Album),
		ArtURL:     strings.TrimSpace(ev.Meta.ArtURL),
		RecordedAt: r.now().UnixMilli(),
	}

	id, err := r.store.Insert(rec)
	if err != nil {
		// No retry and no state rollback: the next distinct track will
		// still be detected against the pair we just accepted.
		r.log.Error().Err(err).
			Str("title", title).
			Str("artist", artist).
			Msg("recording play failed")
		return
	}

	r.log.Info().
		Int64("id", id).
		Str("title", title).
		Str("artist", artist).
		Msg("play recorded")

	r.acknowledge(title, artist)
}

// acknowledge posts the "track saved" notification. Best effort: a denied or
// absent notification service only costs the acknowledgement, never the
// record.
func (r *Recorder) acknowledge(title, artist string) {
	if !r.opts.Notifications {
		return
	}

	id, err := r.notifier.Notify(notify.Notification{
		Title:      "Track saved",
		Body:       fmt.Sprintf("%s - %s", title, artist),
		Timeout:    r.opts.NotificationTimeout,
		ReplacesID: r.lastNotifyID,
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("acknowledgement notification failed")
		return
	}
	if id != 0 {
		r.lastNotifyID = id
	}
}
