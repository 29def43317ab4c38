package store

import (
	"database/sql"
	"strings"

	"github.com/loicnogier/streamlog/internal/db"
)

// PlayRecord is one observed play of a track. Records are immutable once
// inserted; the store only ever inserts and deletes them.
type PlayRecord struct {
	ID         int64
	Title      string
	Artist     string
	Album      string // optional, empty when the player did not report one
	ArtURL     string // optional, reserved for future rendering
	RecordedAt int64  // epoch milliseconds
}

// StreamCount is one row of the most-streamed ranking.
type StreamCount struct {
	Title  string
	Artist string
	Count  int
}

// Filter narrows history queries. The zero value matches everything.
type Filter struct {
	Query string // substring matched against title, artist and album
	Month string // "YYYY-MM", empty for no month constraint
}

// Insert stores a new play record and returns its assigned id. The conflict
// policy is replace-on-id, which never fires in practice because ids are
// auto-assigned.
func (s *Store) Insert(r PlayRecord) (int64, error) {
	var id int64
	// Transaction pins the connection so LastInsertId cannot observe a
	// concurrent insert from another pooled connection.
	err := db.WithTx(s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT OR REPLACE INTO track_history (track_title, artist_name, album_name, album_art_url, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, r.Title, r.Artist, db.StringOrNull(r.Album), db.StringOrNull(r.ArtURL), r.RecordedAt)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	s.notifyChanged()
	return id, nil
}

// All returns the full history, most recent first.
func (s *Store) All() ([]PlayRecord, error) {
	return s.Search(Filter{})
}

// Search returns history rows matching the filter, most recent first. The
// substring match is applied to title, artist and album (LIKE semantics, so
// case-insensitive for ASCII); the month constraint compares the timestamp
// rendered as a YYYY-MM calendar month.
func (s *Store) Search(f Filter) ([]PlayRecord, error) {
	q := `
		SELECT id, track_title, artist_name, album_name, album_art_url, timestamp
		FROM track_history
	`
	var conds []string
	var args []any

	if f.Query != "" {
		conds = append(conds, `(track_title LIKE '%' || ? || '%'
			OR artist_name LIKE '%' || ? || '%'
			OR album_name LIKE '%' || ? || '%')`)
		args = append(args, f.Query, f.Query, f.Query)
	}
	if f.Month != "" {
		conds = append(conds, monthExpr+` = ?`)
		args = append(args, f.Month)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PlayRecord
	for rows.Next() {
		var r PlayRecord
		var album, artURL sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &r.Artist, &album, &artURL, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Album = db.NullStringValue(album)
		r.ArtURL = db.NullStringValue(artURL)
		records = append(records, r)
	}
	return records, rows.Err()
}

// monthExpr renders the stored epoch-millisecond timestamp as "YYYY-MM".
const monthExpr = `strftime('%Y-%m', timestamp / 1000, 'unixepoch')`

// MostStreamed returns the play counts grouped by exact (title, artist)
// pairs, most played first. Ties break on title then artist so the ranking
// is deterministic. A non-empty month restricts the counted rows to that
// calendar month.
func (s *Store) MostStreamed(month string) ([]StreamCount, error) {
	q := `
		SELECT track_title, artist_name, COUNT(*) AS stream_count
		FROM track_history
	`
	var args []any
	if month != "" {
		q += " WHERE " + monthExpr + " = ?"
		args = append(args, month)
	}
	q += `
		GROUP BY track_title, artist_name
		ORDER BY stream_count DESC, track_title COLLATE NOCASE, artist_name COLLATE NOCASE
	`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StreamCount
	for rows.Next() {
		var c StreamCount
		if err := rows.Scan(&c.Title, &c.Artist, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Months returns the distinct calendar months with at least one record,
// newest first. The UI uses it to populate the filter choices.
func (s *Store) Months() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT ` + monthExpr + ` AS month
		FROM track_history
		ORDER BY month DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// DeleteByID removes a single record.
func (s *Store) DeleteByID(id int64) error {
	_, err := s.db.Exec(`DELETE FROM track_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

// DeleteByTrackAndArtist removes every play of a track, i.e. the track's
// whole history.
func (s *Store) DeleteByTrackAndArtist(title, artist string) error {
	_, err := s.db.Exec(`
		DELETE FROM track_history WHERE track_title = ? AND artist_name = ?
	`, title, artist)
	if err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}

// DeleteAll clears the history.
func (s *Store) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM track_history`)
	if err != nil {
		return err
	}
	s.notifyChanged()
	return nil
}
