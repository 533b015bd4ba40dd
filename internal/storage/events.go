package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Event is a stored event row as seen by the dedup engine. Latitude and
// Longitude are nil when the row was never geocoded.
type Event struct {
	ID            int64
	Title         string
	StartDatetime time.Time
	EndDatetime   *time.Time
	Location      string
	Latitude      *float64
	Longitude     *float64
	SourceID      *int64
	CreatedAt     time.Time
}

// DuplicateGroup is a set of stored events sharing an exact
// (title, start_datetime) key. IDs are in store order; the first is the
// canonical row.
type DuplicateGroup struct {
	Title         string
	StartDatetime time.Time
	IDs           []int64
}

const candidateColumns = `id, title, start_datetime, end_datetime, COALESCE(location, ''), latitude, longitude, source_id, created_at`

// FindExactMatches returns events whose title and start time equal the
// proposed values. Start equality is to the second; callers truncate.
func (db *DB) FindExactMatches(ctx context.Context, title string, start time.Time) ([]Event, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM events
		WHERE title = $1 AND start_datetime = $2
		ORDER BY id
	`, title, start)
	if err != nil {
		return nil, queryErr("exact match query", err)
	}

	return scanEvents(rows)
}

// FindSimilarCandidates returns the coarse candidate set for the similarity
// strategy: titles that match exactly, phonetically, or by containment in
// either direction, with a start time inside [from, to]. The result is a
// pre-filter only; authoritative scoring happens in process. The limit
// bounds candidate-set size.
func (db *DB) FindSimilarCandidates(ctx context.Context, title string, from, to time.Time, limit int) ([]Event, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM events
		WHERE (lower(title) = lower($1)
		       OR soundex(title) = soundex($1)
		       OR title ILIKE '%' || $1 || '%'
		       OR $1 ILIKE '%' || title || '%')
		AND start_datetime >= $2 AND start_datetime <= $3
		ORDER BY start_datetime, id
		LIMIT $4
	`, title, from, to, limit)
	if err != nil {
		return nil, queryErr("similarity candidate query", err)
	}

	return scanEvents(rows)
}

// FindRecentSameDay returns events with an identical title whose start falls
// inside [dayStart, dayEnd) and which were created after createdAfter.
func (db *DB) FindRecentSameDay(ctx context.Context, title string, dayStart, dayEnd, createdAfter time.Time) ([]Event, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+candidateColumns+`
		FROM events
		WHERE title = $1
		AND start_datetime >= $2 AND start_datetime < $3
		AND created_at >= $4
		ORDER BY id
	`, title, dayStart, dayEnd, createdAfter)
	if err != nil {
		return nil, queryErr("recent same-day query", err)
	}

	return scanEvents(rows)
}

// ListDuplicateGroups returns every exact-key group holding more than one
// event, largest groups first. IDs within a group are ordered by id so the
// first member is stable across calls.
func (db *DB) ListDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT title, start_datetime, array_agg(id ORDER BY id)
		FROM events
		GROUP BY title, start_datetime
		HAVING COUNT(*) > 1
		ORDER BY COUNT(*) DESC, title
	`)
	if err != nil {
		return nil, queryErr("duplicate group query", err)
	}
	defer rows.Close()

	var groups []DuplicateGroup

	for rows.Next() {
		var g DuplicateGroup
		if err := rows.Scan(&g.Title, &g.StartDatetime, &g.IDs); err != nil {
			return nil, queryErr("scan duplicate group row", err)
		}

		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate duplicate group rows", err)
	}

	return groups, nil
}

// DeleteEvent removes a single event by id. Each delete is a short-lived
// statement so concurrent ingestion is never blocked behind the cleanup job.
func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	if _, err := db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return queryErr("delete event", err)
	}

	return nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()

	var events []Event

	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.StartDatetime, &e.EndDatetime, &e.Location,
			&e.Latitude, &e.Longitude, &e.SourceID, &e.CreatedAt,
		); err != nil {
			return nil, queryErr("scan event row", err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, queryErr("iterate event rows", err)
	}

	return events, nil
}
