package repository

import (
	"context"
	"time"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
)

const eventColumns = `id, title, event_type, event_date, event_time, location, description, organizer, created_by, school, is_public, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Type,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Description,
		&event.Organizer,
		&event.CreatedBy,
		&event.School,
		&event.IsPublic,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	return event, err
}

type EventFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// ListEvents returns every event in the window; visibility filtering happens
// in the handler where the actor is known.
func (s *Store) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE event_date >= $1 AND event_date <= $2
		  AND ($3 = '' OR event_type = $3)
		ORDER BY event_date, event_time, created_at
	`, filter.From, filter.To, filter.Type)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Store) GetEventByID(ctx context.Context, eventID string) (model.Event, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`, eventID)
	return scanEvent(row)
}

func (s *Store) CreateEvent(ctx context.Context, event model.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, title, event_type, event_date, event_time, location, description, organizer, created_by, school, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, event.ID, event.Title, event.Type, event.Date, event.Time, event.Location, event.Description, event.Organizer, event.CreatedBy, event.School, event.IsPublic, event.CreatedAt, event.UpdatedAt)
	return err
}

type EventUpdate struct {
	Title       *string
	Type        *string
	Date        *time.Time
	Time        *string
	Location    *string
	Description *string
	Organizer   *string
	School      *string
	IsPublic    *bool
}

func (s *Store) UpdateEvent(ctx context.Context, eventID string, update EventUpdate) (model.Event, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE events
		SET title = COALESCE($2, title),
		    event_type = COALESCE($3, event_type),
		    event_date = COALESCE($4, event_date),
		    event_time = COALESCE($5, event_time),
		    location = COALESCE($6, location),
		    description = COALESCE($7, description),
		    organizer = COALESCE($8, organizer),
		    school = COALESCE($9, school),
		    is_public = COALESCE($10, is_public),
		    updated_at = $11
		WHERE id = $1
		RETURNING `+eventColumns+`
	`, eventID, update.Title, update.Type, update.Date, update.Time, update.Location, update.Description, update.Organizer, update.School, update.IsPublic, time.Now().UTC())
	return scanEvent(row)
}

func (s *Store) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
