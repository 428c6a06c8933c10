package repository

import (
	"context"
	"time"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
)

const communicationColumns = `id, title, description, filename, original_filename, size_bytes, category, publish_date, uploaded_by, is_active, created_at, updated_at`

func scanCommunication(row interface{ Scan(...any) error }) (model.Communication, error) {
	var doc model.Communication
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.Filename,
		&doc.OriginalFilename,
		&doc.SizeBytes,
		&doc.Category,
		&doc.PublishDate,
		&doc.UploadedBy,
		&doc.IsActive,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	return doc, err
}

func (s *Store) ListCommunications(ctx context.Context, category string) ([]model.Communication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+communicationColumns+`
		FROM communications
		WHERE is_active = true
		  AND ($1 = '' OR category = $1)
		ORDER BY publish_date DESC, created_at DESC
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]model.Communication, 0)
	for rows.Next() {
		doc, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) GetCommunicationByID(ctx context.Context, docID string) (model.Communication, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+communicationColumns+`
		FROM communications
		WHERE id = $1
	`, docID)
	return scanCommunication(row)
}

func (s *Store) CreateCommunication(ctx context.Context, doc model.Communication) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO communications (id, title, description, filename, original_filename, size_bytes, category, publish_date, uploaded_by, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, doc.ID, doc.Title, doc.Description, doc.Filename, doc.OriginalFilename, doc.SizeBytes, doc.Category, doc.PublishDate, doc.UploadedBy, doc.IsActive, doc.CreatedAt, doc.UpdatedAt)
	return err
}

type CommunicationUpdate struct {
	Title       *string
	Description *string
	Category    *string
	PublishDate *time.Time
	IsActive    *bool
}

// UpdateCommunication touches metadata only; the stored file never changes.
func (s *Store) UpdateCommunication(ctx context.Context, docID string, update CommunicationUpdate) (model.Communication, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE communications
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    category = COALESCE($4, category),
		    publish_date = COALESCE($5, publish_date),
		    is_active = COALESCE($6, is_active),
		    updated_at = $7
		WHERE id = $1
		RETURNING `+communicationColumns+`
	`, docID, update.Title, update.Description, update.Category, update.PublishDate, update.IsActive, time.Now().UTC())
	return scanCommunication(row)
}

func (s *Store) DeleteCommunication(ctx context.Context, docID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM communications WHERE id = $1`, docID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
