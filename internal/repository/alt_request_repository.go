package repository

import (
	"context"
	"fmt"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AltRequestRepository manages reassignment requests.
type AltRequestRepository struct {
	*base.Repository
}

func NewAltRequestRepository(pool *pgxpool.Pool) *AltRequestRepository {
	return &AltRequestRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a new request.
func (r *AltRequestRepository) Create(ctx context.Context, req *model.AltRequest) error {
	query := `
		INSERT INTO alt_requests (livestream_id, snapshot_id, creator, alt_note, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.LivestreamID,
		req.SnapshotID,
		req.Creator,
		req.AltNote,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create alt request: %w", err)
	}

	return nil
}

// GetByID fetches one request, (nil, nil) when missing.
func (r *AltRequestRepository) GetByID(ctx context.Context, id int64) (*model.AltRequest, error) {
	query := `
		SELECT id, livestream_id, snapshot_id, creator, alt_note, status, created_at, updated_at
		FROM alt_requests
		WHERE id = $1
	`

	req, err := scanAltRequest(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alt request by id: %w", err)
	}

	return req, nil
}

// GetPending fetches the pending request of one snapshot, if any.
func (r *AltRequestRepository) GetPending(ctx context.Context, livestreamID int64, snapshotID uuid.UUID) (*model.AltRequest, error) {
	query := `
		SELECT id, livestream_id, snapshot_id, creator, alt_note, status, created_at, updated_at
		FROM alt_requests
		WHERE livestream_id = $1 AND snapshot_id = $2 AND status = $3
	`

	req, err := scanAltRequest(r.QueryRow(ctx, query, livestreamID, snapshotID, model.RequestStatusPending))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending alt request: %w", err)
	}

	return req, nil
}

// Update rewrites the note and status.
func (r *AltRequestRepository) Update(ctx context.Context, req *model.AltRequest) error {
	query := `
		UPDATE alt_requests
		SET alt_note = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, req.ID, req.AltNote, req.Status).Scan(&req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update alt request: %w", err)
	}

	return nil
}

// Delete removes a request.
func (r *AltRequestRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM alt_requests WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("delete alt request: %w", err)
	}

	return nil
}

func scanAltRequest(row pgx.Row) (*model.AltRequest, error) {
	req := &model.AltRequest{}
	err := row.Scan(
		&req.ID,
		&req.LivestreamID,
		&req.SnapshotID,
		&req.Creator,
		&req.AltNote,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
