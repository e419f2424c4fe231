package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AltRequestService runs the reassignment approval workflow. A request is
// created pending and transitions exactly once to accepted or rejected.
type AltRequestService struct {
	requests    AltRequestStore
	livestreams LivestreamStore
	users       UserDirectory
	logger      *zap.Logger
}

func NewAltRequestService(
	requests AltRequestStore,
	livestreams LivestreamStore,
	users UserDirectory,
	logger *zap.Logger,
) *AltRequestService {
	return &AltRequestService{
		requests:    requests,
		livestreams: livestreams,
		users:       users,
		logger:      logger,
	}
}

// Create opens a pending request for one snapshot. At most one pending
// request may exist per (livestream, snapshot).
func (s *AltRequestService) Create(ctx context.Context, livestreamID int64, snapshotID uuid.UUID, creator, note string) (*model.AltRequest, error) {
	exists, err := s.users.Exists(ctx, creator)
	if err != nil {
		return nil, fmt.Errorf("check creator: %w", err)
	}
	if !exists {
		return nil, &model.NotFoundError{Entity: "user", ID: creator}
	}

	ls, err := s.livestreams.GetByID(ctx, livestreamID)
	if err != nil {
		return nil, fmt.Errorf("get livestream: %w", err)
	}
	if ls == nil {
		return nil, &model.NotFoundError{Entity: "livestream", ID: strconv.FormatInt(livestreamID, 10)}
	}
	if ls.SnapshotByID(snapshotID) == nil {
		return nil, &model.NotFoundError{Entity: "snapshot", ID: snapshotID.String()}
	}

	pending, err := s.requests.GetPending(ctx, livestreamID, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("get pending request: %w", err)
	}
	if pending != nil {
		return nil, &model.ConflictError{
			Entity:  "alt request",
			Message: fmt.Sprintf("pending request %d already exists for snapshot %s", pending.ID, snapshotID),
		}
	}

	req := &model.AltRequest{
		LivestreamID: livestreamID,
		SnapshotID:   snapshotID,
		Creator:      creator,
		AltNote:      note,
		Status:       model.RequestStatusPending,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create alt request: %w", err)
	}

	s.logger.Info("Alt request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("livestream_id", livestreamID),
		zap.String("snapshot_id", snapshotID.String()),
		zap.String("creator", creator))

	return req, nil
}

// UpdateNote edits the note of a pending request; only the creator may.
func (s *AltRequestService) UpdateNote(ctx context.Context, id int64, requester, note string) (*model.AltRequest, error) {
	req, err := s.getPendingOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	req.AltNote = note
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update alt request: %w", err)
	}

	return req, nil
}

// Accept approves the request: the target is written onto the snapshot as
// its alt assignee together with the note, and the request becomes
// terminal. A concrete target user must exist and differ from the
// snapshot's current assignee; the "other" target disclaims attribution.
func (s *AltRequestService) Accept(ctx context.Context, id int64, target model.AltAssignee) (*model.AltRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, &model.ConflictError{
			Entity:  "alt request",
			Message: fmt.Sprintf("request %d is already %s", id, req.Status),
		}
	}
	if !target.IsSet() {
		return nil, &model.ValidationError{Entity: "alt request", Message: "accept requires a target"}
	}

	ls, err := s.livestreams.GetByID(ctx, req.LivestreamID)
	if err != nil {
		return nil, fmt.Errorf("get livestream: %w", err)
	}
	if ls == nil {
		return nil, &model.NotFoundError{Entity: "livestream", ID: strconv.FormatInt(req.LivestreamID, 10)}
	}
	if err := ls.EnsureMutable(); err != nil {
		return nil, err
	}

	snap := ls.SnapshotByID(req.SnapshotID)
	if snap == nil {
		return nil, &model.NotFoundError{Entity: "snapshot", ID: req.SnapshotID.String()}
	}

	if target.Kind == model.AltUser {
		exists, err := s.users.Exists(ctx, target.UserID)
		if err != nil {
			return nil, fmt.Errorf("check target user: %w", err)
		}
		if !exists {
			return nil, &model.NotFoundError{Entity: "user", ID: target.UserID}
		}
		if target.UserID == snap.Assignee {
			return nil, &model.ValidationError{
				Entity:  "alt request",
				Message: "target must differ from the snapshot's current assignee",
			}
		}
	}

	snap.AltAssignee = target
	snap.AltNote = req.AltNote
	if err := s.livestreams.Update(ctx, ls); err != nil {
		return nil, fmt.Errorf("update livestream: %w", err)
	}

	req.Status = model.RequestStatusAccepted
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update alt request: %w", err)
	}

	s.logger.Info("Alt request accepted",
		zap.Int64("request_id", id),
		zap.String("snapshot_id", req.SnapshotID.String()),
		zap.String("target_kind", string(target.Kind)),
		zap.String("target_user", target.UserID))

	return req, nil
}

// Reject marks the request rejected without touching the snapshot.
func (s *AltRequestService) Reject(ctx context.Context, id int64) (*model.AltRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, &model.ConflictError{
			Entity:  "alt request",
			Message: fmt.Sprintf("request %d is already %s", id, req.Status),
		}
	}

	req.Status = model.RequestStatusRejected
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update alt request: %w", err)
	}

	s.logger.Info("Alt request rejected", zap.Int64("request_id", id))
	return req, nil
}

// Delete withdraws a pending request; only the creator may.
func (s *AltRequestService) Delete(ctx context.Context, id int64, requester string) error {
	if _, err := s.getPendingOwned(ctx, id, requester); err != nil {
		return err
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete alt request: %w", err)
	}

	s.logger.Info("Alt request deleted",
		zap.Int64("request_id", id),
		zap.String("requester", requester))

	return nil
}

func (s *AltRequestService) getRequest(ctx context.Context, id int64) (*model.AltRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get alt request: %w", err)
	}
	if req == nil {
		return nil, &model.NotFoundError{Entity: "alt request", ID: strconv.FormatInt(id, 10)}
	}
	return req, nil
}

func (s *AltRequestService) getPendingOwned(ctx context.Context, id int64, requester string) (*model.AltRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, &model.ConflictError{
			Entity:  "alt request",
			Message: fmt.Sprintf("request %d is already %s", id, req.Status),
		}
	}
	if req.Creator != requester {
		return nil, &model.ValidationError{
			Entity:  "alt request",
			Message: "only the creator may modify a pending request",
		}
	}
	return req, nil
}
