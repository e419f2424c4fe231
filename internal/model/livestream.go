package model

import (
	"time"

	"github.com/google/uuid"
)

type AltKind string

const (
	AltUnset AltKind = "unset"
	AltUser  AltKind = "user"
	AltOther AltKind = "other"
)

// AltAssignee is the reassignment target written onto a snapshot when an
// alt request is accepted. It is a tagged value: unset, a concrete user, or
// "other", which explicitly disclaims individual attribution.
type AltAssignee struct {
	Kind   AltKind `json:"kind"`
	UserID string  `json:"user_id,omitempty"`
}

func AltAssigneeUser(userID string) AltAssignee {
	return AltAssignee{Kind: AltUser, UserID: userID}
}

func AltAssigneeOther() AltAssignee {
	return AltAssignee{Kind: AltOther}
}

func (a AltAssignee) IsSet() bool   { return a.Kind == AltUser || a.Kind == AltOther }
func (a AltAssignee) IsOther() bool { return a.Kind == AltOther }

// Salary is the compensation computed for one snapshot.
type Salary struct {
	SalaryPerHour   float64 `json:"salary_per_hour"`
	BonusPercentage float64 `json:"bonus_percentage"`
	Total           float64 `json:"total"`
}

// Snapshot is one day's materialized instance of a period. The period
// fields are denormalized at materialization time so the snapshot keeps its
// original window even after the period is edited or deleted.
type Snapshot struct {
	ID                 uuid.UUID   `json:"id"`
	PeriodID           int64       `json:"period_id"`
	ChannelID          string      `json:"channel_id"`
	Role               Role        `json:"role"`
	StartTime          TimeOfDay   `json:"start_time"`
	EndTime            TimeOfDay   `json:"end_time"`
	Assignee           string      `json:"assignee,omitempty"` // empty = unassigned
	AltAssignee        AltAssignee `json:"alt_assignee"`
	AltNote            string      `json:"alt_note,omitempty"`
	Income             float64     `json:"income"`
	RealIncome         float64     `json:"real_income"`
	AdsCost            float64     `json:"ads_cost"`
	Orders             int         `json:"orders"`
	Comments           int         `json:"comments"`
	ClickRate          float64     `json:"click_rate"`
	AvgViewingDuration float64     `json:"avg_viewing_duration"`
	SnapshotKpi        float64     `json:"snapshot_kpi"`
	Salary             *Salary     `json:"salary,omitempty"`
}

// Beneficiary resolves who is credited for this snapshot's numbers.
// Priority: altAssignee (unless "other"), then assignee. ok is false when
// nobody is individually credited, including the "other" case.
func (s *Snapshot) Beneficiary() (userID string, ok bool) {
	switch s.AltAssignee.Kind {
	case AltUser:
		return s.AltAssignee.UserID, true
	case AltOther:
		return "", false
	}
	if s.Assignee != "" {
		return s.Assignee, true
	}
	return "", false
}

// DurationHours is the window length in hours, used for hourly pay.
func (s *Snapshot) DurationHours() float64 {
	start, end := s.StartTime.Minutes(), s.EndTime.Minutes()
	if end < start {
		end += 24 * 60
	}
	return float64(end-start) / 60
}

// Livestream is the per-day, per-channel container of snapshots plus
// day-level totals. Once Fixed is true the livestream is frozen and every
// mutating path must refuse it.
type Livestream struct {
	ID          int64      `json:"id"`
	Date        time.Time  `json:"date"` // local midnight
	ChannelID   string     `json:"channel_id"`
	Snapshots   []Snapshot `json:"snapshots"`
	TotalOrders int        `json:"total_orders"`
	AdsCost     float64    `json:"ads_cost"`
	TotalIncome float64    `json:"total_income"`
	DateKpi     float64    `json:"date_kpi"`
	Fixed       bool       `json:"fixed"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EnsureMutable is the single frozen-state guard shared by every mutating
// path (snapshot edits, synchronization, reconciliation).
func (l *Livestream) EnsureMutable() error {
	if l.Fixed {
		return ErrFrozen
	}
	return nil
}

// RecomputeTotalIncome refreshes the derived day total from the snapshots.
func (l *Livestream) RecomputeTotalIncome() {
	var total float64
	for i := range l.Snapshots {
		total += l.Snapshots[i].Income
	}
	l.TotalIncome = total
}

// SnapshotByID returns a pointer into the snapshot list, or nil.
func (l *Livestream) SnapshotByID(id uuid.UUID) *Snapshot {
	for i := range l.Snapshots {
		if l.Snapshots[i].ID == id {
			return &l.Snapshots[i]
		}
	}
	return nil
}
