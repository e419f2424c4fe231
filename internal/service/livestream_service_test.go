package service

import (
	"context"
	"testing"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type livestreamFixture struct {
	svc     *LivestreamService
	streams *memLivestreamStore
	periods *memPeriodStore
	goals   *memGoalStore
}

func newLivestreamFixture(channels ...string) *livestreamFixture {
	streams := newMemLivestreamStore()
	periods := newMemPeriodStore()
	goals := newMemGoalStore()
	svc := NewLivestreamService(streams, periods, goals, newMemChannelDirectory(channels...), testLogger())
	return &livestreamFixture{svc: svc, streams: streams, periods: periods, goals: goals}
}

func (f *livestreamFixture) addPeriod(t *testing.T, channelID string, role model.Role, start, end model.TimeOfDay) *model.Period {
	t.Helper()
	p := &model.Period{ChannelID: channelID, Role: role, StartTime: start, EndTime: end}
	require.NoError(t, f.periods.Create(context.Background(), p))
	return p
}

func day(yearDay string) time.Time {
	d, err := time.Parse("2006-01-02", yearDay)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMaterialize(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(9, 30), tod(10, 30))
	// March has 31 days: 62,000,000 / 31 = 2,000,000 per date
	f.goals.set("ch1", 2025, time.March, 62_000_000)

	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	assert.InDelta(t, 2_000_000, ls.DateKpi, 1e-9)
	require.Len(t, ls.Snapshots, 2)
	for _, snap := range ls.Snapshots {
		assert.InDelta(t, 1_000_000, snap.SnapshotKpi, 1e-9)
		assert.Zero(t, snap.Income)
		assert.Empty(t, snap.Assignee)
		assert.Equal(t, model.AltUnset, snap.AltAssignee.Kind)
	}
	assert.Equal(t, model.RoleHost, ls.Snapshots[0].Role)
	assert.Equal(t, tod(9, 0), ls.Snapshots[0].StartTime)
}

func TestMaterializeKpiRounding(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleHost, tod(14, 0), tod(16, 0))
	f.addPeriod(t, "ch1", model.RoleHost, tod(19, 0), tod(21, 0))
	// April has 30 days: 50,000,000 / 30 = 1,666,666.67 -> 1,667,000
	f.goals.set("ch1", 2025, time.April, 50_000_000)

	ls, err := f.svc.Materialize(ctx, day("2025-04-10"), "ch1")
	require.NoError(t, err)

	assert.InDelta(t, 1_667_000, ls.DateKpi, 1e-9)
	// 1,667,000 / 3 = 555,666.67 -> 556,000
	assert.InDelta(t, 556_000, ls.Snapshots[0].SnapshotKpi, 1e-9)
}

func TestMaterializeWithoutGoal(t *testing.T) {
	f := newLivestreamFixture("ch1")

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))

	ls, err := f.svc.Materialize(context.Background(), day("2025-03-05"), "ch1")
	require.NoError(t, err)
	assert.Zero(t, ls.DateKpi)
	assert.Zero(t, ls.Snapshots[0].SnapshotKpi)
}

func TestMaterializeDuplicate(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	_, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	_, err = f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	assert.ErrorIs(t, err, model.ErrConflict)

	// other date and other channel are fine
	_, err = f.svc.Materialize(ctx, day("2025-03-06"), "ch1")
	assert.NoError(t, err)
}

func TestMaterializeUnknownChannel(t *testing.T) {
	f := newLivestreamFixture("ch1")

	_, err := f.svc.Materialize(context.Background(), day("2025-03-05"), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	_, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	f.addPeriod(t, "ch1", model.RoleAssistant, tod(9, 30), tod(10, 30))

	updated, err := f.svc.Synchronize(ctx, day("2025-03-01"), day("2025-03-07"), "ch1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	writesAfterFirst := f.streams.writes
	updated, err = f.svc.Synchronize(ctx, day("2025-03-01"), day("2025-03-07"), "ch1")
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Equal(t, writesAfterFirst, f.streams.writes, "second run must not write")
}

func TestSynchronizePreservesRecordedData(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	host := f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)
	snapID := ls.Snapshots[0].ID

	assignee := "u1"
	income := 500_000.0
	_, err = f.svc.UpdateSnapshot(ctx, ls.ID, snapID, SnapshotUpdate{Assignee: &assignee, Income: &income})
	require.NoError(t, err)

	// window change on the source period
	host.EndTime = tod(12, 0)
	require.NoError(t, f.periods.Update(ctx, host))

	updated, err := f.svc.Synchronize(ctx, day("2025-03-05"), day("2025-03-05"), "ch1")
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got, err := f.svc.GetByID(ctx, ls.ID)
	require.NoError(t, err)
	require.Len(t, got.Snapshots, 1)
	assert.Equal(t, snapID, got.Snapshots[0].ID, "snapshot identity survives")
	assert.Equal(t, "u1", got.Snapshots[0].Assignee)
	assert.InDelta(t, 500_000, got.Snapshots[0].Income, 1e-9)
	assert.Equal(t, tod(12, 0), got.Snapshots[0].EndTime, "window refreshed")
}

func TestSynchronizeDropsOrphanSnapshots(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	host := f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(14, 0), tod(16, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)
	require.Len(t, ls.Snapshots, 2)

	require.NoError(t, f.periods.Delete(ctx, host.ID))

	updated, err := f.svc.Synchronize(ctx, day("2025-03-05"), day("2025-03-05"), "ch1")
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got, err := f.svc.GetByID(ctx, ls.ID)
	require.NoError(t, err)
	require.Len(t, got.Snapshots, 1)
	assert.Equal(t, model.RoleAssistant, got.Snapshots[0].Role)
}

func TestSynchronizeSkipsFixed(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)
	_, err = f.svc.SetFixed(ctx, ls.ID, true)
	require.NoError(t, err)

	f.addPeriod(t, "ch1", model.RoleAssistant, tod(14, 0), tod(16, 0))

	updated, err := f.svc.Synchronize(ctx, day("2025-03-05"), day("2025-03-05"), "ch1")
	require.NoError(t, err)
	assert.Zero(t, updated)

	got, err := f.svc.GetByID(ctx, ls.ID)
	require.NoError(t, err)
	assert.Len(t, got.Snapshots, 1)
}

func TestSetFixedBlocksAndReleasesMutation(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	_, err = f.svc.SetFixed(ctx, ls.ID, true)
	require.NoError(t, err)

	income := 100_000.0
	_, err = f.svc.UpdateSnapshot(ctx, ls.ID, ls.Snapshots[0].ID, SnapshotUpdate{Income: &income})
	assert.ErrorIs(t, err, model.ErrFrozen)

	// unfreezing is allowed on a fixed livestream
	_, err = f.svc.SetFixed(ctx, ls.ID, false)
	require.NoError(t, err)

	_, err = f.svc.UpdateSnapshot(ctx, ls.ID, ls.Snapshots[0].ID, SnapshotUpdate{Income: &income})
	assert.NoError(t, err)
}

func TestUpdateSnapshotPropagatesHostDeltas(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(9, 30), tod(10, 30))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(12, 0), tod(13, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	var hostID, containedID, outsideID uuid.UUID
	for _, snap := range ls.Snapshots {
		switch {
		case snap.Role == model.RoleHost:
			hostID = snap.ID
		case snap.StartTime == tod(9, 30):
			containedID = snap.ID
		default:
			outsideID = snap.ID
		}
	}

	income := 1_000_000.0
	got, err := f.svc.UpdateSnapshot(ctx, ls.ID, hostID, SnapshotUpdate{Income: &income})
	require.NoError(t, err)
	assert.InDelta(t, 1_000_000, got.SnapshotByID(containedID).Income, 1e-9)
	assert.Zero(t, got.SnapshotByID(outsideID).Income)

	// a second edit propagates only the delta
	income = 1_500_000.0
	got, err = f.svc.UpdateSnapshot(ctx, ls.ID, hostID, SnapshotUpdate{Income: &income})
	require.NoError(t, err)
	assert.InDelta(t, 1_500_000, got.SnapshotByID(hostID).Income, 1e-9)
	assert.InDelta(t, 1_500_000, got.SnapshotByID(containedID).Income, 1e-9)
	assert.Zero(t, got.SnapshotByID(outsideID).Income)
}

func TestUpdateSnapshotAssigneeDoesNotPropagate(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(9, 30), tod(10, 30))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	var hostID, assistantID uuid.UUID
	for _, snap := range ls.Snapshots {
		if snap.Role == model.RoleHost {
			hostID = snap.ID
		} else {
			assistantID = snap.ID
		}
	}

	assignee := "u1"
	got, err := f.svc.UpdateSnapshot(ctx, ls.ID, hostID, SnapshotUpdate{Assignee: &assignee})
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SnapshotByID(hostID).Assignee)
	assert.Empty(t, got.SnapshotByID(assistantID).Assignee)
}

func TestUpdateSnapshotRefreshesTotalIncome(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleHost, tod(14, 0), tod(16, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	income := 300_000.0
	got, err := f.svc.UpdateSnapshot(ctx, ls.ID, ls.Snapshots[0].ID, SnapshotUpdate{Income: &income})
	require.NoError(t, err)
	assert.InDelta(t, 300_000, got.TotalIncome, 1e-9)

	income = 200_000.0
	got, err = f.svc.UpdateSnapshot(ctx, ls.ID, ls.Snapshots[1].ID, SnapshotUpdate{Income: &income})
	require.NoError(t, err)
	assert.InDelta(t, 500_000, got.TotalIncome, 1e-9)
}

func TestAddSnapshot(t *testing.T) {
	f := newLivestreamFixture("ch1", "ch2")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	extra := f.addPeriod(t, "ch1", model.RoleAssistant, tod(14, 0), tod(16, 0))
	got, err := f.svc.AddSnapshot(ctx, ls.ID, extra.ID, "u1", 250_000)
	require.NoError(t, err)
	require.Len(t, got.Snapshots, 2)
	assert.Equal(t, "u1", got.Snapshots[1].Assignee)
	assert.InDelta(t, 250_000, got.TotalIncome, 1e-9)
}

func TestAddSnapshotResharesKpi(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	// March has 31 days: 62,000,000 / 31 = 2,000,000 per date
	f.goals.set("ch1", 2025, time.March, 62_000_000)
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)
	require.InDelta(t, 2_000_000, ls.Snapshots[0].SnapshotKpi, 1e-9)

	extra := f.addPeriod(t, "ch1", model.RoleAssistant, tod(14, 0), tod(16, 0))
	got, err := f.svc.AddSnapshot(ctx, ls.ID, extra.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, got.Snapshots, 2)
	for _, snap := range got.Snapshots {
		assert.InDelta(t, 1_000_000, snap.SnapshotKpi, 1e-9, "shares sum back to the date KPI")
	}
}

func TestAddSnapshotRejectsForeignChannelPeriod(t *testing.T) {
	f := newLivestreamFixture("ch1", "ch2")
	ctx := context.Background()

	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)
	foreign := f.addPeriod(t, "ch2", model.RoleHost, tod(9, 0), tod(11, 0))

	_, err = f.svc.AddSnapshot(ctx, ls.ID, foreign.ID, "", 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAddSnapshotRejectsSameRoleOverlap(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	colliding := f.addPeriod(t, "ch1", model.RoleHost, tod(10, 0), tod(12, 0))
	_, err = f.svc.AddSnapshot(ctx, ls.ID, colliding.ID, "", 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRemoveSnapshot(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	f.addPeriod(t, "ch1", model.RoleAssistant, tod(14, 0), tod(16, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveSnapshot(ctx, ls.ID, ls.Snapshots[0].ID))

	got, err := f.svc.GetByID(ctx, ls.ID)
	require.NoError(t, err)
	assert.Len(t, got.Snapshots, 1)

	err = f.svc.RemoveSnapshot(ctx, ls.ID, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConcurrentUpdateDetected(t *testing.T) {
	f := newLivestreamFixture("ch1")
	ctx := context.Background()

	f.addPeriod(t, "ch1", model.RoleHost, tod(9, 0), tod(11, 0))
	ls, err := f.svc.Materialize(ctx, day("2025-03-05"), "ch1")
	require.NoError(t, err)

	stale, err := f.streams.GetByID(ctx, ls.ID)
	require.NoError(t, err)

	income := 100_000.0
	_, err = f.svc.UpdateSnapshot(ctx, ls.ID, ls.Snapshots[0].ID, SnapshotUpdate{Income: &income})
	require.NoError(t, err)

	err = f.streams.Update(ctx, stale)
	assert.ErrorIs(t, err, model.ErrConcurrentModification)
}
