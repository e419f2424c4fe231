package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory stores backing the service tests. They copy on read and write
// the way a database round-trip would, and the livestream store enforces
// the same optimistic version check as the real repository.

func testLogger() *zap.Logger { return zap.NewNop() }

type memPeriodStore struct {
	seq     int64
	periods map[int64]*model.Period
}

func newMemPeriodStore() *memPeriodStore {
	return &memPeriodStore{periods: make(map[int64]*model.Period)}
}

func (m *memPeriodStore) Create(_ context.Context, p *model.Period) error {
	m.seq++
	p.ID = m.seq
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.periods[p.ID] = &cp
	return nil
}

func (m *memPeriodStore) GetByID(_ context.Context, id int64) (*model.Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memPeriodStore) GetByChannel(_ context.Context, channelID string) ([]*model.Period, error) {
	var out []*model.Period
	for _, p := range m.periods {
		if p.ChannelID == channelID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Minutes() != out[j].StartTime.Minutes() {
			return out[i].StartTime.Minutes() < out[j].StartTime.Minutes()
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memPeriodStore) GetByChannelRole(ctx context.Context, channelID string, role model.Role) ([]*model.Period, error) {
	all, _ := m.GetByChannel(ctx, channelID)
	var out []*model.Period
	for _, p := range all {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPeriodStore) Update(_ context.Context, p *model.Period) error {
	if _, ok := m.periods[p.ID]; !ok {
		return fmt.Errorf("period %d not stored", p.ID)
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.periods[p.ID] = &cp
	return nil
}

func (m *memPeriodStore) Delete(_ context.Context, id int64) error {
	delete(m.periods, id)
	return nil
}

type memLivestreamStore struct {
	seq     int64
	streams map[int64]*model.Livestream
	writes  int
}

func newMemLivestreamStore() *memLivestreamStore {
	return &memLivestreamStore{streams: make(map[int64]*model.Livestream)}
}

func copyLivestream(ls *model.Livestream) *model.Livestream {
	cp := *ls
	cp.Snapshots = make([]model.Snapshot, len(ls.Snapshots))
	for i := range ls.Snapshots {
		cp.Snapshots[i] = ls.Snapshots[i]
		if ls.Snapshots[i].Salary != nil {
			salary := *ls.Snapshots[i].Salary
			cp.Snapshots[i].Salary = &salary
		}
	}
	return &cp
}

func (m *memLivestreamStore) Create(_ context.Context, ls *model.Livestream) error {
	m.seq++
	ls.ID = m.seq
	ls.Version = 1
	ls.CreatedAt = time.Now()
	ls.UpdatedAt = ls.CreatedAt
	m.streams[ls.ID] = copyLivestream(ls)
	return nil
}

func (m *memLivestreamStore) GetByID(_ context.Context, id int64) (*model.Livestream, error) {
	ls, ok := m.streams[id]
	if !ok {
		return nil, nil
	}
	return copyLivestream(ls), nil
}

func (m *memLivestreamStore) GetByDateChannel(_ context.Context, date time.Time, channelID string) (*model.Livestream, error) {
	for _, ls := range m.streams {
		if ls.Date.Equal(date) && ls.ChannelID == channelID {
			return copyLivestream(ls), nil
		}
	}
	return nil, nil
}

func (m *memLivestreamStore) GetByDate(_ context.Context, date time.Time, channelID string) ([]*model.Livestream, error) {
	var out []*model.Livestream
	for _, ls := range m.streams {
		if ls.Date.Equal(date) && (channelID == "" || ls.ChannelID == channelID) {
			out = append(out, copyLivestream(ls))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLivestreamStore) GetRange(_ context.Context, from, to time.Time, channelID string) ([]*model.Livestream, error) {
	var out []*model.Livestream
	for _, ls := range m.streams {
		if ls.Date.Before(from) || ls.Date.After(to) {
			continue
		}
		if channelID != "" && ls.ChannelID != channelID {
			continue
		}
		out = append(out, copyLivestream(ls))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLivestreamStore) GetByMonth(_ context.Context, year int, month time.Month, channelID string) ([]*model.Livestream, error) {
	var out []*model.Livestream
	for _, ls := range m.streams {
		if ls.Date.Year() != year || ls.Date.Month() != month {
			continue
		}
		if channelID != "" && ls.ChannelID != channelID {
			continue
		}
		out = append(out, copyLivestream(ls))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLivestreamStore) Update(_ context.Context, ls *model.Livestream) error {
	stored, ok := m.streams[ls.ID]
	if !ok {
		return fmt.Errorf("livestream %d not stored", ls.ID)
	}
	if stored.Version != ls.Version {
		return model.ErrConcurrentModification
	}
	ls.Version++
	ls.UpdatedAt = time.Now()
	m.streams[ls.ID] = copyLivestream(ls)
	m.writes++
	return nil
}

type memAltRequestStore struct {
	seq      int64
	requests map[int64]*model.AltRequest
}

func newMemAltRequestStore() *memAltRequestStore {
	return &memAltRequestStore{requests: make(map[int64]*model.AltRequest)}
}

func (m *memAltRequestStore) Create(_ context.Context, req *model.AltRequest) error {
	m.seq++
	req.ID = m.seq
	req.CreatedAt = time.Now()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memAltRequestStore) GetByID(_ context.Context, id int64) (*model.AltRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (m *memAltRequestStore) GetPending(_ context.Context, livestreamID int64, snapshotID uuid.UUID) (*model.AltRequest, error) {
	for _, req := range m.requests {
		if req.LivestreamID == livestreamID && req.SnapshotID == snapshotID && req.IsPending() {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAltRequestStore) Update(_ context.Context, req *model.AltRequest) error {
	if _, ok := m.requests[req.ID]; !ok {
		return fmt.Errorf("alt request %d not stored", req.ID)
	}
	now := time.Now()
	req.UpdatedAt = &now
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memAltRequestStore) Delete(_ context.Context, id int64) error {
	delete(m.requests, id)
	return nil
}

type memTierStore struct {
	seq   int64
	tiers map[int64]*model.PerformanceTier
}

func newMemTierStore() *memTierStore {
	return &memTierStore{tiers: make(map[int64]*model.PerformanceTier)}
}

func (m *memTierStore) Create(_ context.Context, tier *model.PerformanceTier) error {
	m.seq++
	tier.ID = m.seq
	tier.CreatedAt = time.Now()
	tier.UpdatedAt = tier.CreatedAt
	cp := *tier
	m.tiers[tier.ID] = &cp
	return nil
}

func (m *memTierStore) GetByID(_ context.Context, id int64) (*model.PerformanceTier, error) {
	tier, ok := m.tiers[id]
	if !ok {
		return nil, nil
	}
	cp := *tier
	return &cp, nil
}

func (m *memTierStore) GetByIDs(_ context.Context, ids []int64) ([]*model.PerformanceTier, error) {
	var out []*model.PerformanceTier
	for _, id := range ids {
		if tier, ok := m.tiers[id]; ok {
			cp := *tier
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinIncome < out[j].MinIncome })
	return out, nil
}

func (m *memTierStore) GetAll(_ context.Context) ([]*model.PerformanceTier, error) {
	var out []*model.PerformanceTier
	for _, tier := range m.tiers {
		cp := *tier
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinIncome < out[j].MinIncome })
	return out, nil
}

func (m *memTierStore) Update(_ context.Context, tier *model.PerformanceTier) error {
	if _, ok := m.tiers[tier.ID]; !ok {
		return fmt.Errorf("tier %d not stored", tier.ID)
	}
	cp := *tier
	m.tiers[tier.ID] = &cp
	return nil
}

func (m *memTierStore) Delete(_ context.Context, id int64) error {
	delete(m.tiers, id)
	return nil
}

type memSalaryConfigStore struct {
	seq     int64
	configs map[int64]*model.SalaryConfig
}

func newMemSalaryConfigStore() *memSalaryConfigStore {
	return &memSalaryConfigStore{configs: make(map[int64]*model.SalaryConfig)}
}

func copyConfig(cfg *model.SalaryConfig) *model.SalaryConfig {
	cp := *cfg
	cp.TierIDs = append([]int64(nil), cfg.TierIDs...)
	cp.EmployeeIDs = append([]string(nil), cfg.EmployeeIDs...)
	return &cp
}

func (m *memSalaryConfigStore) Create(_ context.Context, cfg *model.SalaryConfig) error {
	m.seq++
	cfg.ID = m.seq
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	m.configs[cfg.ID] = copyConfig(cfg)
	return nil
}

func (m *memSalaryConfigStore) GetByID(_ context.Context, id int64) (*model.SalaryConfig, error) {
	cfg, ok := m.configs[id]
	if !ok {
		return nil, nil
	}
	return copyConfig(cfg), nil
}

func (m *memSalaryConfigStore) GetByName(_ context.Context, name string) (*model.SalaryConfig, error) {
	for _, cfg := range m.configs {
		if cfg.Name == name {
			return copyConfig(cfg), nil
		}
	}
	return nil, nil
}

func (m *memSalaryConfigStore) GetByEmployee(_ context.Context, employeeID string) (*model.SalaryConfig, error) {
	for _, cfg := range m.configs {
		if cfg.HasEmployee(employeeID) {
			return copyConfig(cfg), nil
		}
	}
	return nil, nil
}

func (m *memSalaryConfigStore) GetAll(_ context.Context) ([]*model.SalaryConfig, error) {
	var out []*model.SalaryConfig
	for _, cfg := range m.configs {
		out = append(out, copyConfig(cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memSalaryConfigStore) Update(_ context.Context, cfg *model.SalaryConfig) error {
	if _, ok := m.configs[cfg.ID]; !ok {
		return fmt.Errorf("salary config %d not stored", cfg.ID)
	}
	m.configs[cfg.ID] = copyConfig(cfg)
	return nil
}

func (m *memSalaryConfigStore) Delete(_ context.Context, id int64) error {
	delete(m.configs, id)
	return nil
}

type memGoalStore struct {
	goals map[string]float64
}

func newMemGoalStore() *memGoalStore {
	return &memGoalStore{goals: make(map[string]float64)}
}

func goalKey(channelID string, year int, month time.Month) string {
	return fmt.Sprintf("%s/%d/%d", channelID, year, int(month))
}

func (m *memGoalStore) set(channelID string, year int, month time.Month, goal float64) {
	m.goals[goalKey(channelID, year, month)] = goal
}

func (m *memGoalStore) MonthlyGoal(_ context.Context, channelID string, year int, month time.Month) (float64, error) {
	return m.goals[goalKey(channelID, year, month)], nil
}

type memUserDirectory struct {
	users map[string]bool
}

func newMemUserDirectory(ids ...string) *memUserDirectory {
	m := &memUserDirectory{users: make(map[string]bool)}
	for _, id := range ids {
		m.users[id] = true
	}
	return m
}

func (m *memUserDirectory) Exists(_ context.Context, id string) (bool, error) {
	return m.users[id], nil
}

type memChannelDirectory struct {
	channels map[string]bool
}

func newMemChannelDirectory(ids ...string) *memChannelDirectory {
	m := &memChannelDirectory{channels: make(map[string]bool)}
	for _, id := range ids {
		m.channels[id] = true
	}
	return m
}

func (m *memChannelDirectory) Exists(_ context.Context, id string) (bool, error) {
	return m.channels[id], nil
}

func (m *memChannelDirectory) ListIDs(_ context.Context) ([]string, error) {
	var ids []string
	for id := range m.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func tod(hour, minute int) model.TimeOfDay {
	return model.TimeOfDay{Hour: hour, Minute: minute}
}
