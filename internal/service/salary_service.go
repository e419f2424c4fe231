package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Per-snapshot outcome of a compensation run.
const (
	SalaryStatusUpdated       = "updated"
	SalaryStatusSkipped       = "skipped"
	SalaryStatusNoConfig      = "no_salary_config"
	SalaryStatusNoPerformance = "no_performance_found"
)

// SnapshotSalaryResult is the detail line for one snapshot in a daily run.
type SnapshotSalaryResult struct {
	LivestreamID int64         `json:"livestream_id"`
	SnapshotID   uuid.UUID     `json:"snapshot_id"`
	ChannelID    string        `json:"channel_id"`
	Beneficiary  string        `json:"beneficiary,omitempty"`
	IncomeValue  float64       `json:"income_value"`
	Status       string        `json:"status"`
	Salary       *model.Salary `json:"salary,omitempty"`
}

// BeneficiaryTotal is one row of the monthly payroll report.
type BeneficiaryTotal struct {
	UserID string  `json:"user_id"`
	Total  float64 `json:"total"`
}

// SalaryService administers performance tiers and salary configs and
// computes tiered hourly+bonus compensation from reconciled numbers.
type SalaryService struct {
	tiers       TierStore
	configs     SalaryConfigStore
	livestreams LivestreamStore
	logger      *zap.Logger
}

func NewSalaryService(tiers TierStore, configs SalaryConfigStore, livestreams LivestreamStore, logger *zap.Logger) *SalaryService {
	return &SalaryService{
		tiers:       tiers,
		configs:     configs,
		livestreams: livestreams,
		logger:      logger,
	}
}

// CreateTier registers a performance tier. An identical quadruple of
// min/max/rate/bonus is rejected globally.
func (s *SalaryService) CreateTier(ctx context.Context, tier *model.PerformanceTier) (*model.PerformanceTier, error) {
	if err := s.validateTier(ctx, tier, 0); err != nil {
		return nil, err
	}

	if err := s.tiers.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}

	s.logger.Info("Performance tier created",
		zap.Int64("tier_id", tier.ID),
		zap.Float64("min_income", tier.MinIncome),
		zap.Float64("max_income", tier.MaxIncome))

	return tier, nil
}

// UpdateTier changes an existing tier under the same validation rules.
func (s *SalaryService) UpdateTier(ctx context.Context, tier *model.PerformanceTier) (*model.PerformanceTier, error) {
	existing, err := s.tiers.GetByID(ctx, tier.ID)
	if err != nil {
		return nil, fmt.Errorf("get tier: %w", err)
	}
	if existing == nil {
		return nil, &model.NotFoundError{Entity: "performance tier", ID: strconv.FormatInt(tier.ID, 10)}
	}

	if err := s.validateTier(ctx, tier, tier.ID); err != nil {
		return nil, err
	}

	if err := s.tiers.Update(ctx, tier); err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}

	return tier, nil
}

// DeleteTier removes a tier.
func (s *SalaryService) DeleteTier(ctx context.Context, id int64) error {
	tier, err := s.tiers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get tier: %w", err)
	}
	if tier == nil {
		return &model.NotFoundError{Entity: "performance tier", ID: strconv.FormatInt(id, 10)}
	}

	if err := s.tiers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tier: %w", err)
	}
	return nil
}

// ListTiers returns every tier.
func (s *SalaryService) ListTiers(ctx context.Context) ([]*model.PerformanceTier, error) {
	return s.tiers.GetAll(ctx)
}

func (s *SalaryService) validateTier(ctx context.Context, tier *model.PerformanceTier, excludeID int64) error {
	if tier.MinIncome >= tier.MaxIncome {
		return &model.ValidationError{
			Entity:  "performance tier",
			Message: fmt.Sprintf("min income %v must be below max income %v", tier.MinIncome, tier.MaxIncome),
		}
	}

	all, err := s.tiers.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("get tiers: %w", err)
	}
	for _, other := range all {
		if other.ID == excludeID {
			continue
		}
		if tier.SameQuadruple(other) {
			return &model.ValidationError{
				Entity:  "performance tier",
				Message: fmt.Sprintf("identical tier %d already exists", other.ID),
			}
		}
	}
	return nil
}

// CreateConfig registers a salary config: unique name, non-overlapping
// member tiers, and employees not already grouped elsewhere.
func (s *SalaryService) CreateConfig(ctx context.Context, cfg *model.SalaryConfig) (*model.SalaryConfig, error) {
	if err := s.validateConfig(ctx, cfg, 0); err != nil {
		return nil, err
	}

	if err := s.configs.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("create salary config: %w", err)
	}

	s.logger.Info("Salary config created",
		zap.Int64("config_id", cfg.ID),
		zap.String("name", cfg.Name),
		zap.Int("tiers", len(cfg.TierIDs)),
		zap.Int("employees", len(cfg.EmployeeIDs)))

	return cfg, nil
}

// UpdateConfig changes an existing config under the same validation rules.
func (s *SalaryService) UpdateConfig(ctx context.Context, cfg *model.SalaryConfig) (*model.SalaryConfig, error) {
	existing, err := s.configs.GetByID(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("get salary config: %w", err)
	}
	if existing == nil {
		return nil, &model.NotFoundError{Entity: "salary config", ID: strconv.FormatInt(cfg.ID, 10)}
	}

	if err := s.validateConfig(ctx, cfg, cfg.ID); err != nil {
		return nil, err
	}

	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("update salary config: %w", err)
	}
	return cfg, nil
}

// DeleteConfig removes a config, releasing its employees.
func (s *SalaryService) DeleteConfig(ctx context.Context, id int64) error {
	cfg, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get salary config: %w", err)
	}
	if cfg == nil {
		return &model.NotFoundError{Entity: "salary config", ID: strconv.FormatInt(id, 10)}
	}

	if err := s.configs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete salary config: %w", err)
	}
	return nil
}

// ListConfigs returns every config.
func (s *SalaryService) ListConfigs(ctx context.Context) ([]*model.SalaryConfig, error) {
	return s.configs.GetAll(ctx)
}

func (s *SalaryService) validateConfig(ctx context.Context, cfg *model.SalaryConfig, excludeID int64) error {
	if cfg.Name == "" {
		return &model.ValidationError{Entity: "salary config", Message: "name is required"}
	}

	byName, err := s.configs.GetByName(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("get config by name: %w", err)
	}
	if byName != nil && byName.ID != excludeID {
		return &model.ConflictError{
			Entity:  "salary config",
			Message: fmt.Sprintf("name %q already used by config %d", cfg.Name, byName.ID),
		}
	}

	tiers, err := s.tiers.GetByIDs(ctx, cfg.TierIDs)
	if err != nil {
		return fmt.Errorf("get tiers: %w", err)
	}
	if len(tiers) != len(cfg.TierIDs) {
		return &model.NotFoundError{Entity: "performance tier", ID: "one or more referenced tiers"}
	}
	for i := 0; i < len(tiers); i++ {
		for j := i + 1; j < len(tiers); j++ {
			if tiers[i].OverlapsRange(tiers[j]) {
				return &model.ValidationError{
					Entity: "salary config",
					Message: fmt.Sprintf("tiers %d and %d have overlapping income ranges",
						tiers[i].ID, tiers[j].ID),
				}
			}
		}
	}

	for _, employeeID := range cfg.EmployeeIDs {
		owner, err := s.configs.GetByEmployee(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("get config by employee: %w", err)
		}
		if owner != nil && owner.ID != excludeID {
			return &model.ConflictError{
				Entity:  "salary config",
				Message: fmt.Sprintf("employee %s already belongs to config %q", employeeID, owner.Name),
			}
		}
	}

	return nil
}

// CalculateDaily computes and persists per-snapshot salary for one date.
// With useRealIncome the reconciled number is authoritative; otherwise the
// reconciled number is preferred when present, falling back to the manually
// reported income. Fixed livestreams are left untouched.
func (s *SalaryService) CalculateDaily(ctx context.Context, date time.Time, channelID string, useRealIncome bool) ([]SnapshotSalaryResult, error) {
	streams, err := s.livestreams.GetByDate(ctx, NormalizeDate(date), channelID)
	if err != nil {
		return nil, fmt.Errorf("get livestreams: %w", err)
	}

	var results []SnapshotSalaryResult
	for _, ls := range streams {
		if ls.EnsureMutable() != nil {
			s.logger.Warn("Skipping fixed livestream",
				zap.Int64("livestream_id", ls.ID))
			continue
		}

		changed := false
		for i := range ls.Snapshots {
			res := s.calculateSnapshot(ctx, ls, &ls.Snapshots[i], useRealIncome)
			if res.Status == SalaryStatusUpdated {
				changed = true
			}
			results = append(results, res)
		}

		if changed {
			if err := s.livestreams.Update(ctx, ls); err != nil {
				return results, fmt.Errorf("update livestream %d: %w", ls.ID, err)
			}
		}
	}

	s.logger.Info("Daily compensation calculated",
		zap.String("date", NormalizeDate(date).Format("2006-01-02")),
		zap.Bool("use_real_income", useRealIncome),
		zap.Int("snapshots", len(results)))

	return results, nil
}

func (s *SalaryService) calculateSnapshot(ctx context.Context, ls *model.Livestream, snap *model.Snapshot, useRealIncome bool) SnapshotSalaryResult {
	res := SnapshotSalaryResult{
		LivestreamID: ls.ID,
		SnapshotID:   snap.ID,
		ChannelID:    ls.ChannelID,
	}

	incomeValue := snap.RealIncome
	if !useRealIncome && snap.RealIncome == 0 {
		incomeValue = snap.Income
	}
	res.IncomeValue = incomeValue

	beneficiary, ok := snap.Beneficiary()
	if !ok {
		res.Status = SalaryStatusSkipped
		return res
	}
	res.Beneficiary = beneficiary

	if incomeValue <= 0 {
		res.Status = SalaryStatusSkipped
		return res
	}

	cfg, err := s.configs.GetByEmployee(ctx, beneficiary)
	if err != nil {
		s.logger.Error("Failed to look up salary config",
			zap.String("beneficiary", beneficiary),
			zap.Error(err))
		res.Status = SalaryStatusSkipped
		return res
	}
	if cfg == nil {
		res.Status = SalaryStatusNoConfig
		return res
	}

	tiers, err := s.tiers.GetByIDs(ctx, cfg.TierIDs)
	if err != nil {
		s.logger.Error("Failed to load tiers",
			zap.Int64("config_id", cfg.ID),
			zap.Error(err))
		res.Status = SalaryStatusSkipped
		return res
	}

	var tier *model.PerformanceTier
	for _, t := range tiers {
		if t.MatchesIncome(incomeValue) {
			tier = t
			break
		}
	}
	if tier == nil {
		res.Status = SalaryStatusNoPerformance
		return res
	}

	total := decimal.NewFromFloat(tier.SalaryPerHour).
		Mul(decimal.NewFromFloat(snap.DurationHours())).
		Add(decimal.NewFromFloat(incomeValue).
			Mul(decimal.NewFromFloat(tier.BonusPercentage)).
			Div(decimal.NewFromInt(100)))

	snap.Salary = &model.Salary{
		SalaryPerHour:   tier.SalaryPerHour,
		BonusPercentage: tier.BonusPercentage,
		Total:           roundMoney(total.InexactFloat64()),
	}
	res.Salary = snap.Salary
	res.Status = SalaryStatusUpdated
	return res
}

// CalculateMonthly aggregates persisted salary totals per beneficiary over
// the month, optionally for one channel, excluding snapshots whose
// attribution is disclaimed. Results are sorted by total, descending.
func (s *SalaryService) CalculateMonthly(ctx context.Context, year int, month time.Month, channelID string) ([]BeneficiaryTotal, error) {
	streams, err := s.livestreams.GetByMonth(ctx, year, month, channelID)
	if err != nil {
		return nil, fmt.Errorf("get livestreams: %w", err)
	}

	totals := make(map[string]float64)
	for _, ls := range streams {
		for i := range ls.Snapshots {
			snap := &ls.Snapshots[i]
			if snap.Salary == nil {
				continue
			}
			beneficiary, ok := snap.Beneficiary()
			if !ok {
				continue
			}
			totals[beneficiary] += snap.Salary.Total
		}
	}

	report := make([]BeneficiaryTotal, 0, len(totals))
	for userID, total := range totals {
		report = append(report, BeneficiaryTotal{UserID: userID, Total: total})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Total != report[j].Total {
			return report[i].Total > report[j].Total
		}
		return report[i].UserID < report[j].UserID
	})

	s.logger.Info("Monthly compensation aggregated",
		zap.Int("year", year),
		zap.String("month", month.String()),
		zap.String("channel_id", channelID),
		zap.Int("beneficiaries", len(report)))

	return report, nil
}
