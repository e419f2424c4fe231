package repository

import (
	"context"
	"fmt"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TierRepository manages performance tiers.
type TierRepository struct {
	*base.Repository
}

func NewTierRepository(pool *pgxpool.Pool) *TierRepository {
	return &TierRepository{Repository: base.NewRepository(pool)}
}

const tierColumns = `id, min_income, max_income, salary_per_hour, bonus_percentage, created_at, updated_at`

// Create inserts a new tier.
func (r *TierRepository) Create(ctx context.Context, tier *model.PerformanceTier) error {
	query := `
		INSERT INTO performance_tiers (min_income, max_income, salary_per_hour, bonus_percentage)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		tier.MinIncome,
		tier.MaxIncome,
		tier.SalaryPerHour,
		tier.BonusPercentage,
	).Scan(&tier.ID, &tier.CreatedAt, &tier.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create performance tier: %w", err)
	}

	return nil
}

// GetByID fetches one tier, (nil, nil) when missing.
func (r *TierRepository) GetByID(ctx context.Context, id int64) (*model.PerformanceTier, error) {
	query := `SELECT ` + tierColumns + ` FROM performance_tiers WHERE id = $1`

	tier, err := scanTier(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get performance tier by id: %w", err)
	}

	return tier, nil
}

// GetByIDs fetches the tiers for a set of ids, ordered by min income.
func (r *TierRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.PerformanceTier, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + tierColumns + `
		FROM performance_tiers
		WHERE id = ANY($1)
		ORDER BY min_income
	`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get performance tiers by ids: %w", err)
	}
	defer rows.Close()

	return collectTiers(rows)
}

// GetAll returns every tier ordered by min income.
func (r *TierRepository) GetAll(ctx context.Context) ([]*model.PerformanceTier, error) {
	query := `SELECT ` + tierColumns + ` FROM performance_tiers ORDER BY min_income`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all performance tiers: %w", err)
	}
	defer rows.Close()

	return collectTiers(rows)
}

// Update rewrites a tier.
func (r *TierRepository) Update(ctx context.Context, tier *model.PerformanceTier) error {
	query := `
		UPDATE performance_tiers
		SET min_income = $2, max_income = $3, salary_per_hour = $4, bonus_percentage = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		tier.ID,
		tier.MinIncome,
		tier.MaxIncome,
		tier.SalaryPerHour,
		tier.BonusPercentage,
	).Scan(&tier.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update performance tier: %w", err)
	}

	return nil
}

// Delete removes a tier.
func (r *TierRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM performance_tiers WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("delete performance tier: %w", err)
	}

	return nil
}

func scanTier(row pgx.Row) (*model.PerformanceTier, error) {
	tier := &model.PerformanceTier{}
	err := row.Scan(
		&tier.ID,
		&tier.MinIncome,
		&tier.MaxIncome,
		&tier.SalaryPerHour,
		&tier.BonusPercentage,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tier, nil
}

func collectTiers(rows pgx.Rows) ([]*model.PerformanceTier, error) {
	var tiers []*model.PerformanceTier
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan performance tier: %w", err)
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// SalaryConfigRepository manages compensation groups. Tier and employee
// membership are stored as array columns.
type SalaryConfigRepository struct {
	*base.Repository
}

func NewSalaryConfigRepository(pool *pgxpool.Pool) *SalaryConfigRepository {
	return &SalaryConfigRepository{Repository: base.NewRepository(pool)}
}

const configColumns = `id, name, tier_ids, employee_ids, created_at, updated_at`

// Create inserts a new config.
func (r *SalaryConfigRepository) Create(ctx context.Context, cfg *model.SalaryConfig) error {
	query := `
		INSERT INTO salary_configs (name, tier_ids, employee_ids)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		cfg.Name,
		cfg.TierIDs,
		cfg.EmployeeIDs,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create salary config: %w", err)
	}

	return nil
}

// GetByID fetches one config, (nil, nil) when missing.
func (r *SalaryConfigRepository) GetByID(ctx context.Context, id int64) (*model.SalaryConfig, error) {
	query := `SELECT ` + configColumns + ` FROM salary_configs WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByName fetches one config by its unique name.
func (r *SalaryConfigRepository) GetByName(ctx context.Context, name string) (*model.SalaryConfig, error) {
	query := `SELECT ` + configColumns + ` FROM salary_configs WHERE name = $1`
	return r.getOne(ctx, query, name)
}

// GetByEmployee fetches the config an employee belongs to, if any.
func (r *SalaryConfigRepository) GetByEmployee(ctx context.Context, employeeID string) (*model.SalaryConfig, error) {
	query := `SELECT ` + configColumns + ` FROM salary_configs WHERE $1 = ANY(employee_ids)`
	return r.getOne(ctx, query, employeeID)
}

// GetAll returns every config ordered by name.
func (r *SalaryConfigRepository) GetAll(ctx context.Context) ([]*model.SalaryConfig, error) {
	query := `SELECT ` + configColumns + ` FROM salary_configs ORDER BY name`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all salary configs: %w", err)
	}
	defer rows.Close()

	var configs []*model.SalaryConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salary config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// Update rewrites a config.
func (r *SalaryConfigRepository) Update(ctx context.Context, cfg *model.SalaryConfig) error {
	query := `
		UPDATE salary_configs
		SET name = $2, tier_ids = $3, employee_ids = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, cfg.ID, cfg.Name, cfg.TierIDs, cfg.EmployeeIDs).Scan(&cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update salary config: %w", err)
	}

	return nil
}

// Delete removes a config.
func (r *SalaryConfigRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM salary_configs WHERE id = $1`

	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("delete salary config: %w", err)
	}

	return nil
}

func (r *SalaryConfigRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.SalaryConfig, error) {
	cfg, err := scanConfig(r.QueryRow(ctx, query, arg))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get salary config: %w", err)
	}
	return cfg, nil
}

func scanConfig(row pgx.Row) (*model.SalaryConfig, error) {
	cfg := &model.SalaryConfig{}
	err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.TierIDs,
		&cfg.EmployeeIDs,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
