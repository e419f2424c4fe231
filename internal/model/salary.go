package model

import "time"

// PerformanceTier maps an income bracket [MinIncome, MaxIncome) to an
// hourly rate and bonus percentage.
type PerformanceTier struct {
	ID              int64     `json:"id"`
	MinIncome       float64   `json:"min_income"`
	MaxIncome       float64   `json:"max_income"`
	SalaryPerHour   float64   `json:"salary_per_hour"`
	BonusPercentage float64   `json:"bonus_percentage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MatchesIncome reports whether the income falls inside the tier bracket.
func (t *PerformanceTier) MatchesIncome(income float64) bool {
	return t.MinIncome <= income && income < t.MaxIncome
}

// SameQuadruple reports whether two tiers carry identical values; such
// duplicates are rejected globally.
func (t *PerformanceTier) SameQuadruple(o *PerformanceTier) bool {
	return t.MinIncome == o.MinIncome &&
		t.MaxIncome == o.MaxIncome &&
		t.SalaryPerHour == o.SalaryPerHour &&
		t.BonusPercentage == o.BonusPercentage
}

// OverlapsRange reports whether two tiers' income brackets intersect.
func (t *PerformanceTier) OverlapsRange(o *PerformanceTier) bool {
	return t.MinIncome < o.MaxIncome && o.MinIncome < t.MaxIncome
}

// SalaryConfig is a named compensation group: a set of non-overlapping
// tiers shared by a set of employees. An employee belongs to at most one
// config at a time.
type SalaryConfig struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	TierIDs     []int64   `json:"tier_ids"`
	EmployeeIDs []string  `json:"employee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasEmployee reports whether the employee is a member of this config.
func (c *SalaryConfig) HasEmployee(id string) bool {
	for _, e := range c.EmployeeIDs {
		if e == id {
			return true
		}
	}
	return false
}
