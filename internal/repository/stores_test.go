package repository

import (
	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
)

// Every repository embeds base.Repository and must keep satisfying the
// store interface its service consumes.
var (
	_ service.PeriodStore       = (*PeriodRepository)(nil)
	_ service.LivestreamStore   = (*LivestreamRepository)(nil)
	_ service.AltRequestStore   = (*AltRequestRepository)(nil)
	_ service.TierStore         = (*TierRepository)(nil)
	_ service.SalaryConfigStore = (*SalaryConfigRepository)(nil)
	_ service.GoalStore         = (*MonthlyGoalRepository)(nil)
	_ service.UserDirectory     = (*UserRepository)(nil)
	_ service.ChannelDirectory  = (*ChannelRepository)(nil)
)
