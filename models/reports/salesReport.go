package reports

import (
	"context"
	"sort"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DailyTotal struct {
	Day   time.Time       `json:"day"`
	Total decimal.Decimal `json:"total"`
}

type BranchDailyTotal struct {
	Day        time.Time       `json:"day"`
	BranchName string          `json:"branch_name"`
	Total      decimal.Decimal `json:"total"`
}

func salesInRange(ctx context.Context, db *gorm.DB, organizationId int, from, to time.Time, branchId int) ([]models.Sale, error) {
	query := db.WithContext(ctx).Preload("Branch").
		Where("organization_id = ? AND date BETWEEN ? AND ?",
			organizationId, utils.DateOnly(from), utils.DateOnly(to))
	if branchId > 0 {
		query = query.Where("branch_id = ?", branchId)
	}
	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// SalesByBranch totals the sales of the range per branch, biggest first.
func SalesByBranch(ctx context.Context, from, to time.Time, branchId int) ([]NamedTotal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	sales, err := salesInRange(ctx, config.GetDB(), organizationId, from, to, branchId)
	if err != nil {
		return nil, err
	}

	totals := map[string]decimal.Decimal{}
	for _, sale := range sales {
		name := ""
		if sale.Branch != nil {
			name = sale.Branch.Name
		}
		totals[name] = totals[name].Add(sale.Amount)
	}

	out := make([]NamedTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, NamedTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

// DailySales totals the sales of the range per day, oldest first.
func DailySales(ctx context.Context, from, to time.Time, branchId int) ([]DailyTotal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	sales, err := salesInRange(ctx, config.GetDB(), organizationId, from, to, branchId)
	if err != nil {
		return nil, err
	}

	totals := map[string]decimal.Decimal{}
	days := map[string]time.Time{}
	for _, sale := range sales {
		day := utils.DateOnly(sale.Date)
		key := day.Format("2006-01-02")
		totals[key] = totals[key].Add(sale.Amount)
		days[key] = day
	}

	out := make([]DailyTotal, 0, len(totals))
	for key, total := range totals {
		out = append(out, DailyTotal{Day: days[key], Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// CriticalSalesAlerts lists the branch-days whose total fell below the
// threshold. A non-positive threshold yields no alerts.
func CriticalSalesAlerts(ctx context.Context, from, to time.Time, branchId int, threshold decimal.Decimal) ([]BranchDailyTotal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if threshold.LessThanOrEqual(decimal.Zero) {
		return []BranchDailyTotal{}, nil
	}

	sales, err := salesInRange(ctx, config.GetDB(), organizationId, from, to, branchId)
	if err != nil {
		return nil, err
	}

	type key struct {
		day    string
		branch string
	}
	totals := map[key]*BranchDailyTotal{}
	for _, sale := range sales {
		name := ""
		if sale.Branch != nil {
			name = sale.Branch.Name
		}
		day := utils.DateOnly(sale.Date)
		k := key{day: day.Format("2006-01-02"), branch: name}
		entry, ok := totals[k]
		if !ok {
			entry = &BranchDailyTotal{Day: day, BranchName: name, Total: decimal.Zero}
			totals[k] = entry
		}
		entry.Total = entry.Total.Add(sale.Amount)
	}

	out := []BranchDailyTotal{}
	for _, entry := range totals {
		if entry.Total.LessThan(threshold) {
			out = append(out, *entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		return out[i].BranchName < out[j].BranchName
	})
	return out, nil
}
