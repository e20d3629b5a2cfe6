package ledger

import (
	"fmt"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate summarises the records whose timestamp falls in the months
// [from, to], both inclusive. Months are taken in the location of the
// ledger's clock, whatever location a loaded timestamp carries.
// A range with no records yields zero totals and one empty entry per month.
func (l *Ledger) Aggregate(from, to domain.Month) (domain.Statistics, error) {
	if !from.IsValid() || !to.IsValid() {
		return domain.Statistics{}, domain.NewValidationError("month", "is out of range", nil)
	}
	if from.After(to) {
		return domain.Statistics{}, fmt.Errorf("%w: %s after %s", domain.ErrInvalidDateRange, from, to)
	}

	stats := domain.Statistics{
		From:                from,
		To:                  to,
		ConsultationRevenue: decimal.Zero,
		PurchaseCost:        decimal.Zero,
		Total:               decimal.Zero,
		Profit:              decimal.Zero,
	}
	index := make(map[domain.Month]int)
	for m := from; !m.After(to); m = m.Next() {
		index[m] = len(stats.Months)
		stats.Months = append(stats.Months, domain.MonthlySummary{
			Month:               m,
			ConsultationRevenue: decimal.Zero,
			PurchaseCost:        decimal.Zero,
		})
	}

	loc := l.clock.Now().Location()

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		i, ok := index[domain.MonthOf(r.Timestamp.In(loc))]
		if !ok {
			continue
		}
		month := &stats.Months[i]
		switch r.Kind {
		case domain.RecordConsultation:
			stats.ConsultationCount++
			stats.ConsultationRevenue = stats.ConsultationRevenue.Add(r.Amount)
			month.ConsultationCount++
			month.ConsultationRevenue = month.ConsultationRevenue.Add(r.Amount)
		case domain.RecordMedicinePurchase:
			stats.PurchaseCount++
			stats.PurchaseQuantity += r.Quantity
			stats.PurchaseCost = stats.PurchaseCost.Add(r.Amount)
			month.PurchaseCount++
			month.PurchaseCost = month.PurchaseCost.Add(r.Amount)
		}
		stats.Total = stats.Total.Add(r.Amount)
	}
	stats.Profit = stats.ConsultationRevenue.Sub(stats.PurchaseCost)
	return stats, nil
}
