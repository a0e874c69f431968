package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithflow/pledge-service/internal/domain/model"
)

// two decimal places, matching the ledger's money columns
const moneyScale = 2

// MaxInstallments returns the largest installment count the campaign's
// remaining duration permits for the given cadence. Lump-sum plans and
// campaigns with less than one full cadence remaining degrade to a single
// installment rather than rejecting the pledge.
func MaxInstallments(plan model.InstallmentPlan, now, campaignEnd time.Time) int {
	cadence := plan.CadenceDays()
	if cadence == 0 {
		return 1
	}

	daysRemaining := int(campaignEnd.Sub(now).Hours() / 24)
	if daysRemaining < cadence {
		return 1
	}

	return daysRemaining / cadence
}

// SplitInstallments divides total into count equal parts at two decimal
// places. Division truncates, so the final installment absorbs the rounding
// remainder and the parts always sum back to total exactly.
func SplitInstallments(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 1 {
		return []decimal.Decimal{total}
	}

	per := total.Div(decimal.NewFromInt(int64(count))).Truncate(moneyScale)
	amounts := make([]decimal.Decimal, count)

	allocated := decimal.Zero
	for i := 0; i < count-1; i++ {
		amounts[i] = per
		allocated = allocated.Add(per)
	}
	amounts[count-1] = total.Sub(allocated)

	return amounts
}

// Installment is one scheduled slice of a pledge
type Installment struct {
	Sequence int
	Amount   decimal.Decimal
	DueDate  time.Time
}

// BuildSchedule lays the split amounts out on the plan's cadence starting one
// cadence after from. Lump-sum schedules fall due on the pledge's due date.
func BuildSchedule(total decimal.Decimal, plan model.InstallmentPlan, count int, from, dueDate time.Time) []Installment {
	amounts := SplitInstallments(total, count)
	schedule := make([]Installment, len(amounts))

	cadence := plan.CadenceDays()
	for i, amount := range amounts {
		due := dueDate
		if cadence > 0 {
			due = from.AddDate(0, 0, cadence*(i+1))
		}
		schedule[i] = Installment{
			Sequence: i + 1,
			Amount:   amount,
			DueDate:  due,
		}
	}

	return schedule
}
