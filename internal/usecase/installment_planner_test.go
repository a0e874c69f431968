package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/faithflow/pledge-service/internal/domain/model"
	"github.com/faithflow/pledge-service/internal/usecase"
)

func TestMaxInstallments(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("monthly cadence over 95 days", func(t *testing.T) {
		end := now.AddDate(0, 0, 95)
		max := usecase.MaxInstallments(model.InstallmentPlanMonthly, now, end)
		assert.Equal(t, 3, max)
	})

	t.Run("weekly cadence over 95 days", func(t *testing.T) {
		end := now.AddDate(0, 0, 95)
		max := usecase.MaxInstallments(model.InstallmentPlanWeekly, now, end)
		assert.Equal(t, 13, max)
	})

	t.Run("lump-sum always one", func(t *testing.T) {
		end := now.AddDate(0, 0, 365)
		max := usecase.MaxInstallments(model.InstallmentPlanLumpSum, now, end)
		assert.Equal(t, 1, max)
	})

	t.Run("less than one cadence remaining degrades to one", func(t *testing.T) {
		end := now.AddDate(0, 0, 10)
		max := usecase.MaxInstallments(model.InstallmentPlanMonthly, now, end)
		assert.Equal(t, 1, max)
	})

	t.Run("campaign already ended degrades to one", func(t *testing.T) {
		end := now.AddDate(0, 0, -5)
		max := usecase.MaxInstallments(model.InstallmentPlanWeekly, now, end)
		assert.Equal(t, 1, max)
	})
}

func TestSplitInstallments(t *testing.T) {
	t.Run("final installment absorbs the rounding remainder", func(t *testing.T) {
		amounts := usecase.SplitInstallments(decimal.NewFromInt(10000), 3)

		assert.Len(t, amounts, 3)
		assert.Equal(t, "3333.33", amounts[0].StringFixed(2))
		assert.Equal(t, "3333.33", amounts[1].StringFixed(2))
		assert.Equal(t, "3333.34", amounts[2].StringFixed(2))

		sum := decimal.Zero
		for _, a := range amounts {
			sum = sum.Add(a)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("even split leaves no remainder", func(t *testing.T) {
		amounts := usecase.SplitInstallments(decimal.NewFromInt(900), 3)

		for _, a := range amounts {
			assert.Equal(t, "300.00", a.StringFixed(2))
		}
	})

	t.Run("single installment returns the total", func(t *testing.T) {
		amounts := usecase.SplitInstallments(decimal.RequireFromString("5000.50"), 1)

		assert.Len(t, amounts, 1)
		assert.Equal(t, "5000.50", amounts[0].StringFixed(2))
	})

	t.Run("parts always sum back to the total", func(t *testing.T) {
		total := decimal.RequireFromString("77.77")
		for count := 2; count <= 12; count++ {
			amounts := usecase.SplitInstallments(total, count)
			sum := decimal.Zero
			for _, a := range amounts {
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(total), "count %d: sum %s", count, sum)
		}
	})
}

func TestBuildSchedule(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	t.Run("monthly schedule lands one cadence apart", func(t *testing.T) {
		schedule := usecase.BuildSchedule(decimal.NewFromInt(10000), model.InstallmentPlanMonthly, 3, from, dueDate)

		assert.Len(t, schedule, 3)
		assert.Equal(t, 1, schedule[0].Sequence)
		assert.Equal(t, from.AddDate(0, 0, 30), schedule[0].DueDate)
		assert.Equal(t, from.AddDate(0, 0, 60), schedule[1].DueDate)
		assert.Equal(t, from.AddDate(0, 0, 90), schedule[2].DueDate)
		assert.Equal(t, "3333.34", schedule[2].Amount.StringFixed(2))
	})

	t.Run("lump-sum falls due on the pledge due date", func(t *testing.T) {
		schedule := usecase.BuildSchedule(decimal.NewFromInt(5000), model.InstallmentPlanLumpSum, 1, from, dueDate)

		assert.Len(t, schedule, 1)
		assert.Equal(t, dueDate, schedule[0].DueDate)
		assert.Equal(t, "5000.00", schedule[0].Amount.StringFixed(2))
	})
}
