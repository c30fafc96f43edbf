package installments

import (
	"fmt"
	"sort"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"github.com/shopspring/decimal"
)

var (
	depositRatio         = decimal.RequireFromString("0.30")
	earlyDepositMaxRatio = decimal.RequireFromString("0.40")
)

type Role string

const (
	RoleDeposit Role = "deposit"
	RoleMiddle  Role = "middle"
	RoleFinal   Role = "final"
)

// ProviderPayment is one entry of the provider's payment-due timeline. A zero DueDate means missing.
type ProviderPayment struct {
	DueDate time.Time
	Amount  decimal.Decimal
}

type Installment struct {
	DueDate time.Time
	Amount  decimal.Decimal
	Role    Role
}

type PlanInput struct {
	Total         decimal.Decimal
	ProfitRatio   decimal.Decimal
	Schedule      []ProviderPayment
	CheckIn       time.Time
	Now           time.Time
	TZOffsetHours int
}

type planner struct {
	input  PlanInput
	offset time.Duration
	plan   []Installment
}

func (p *planner) now() time.Time {
	return p.input.Now.UTC().Add(p.offset)
}

// local shifts a provider date into the guest timezone, never past check-in.
func (p *planner) local(date time.Time) time.Time {
	if !p.input.CheckIn.IsZero() && date.After(p.input.CheckIn) {
		date = p.input.CheckIn
	}

	return date.UTC().Add(p.offset)
}

func (p *planner) isDue(date time.Time) bool {
	if date.IsZero() {
		return true
	}

	dueDay := p.local(date).Truncate(24 * time.Hour)
	today := p.now().Truncate(24 * time.Hour)

	return !dueDay.After(today)
}

func (p *planner) scaled(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.input.ProfitRatio).Round(2)
}

func (p *planner) add(date time.Time, amount decimal.Decimal, role Role) {
	p.plan = append(p.plan, Installment{DueDate: date, Amount: amount, Role: role})
}

func (p *planner) paid() decimal.Decimal {
	sum := decimal.Zero
	for _, installment := range p.plan {
		sum = sum.Add(installment.Amount)
	}

	return sum
}

// final closes the plan so that it sums exactly to the total.
func (p *planner) final(date time.Time) error {
	remainder := p.input.Total.Sub(p.paid())
	if remainder.IsNegative() {
		return fmt.Errorf(
			"installments exceed total %s by %s: %w",
			p.input.Total.StringFixed(2),
			remainder.Neg().StringFixed(2),
			errors.ErrorInvalidCancellationPolicy,
		)
	}

	p.add(date, remainder, RoleFinal)
	return nil
}

func (p *planner) singlePayment() error {
	entry := p.input.Schedule[0]

	if p.isDue(entry.DueDate) {
		p.add(p.now(), p.input.Total, RoleFinal)
		return nil
	}

	p.add(p.now(), p.input.Total.Mul(depositRatio).Round(0), RoleDeposit)
	return p.final(p.local(entry.DueDate))
}

func (p *planner) multiplePayments() error {
	schedule := p.input.Schedule
	first := schedule[0]
	last := schedule[len(schedule)-1]

	for i := 1; i < len(schedule)-1; i++ {
		if schedule[i].DueDate.IsZero() {
			return fmt.Errorf("installment %d has no due date: %w", i+1, errors.ErrorInvalidCancellationPolicy)
		}
	}

	firstScaled := p.scaled(first.Amount)

	if p.isDue(first.DueDate) || first.Amount.LessThanOrEqual(p.input.Total.Mul(earlyDepositMaxRatio)) {
		p.add(p.now(), firstScaled, RoleDeposit)
	} else {
		// too large to charge at once: 30% deposit, the rest of the first installment right after
		deposit := p.input.Total.Mul(depositRatio).Round(2)
		if deposit.GreaterThanOrEqual(firstScaled) {
			p.add(p.now(), firstScaled, RoleDeposit)
		} else {
			p.add(p.now(), deposit, RoleDeposit)
			p.add(p.now(), firstScaled.Sub(deposit), RoleMiddle)
		}
	}

	for _, entry := range schedule[1 : len(schedule)-1] {
		p.add(p.local(entry.DueDate), p.scaled(entry.Amount), RoleMiddle)
	}

	lastDate := last.DueDate
	if lastDate.IsZero() {
		lastDate = p.input.CheckIn
	}

	return p.final(p.local(lastDate))
}

// BuildPlan turns the provider payment timeline into the guest installment plan.
// The amounts of the returned plan always sum up to input.Total.
func BuildPlan(input PlanInput) ([]Installment, error) {
	if len(input.Schedule) == 0 {
		return nil, fmt.Errorf("empty payment schedule: %w", errors.ErrorInvalidCancellationPolicy)
	}

	if !input.Schedule[0].Amount.IsPositive() {
		return nil, fmt.Errorf("first installment amount %s: %w", input.Schedule[0].Amount, errors.ErrorInvalidCancellationPolicy)
	}

	p := &planner{
		input:  input,
		offset: time.Duration(input.TZOffsetHours) * time.Hour,
	}

	var err error
	if len(input.Schedule) == 1 {
		err = p.singlePayment()
	} else {
		err = p.multiplePayments()
	}

	if err != nil {
		return nil, err
	}

	return p.plan, nil
}

// MergeSchedules adds up the schedules of several booked rates, count times each, by due date.
// An entry without due date keeps its meaning from BuildPlan: first in its schedule it is due
// at booking and leads the merged schedule, anywhere else it is due at check-in and closes it.
func MergeSchedules(schedules [][]ProviderPayment, counts []int) []ProviderPayment {
	byDate := map[time.Time]decimal.Decimal{}
	dates := []time.Time{}

	atBooking, atCheckIn := decimal.Zero, decimal.Zero
	hasAtBooking, hasAtCheckIn := false, false

	for i, schedule := range schedules {
		count := decimal.NewFromInt(int64(counts[i]))

		for position, entry := range schedule {
			amount := entry.Amount.Mul(count)

			if entry.DueDate.IsZero() {
				if position == 0 {
					atBooking, hasAtBooking = atBooking.Add(amount), true
				} else {
					atCheckIn, hasAtCheckIn = atCheckIn.Add(amount), true
				}
				continue
			}

			date := entry.DueDate.UTC()
			if _, ok := byDate[date]; !ok {
				dates = append(dates, date)
				byDate[date] = decimal.Zero
			}

			byDate[date] = byDate[date].Add(amount)
		}
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	merged := make([]ProviderPayment, 0, len(dates)+2)
	if hasAtBooking {
		merged = append(merged, ProviderPayment{Amount: atBooking})
	}

	for _, date := range dates {
		merged = append(merged, ProviderPayment{DueDate: date, Amount: byDate[date]})
	}

	if hasAtCheckIn {
		merged = append(merged, ProviderPayment{Amount: atCheckIn})
	}

	return merged
}
