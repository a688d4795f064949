package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"example.com/envelope-budget/backend/internal/models"
)

// DefaultMaxPayoffMonths ограничивает амортизацию при сколь угодно медленной сходимости.
const DefaultMaxPayoffMonths = 600

type PayoffMonth struct {
	Month          int       `json:"month"`
	Date           time.Time `json:"date"`
	InterestCents  int64     `json:"interest_cents"`
	PrincipalCents int64     `json:"principal_cents"`
	BalanceCents   int64     `json:"balance_cents"`
}

type PayoffProjection struct {
	AccountID            uuid.UUID     `json:"account_id"`
	StartingBalanceCents int64         `json:"starting_balance_cents"`
	APR                  float64       `json:"apr"`
	MonthlyPaymentCents  int64         `json:"monthly_payment_cents"`
	PayoffDate           *time.Time    `json:"payoff_date"`
	Months               int           `json:"months"`
	TotalInterestCents   int64         `json:"total_interest_cents"`
	NonConvergent        bool          `json:"non_convergent"`
	Schedule             []PayoffMonth `json:"schedule,omitempty"`
}

type AccountPayoff struct {
	AccountID          uuid.UUID  `json:"account_id"`
	PayoffDate         *time.Time `json:"payoff_date"`
	Months             int        `json:"months"`
	TotalInterestCents int64      `json:"total_interest_cents"`
}

type PortfolioResult struct {
	Strategy           models.PayoffStrategy `json:"strategy"`
	Months             int                   `json:"months"`
	TotalInterestCents int64                 `json:"total_interest_cents"`
	NonConvergent      bool                  `json:"non_convergent"`
	Accounts           []AccountPayoff       `json:"accounts"`
}

// ProjectPayoff амортизирует остаток долга при фиксированном месячном платеже.
//
// Платеж, не покрывающий месячный процент, возвращается как флаг NonConvergent
// с пустой датой погашения: это валидное, но тревожное состояние, а не сбой.
func ProjectPayoff(
	accountID uuid.UUID,
	balanceCents int64,
	apr float64,
	paymentCents, extraCents int64,
	start time.Time,
	maxMonths int,
) (PayoffProjection, error) {
	projection := PayoffProjection{
		AccountID:            accountID,
		StartingBalanceCents: balanceCents,
		APR:                  apr,
		MonthlyPaymentCents:  paymentCents,
	}

	if balanceCents < 0 || paymentCents < 0 || extraCents < 0 || apr < 0 {
		return projection, ErrInvalidAmount
	}
	if maxMonths <= 0 {
		maxMonths = DefaultMaxPayoffMonths
	}

	if balanceCents == 0 {
		payoff := dateOnly(start)
		projection.PayoffDate = &payoff
		return projection, nil
	}

	if paymentCents+extraCents <= monthlyInterest(balanceCents, apr) {
		projection.NonConvergent = true
		return projection, nil
	}

	balance := balanceCents
	for month := 1; month <= maxMonths; month++ {
		interest := monthlyInterest(balance, apr)
		principal := paymentCents + extraCents - interest
		if principal <= 0 {
			projection.NonConvergent = true
			return projection, nil
		}

		if principal > balance {
			principal = balance
		}
		balance -= principal
		projection.TotalInterestCents += interest
		projection.Months = month
		projection.Schedule = append(projection.Schedule, PayoffMonth{
			Month:          month,
			Date:           dateOnly(start).AddDate(0, month, 0),
			InterestCents:  interest,
			PrincipalCents: principal,
			BalanceCents:   balance,
		})

		if balance == 0 {
			payoff := projection.Schedule[len(projection.Schedule)-1].Date
			projection.PayoffDate = &payoff
			return projection, nil
		}
	}

	// Лимит месяцев исчерпан: считаем платеж несходящимся на практике.
	projection.NonConvergent = true
	return projection, nil
}

// ProjectPortfolio моделирует погашение нескольких счетов с перенаправлением
// освободившихся платежей по выбранной стратегии.
func ProjectPortfolio(
	accounts []models.DebtAccount,
	strategy models.PayoffStrategy,
	start time.Time,
	maxMonths int,
) (PortfolioResult, error) {
	result := PortfolioResult{Strategy: strategy}

	ordered, err := orderByStrategy(accounts, strategy)
	if err != nil {
		return result, err
	}
	if maxMonths <= 0 {
		maxMonths = DefaultMaxPayoffMonths
	}

	type cardState struct {
		account  models.DebtAccount
		balance  int64
		interest int64
		months   int
		payoff   *time.Time
	}

	states := make([]*cardState, 0, len(ordered))
	var budget int64
	for _, account := range ordered {
		if account.BalanceCents < 0 || account.MonthlyPaymentCents < 0 || account.ExtraPrincipalCents < 0 || account.APR < 0 {
			return result, ErrInvalidAmount
		}
		states = append(states, &cardState{account: account, balance: account.BalanceCents})
		budget += account.MonthlyPaymentCents + account.ExtraPrincipalCents
	}

	startDate := dateOnly(start)
	for month := 1; month <= maxMonths; month++ {
		remaining := int64(0)
		for _, state := range states {
			remaining += state.balance
		}
		if remaining == 0 {
			break
		}

		var accrued int64
		for _, state := range states {
			if state.balance == 0 {
				continue
			}
			interest := monthlyInterest(state.balance, state.account.APR)
			state.balance += interest
			state.interest += interest
			result.TotalInterestCents += interest
			accrued += interest
		}

		if budget <= accrued && accrued > 0 {
			result.NonConvergent = true
			break
		}

		// Сначала каждый счет получает свой минимальный платеж.
		available := budget
		for _, state := range states {
			if state.balance == 0 {
				continue
			}
			payment := minInt64(state.account.MonthlyPaymentCents, state.balance)
			state.balance -= payment
			available -= payment
		}

		// Остаток бюджета уходит первому непогашенному счету по стратегии.
		for _, state := range states {
			if available <= 0 {
				break
			}
			if state.balance == 0 {
				continue
			}
			payment := minInt64(available, state.balance)
			state.balance -= payment
			available -= payment
		}

		for _, state := range states {
			if state.balance == 0 && state.payoff == nil {
				payoff := startDate.AddDate(0, month, 0)
				state.payoff = &payoff
				state.months = month
			}
		}

		result.Months = month
	}

	for _, state := range states {
		if state.payoff == nil {
			result.NonConvergent = true
		}
		result.Accounts = append(result.Accounts, AccountPayoff{
			AccountID:          state.account.ID,
			PayoffDate:         state.payoff,
			Months:             state.months,
			TotalInterestCents: state.interest,
		})
	}

	return result, nil
}

func orderByStrategy(accounts []models.DebtAccount, strategy models.PayoffStrategy) ([]models.DebtAccount, error) {
	ordered := make([]models.DebtAccount, len(accounts))
	copy(ordered, accounts)

	switch strategy {
	case models.StrategyAvalanche:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].APR > ordered[j].APR
		})
	case models.StrategySnowball:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].BalanceCents < ordered[j].BalanceCents
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	return ordered, nil
}

func monthlyInterest(balanceCents int64, apr float64) int64 {
	return int64(math.Round(float64(balanceCents) * apr / 12))
}
