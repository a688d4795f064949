package models

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

type EnvelopeSubtype string

type EnvelopePriority string

type FundingStatus string

type GapStatus string

type PayoffStrategy string

const (
	FrequencyNone         Frequency = "none"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyFortnightly  Frequency = "fortnightly"
	FrequencyTwiceMonthly Frequency = "twice_monthly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencyAnnually     Frequency = "annually"

	SubtypeBill     EnvelopeSubtype = "bill"
	SubtypeSpending EnvelopeSubtype = "spending"
	SubtypeSavings  EnvelopeSubtype = "savings"
	SubtypeGoal     EnvelopeSubtype = "goal"
	SubtypeTracking EnvelopeSubtype = "tracking"
	SubtypeDebt     EnvelopeSubtype = "debt"

	PriorityEssential     EnvelopePriority = "essential"
	PriorityImportant     EnvelopePriority = "important"
	PriorityDiscretionary EnvelopePriority = "discretionary"

	FundingOnTrack  FundingStatus = "on_track"
	FundingBehind   FundingStatus = "behind"
	FundingCritical FundingStatus = "critical"

	GapOnTrack         GapStatus = "on_track"
	GapSlightDeviation GapStatus = "slight_deviation"
	GapNeedsAttention  GapStatus = "needs_attention"

	StrategyAvalanche PayoffStrategy = "avalanche"
	StrategySnowball  PayoffStrategy = "snowball"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type IncomeSource struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	Frequency   Frequency `json:"frequency"`
	AnchorDate  time.Time `json:"anchor_date"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Envelope struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Name         string           `json:"name"`
	Subtype      EnvelopeSubtype  `json:"subtype"`
	Priority     EnvelopePriority `json:"priority"`
	TargetCents  int64            `json:"target_cents"`
	Frequency    Frequency        `json:"frequency"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	BalanceCents int64            `json:"balance_cents"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type IncomeAllocation struct {
	ID             uuid.UUID `json:"id"`
	EnvelopeID     uuid.UUID `json:"envelope_id"`
	IncomeSourceID uuid.UUID `json:"income_source_id"`
	AmountCents    int64     `json:"amount_cents"`
	IsLocked       bool      `json:"is_locked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DebtAccount struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Name                string    `json:"name"`
	BalanceCents        int64     `json:"balance_cents"`
	APR                 float64   `json:"apr"`
	MinPaymentCents     int64     `json:"min_payment_cents"`
	MonthlyPaymentCents int64     `json:"monthly_payment_cents"`
	ExtraPrincipalCents int64     `json:"extra_principal_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

// PriorityRank возвращает порядок приоритета для сортировки конвертов.
func PriorityRank(p EnvelopePriority) int {
	switch p {
	case PriorityEssential:
		return 0
	case PriorityImportant:
		return 1
	default:
		return 2
	}
}
