// Package payments is the in-memory payment workflow engine: it splits a
// gross studio payment into platform fee and actor payout, then advances
// each record through a fixed settlement lifecycle on timed steps.
//
// Records live only as long as the engine instance; a restart loses
// in-flight advancement. That non-durability is deliberate for the demo
// rail and is documented rather than guaranteed away.
package payments

import (
	"errors"
	"time"
)

// Money is represented in minor units (e.g., cents). No floats.
type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func (m Money) IsPositive() bool { return m.Amount > 0 }

// FeeBasisPoints is the platform's cut of gross revenue: fixed at 10%.
const FeeBasisPoints = 1000

// SplitFee divides gross into platform fee and net actor payout.
// net = gross - fee always holds exactly; rounding goes to the payout.
func SplitFee(gross Money) (fee, net Money) {
	feeAmount := gross.Amount * FeeBasisPoints / 10_000
	fee = Money{Currency: gross.Currency, Amount: feeAmount}
	net = Money{Currency: gross.Currency, Amount: gross.Amount - feeAmount}
	return fee, net
}

// Status is a payment's settlement stage. The producer path is
// initiated -> processing -> paid; failed is reachable only through an
// injected fault decider (see WithFaultDecider).
type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further advancement is scheduled.
func (s Status) Terminal() bool { return s == StatusPaid || s == StatusFailed }

// PaymentRecord is one gross->fee->net settlement in flight.
type PaymentRecord struct {
	ID          string    `json:"id"`
	Contract    string    `json:"contract"`
	Gross       Money     `json:"gross"`
	PlatformFee Money     `json:"platform_fee"`
	NetPayout   Money     `json:"net_payout"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Totals are status-agnostic sums across a record list: dashboard totals
// include payments still initiated, by design.
type Totals struct {
	Gross int64 `json:"gross"`
	Fees  int64 `json:"fees"`
	Net   int64 `json:"net"`
}

// Aggregate sums gross, fee, and net across records. Pure; an empty list
// yields zero totals.
func Aggregate(records []PaymentRecord) Totals {
	var t Totals
	for _, rec := range records {
		t.Gross += rec.Gross.Amount
		t.Fees += rec.PlatformFee.Amount
		t.Net += rec.NetPayout.Amount
	}
	return t
}

// Event is published on every status transition; presentation layers use it
// for toasts and live dashboards.
type Event struct {
	Record PaymentRecord `json:"record"`
	At     time.Time     `json:"at"`
}

var (
	ErrInvalidAmount   = errors.New("payments: gross must be > 0")
	ErrInvalidCurrency = errors.New("payments: currency is required")
	ErrEmptyContract   = errors.New("payments: contract label is required")
	ErrRateLimited     = errors.New("payments: creation rate limit exceeded")
	ErrClosed          = errors.New("payments: engine is closed")
)
