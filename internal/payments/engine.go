package payments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"trustharbor.org/internal/obs"
)

const (
	defaultFirstDelay  = 800 * time.Millisecond // initiated -> processing
	defaultSecondDelay = 900 * time.Millisecond // processing -> paid
)

// Engine owns the in-memory payment list for the lifetime of one workflow
// view. Each created record advances on its own cancellable timer chain;
// records are keyed by id, so interleaved completions cannot touch
// unrelated records.
type Engine struct {
	mu      sync.Mutex
	records map[string]*PaymentRecord
	order   []string // most recent first
	cancels map[string]context.CancelFunc
	subs    map[int]chan Event
	nextSub int
	closed  bool

	firstDelay  time.Duration
	secondDelay time.Duration
	limiter     *rate.Limiter
	fault       func(PaymentRecord) bool
	now         func() time.Time
}

// EngineOption configures Engine behavior.
type EngineOption func(*Engine)

// WithDelays overrides the two settlement delays (tests use millisecond
// values to keep timing deterministic enough).
func WithDelays(first, second time.Duration) EngineOption {
	return func(e *Engine) {
		if first > 0 {
			e.firstDelay = first
		}
		if second > 0 {
			e.secondDelay = second
		}
	}
}

// WithRate bounds payment creation with a token bucket. The default engine
// is unlimited.
func WithRate(perSecond float64, burst int) EngineOption {
	return func(e *Engine) {
		if perSecond > 0 && burst > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithFaultDecider injects the only producer of the failed status: when the
// decider returns true at the processing step, the record settles as failed
// instead of paid. Without it, failed stays declared but unreachable.
func WithFaultDecider(fn func(PaymentRecord) bool) EngineOption {
	return func(e *Engine) { e.fault = fn }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.now = fn
		}
	}
}

// NewEngine constructs an empty payment engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		records:     make(map[string]*PaymentRecord),
		cancels:     make(map[string]context.CancelFunc),
		subs:        make(map[int]chan Event),
		firstDelay:  defaultFirstDelay,
		secondDelay: defaultSecondDelay,
		limiter:     rate.NewLimiter(rate.Inf, 0),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreatePayment records a new payment with the fee split applied, inserts
// it at the head of the list, and schedules its advancement. The returned
// record is a snapshot at creation (status initiated).
func (e *Engine) CreatePayment(ctx context.Context, contract string, gross Money) (PaymentRecord, error) {
	if strings.TrimSpace(contract) == "" {
		return PaymentRecord{}, ErrEmptyContract
	}
	if gross.Currency == "" {
		return PaymentRecord{}, ErrInvalidCurrency
	}
	if !gross.IsPositive() {
		return PaymentRecord{}, ErrInvalidAmount
	}
	if !e.limiter.Allow() {
		return PaymentRecord{}, ErrRateLimited
	}

	fee, net := SplitFee(gross)
	rec := &PaymentRecord{
		ID:          uuid.NewString(),
		Contract:    contract,
		Gross:       gross,
		PlatformFee: fee,
		NetPayout:   net,
		Status:      StatusInitiated,
		CreatedAt:   e.now().UTC(),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return PaymentRecord{}, ErrClosed
	}
	e.records[rec.ID] = rec
	e.order = append([]string{rec.ID}, e.order...)

	// Advancement is owned by one goroutine per record with its own cancel
	// handle, so tearing down a view can stop it deterministically.
	advCtx, cancel := context.WithCancel(context.Background())
	e.cancels[rec.ID] = cancel
	snapshot := *rec
	e.publishLocked(snapshot)
	e.mu.Unlock()

	obs.ObservePaymentTransition(string(StatusInitiated))
	go e.advance(advCtx, rec.ID)

	return snapshot, nil
}

// advance walks one record through the settlement lifecycle. Each step is
// scheduled only from the completion of the previous one, so a record's
// statuses are strictly ordered. A cancelled context drops the pending
// update silently.
func (e *Engine) advance(ctx context.Context, id string) {
	if !sleep(ctx, e.firstDelay) {
		return
	}
	if _, ok := e.transition(id, StatusProcessing); !ok {
		return
	}
	if !sleep(ctx, e.secondDelay) {
		return
	}

	final := StatusPaid
	if e.fault != nil {
		if rec, ok := e.get(id); ok && e.fault(rec) {
			final = StatusFailed
		}
	}
	e.transition(id, final)
}

// Cancel stops pending advancement for the record; it stays at whatever
// status was last written. Reports whether an advancement was pending.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	cancel, ok := e.cancels[id]
	delete(e.cancels, id)
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Close cancels all pending advancement and rejects further creation; the
// teardown hook for the owning view.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	cancels := make([]context.CancelFunc, 0, len(e.cancels))
	for _, cancel := range e.cancels {
		cancels = append(cancels, cancel)
	}
	e.cancels = make(map[string]context.CancelFunc)
	e.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Records returns a snapshot of all records, most recent first.
func (e *Engine) Records() []PaymentRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PaymentRecord, 0, len(e.order))
	for _, id := range e.order {
		if rec, ok := e.records[id]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// Aggregate sums the current record list. Recomputed on every call; the
// set is small and the totals deliberately include unsettled records.
func (e *Engine) Aggregate() Totals {
	return Aggregate(e.Records())
}

// Subscribe registers a transition-event subscriber. The channel closes
// when ctx ends; slow subscribers drop events rather than blocking the
// engine.
func (e *Engine) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.subs, id)
		close(ch)
		e.mu.Unlock()
	}()

	return ch
}

func (e *Engine) transition(id string, status Status) (PaymentRecord, bool) {
	e.mu.Lock()
	rec, ok := e.records[id]
	if !ok {
		e.mu.Unlock()
		return PaymentRecord{}, false
	}
	rec.Status = status
	if status.Terminal() {
		delete(e.cancels, id)
	}
	snapshot := *rec
	e.publishLocked(snapshot)
	e.mu.Unlock()

	obs.ObservePaymentTransition(string(status))
	return snapshot, true
}

func (e *Engine) get(id string) (PaymentRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.records[id]
	if !ok {
		return PaymentRecord{}, false
	}
	return *rec, true
}

func (e *Engine) publishLocked(rec PaymentRecord) {
	evt := Event{Record: rec, At: e.now().UTC()}
	for _, ch := range e.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking settlement.
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
