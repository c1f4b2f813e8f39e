package payments

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"
)

// Demo traffic for the dashboard: artificial contracts settling real fee
// splits through the engine.

var demoContracts = []string{
	"Echoes of Tomorrow — voice clone, S2 pickups",
	"Starfall: Origins — face synthesis, cinematics",
	"Drift — full likeness, second unit",
	"Northlight documentary — narration license",
	"Kinetic Forge — motion library renewal",
}

var (
	demoMu  sync.Mutex
	demoRnd = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
)

// RandomDemoPayment returns an artificial contract label and gross amount.
func RandomDemoPayment() (contract string, gross Money) {
	demoMu.Lock()
	defer demoMu.Unlock()
	contract = demoContracts[demoRnd.Intn(len(demoContracts))]
	amount := int64(50_000 + demoRnd.Intn(2_000_000)) // minor units
	return contract, Money{Currency: "USD", Amount: amount}
}

// StartDemo creates random payments at the provided interval until the
// returned stop function is called.
func (e *Engine) StartDemo(interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				contract, gross := RandomDemoPayment()
				// Rate-limited or closed engines just skip a tick.
				_, _ = e.CreatePayment(ctx, contract, gross)
			}
		}
	}()
	return cancel
}
