// Command paydemo drives the payment workflow engine with artificial
// contracts and logs every settlement transition as JSON, until
// interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trustharbor.org/internal/config"
	"trustharbor.org/internal/obs"
	"trustharbor.org/internal/payments"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("TH_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	opts := []payments.EngineOption{
		payments.WithDelays(cfg.SettleDelayFirst, cfg.SettleDelaySecond),
	}
	if cfg.PaymentRatePerSecond > 0 {
		opts = append(opts, payments.WithRate(cfg.PaymentRatePerSecond, cfg.PaymentRateBurst))
	}
	engine := payments.NewEngine(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	events := engine.Subscribe(ctx)
	stopFeed := engine.StartDemo(cfg.DemoInterval)

	obs.Info("paydemo started", map[string]any{"version": version, "interval": cfg.DemoInterval.String()})

	go func() {
		for evt := range events {
			obs.Info("payment transition", map[string]any{
				"payment_id": evt.Record.ID,
				"contract":   evt.Record.Contract,
				"status":     string(evt.Record.Status),
				"gross":      evt.Record.Gross.Amount,
				"net":        evt.Record.NetPayout.Amount,
			})
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	stopFeed()
	cancel()
	engine.Close()

	totals := engine.Aggregate()
	obs.Info("paydemo stopped", map[string]any{
		"records": len(engine.Records()),
		"gross":   totals.Gross,
		"fees":    totals.Fees,
		"net":     totals.Net,
	})
}
