// Command smoke-vault runs the whole consent core in-process against the
// configured store and fails fast on the first violated invariant.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"trustharbor.org/internal/audit"
	"trustharbor.org/internal/config"
	"trustharbor.org/internal/guard"
	"trustharbor.org/internal/ids"
	"trustharbor.org/internal/obs"
	"trustharbor.org/internal/payments"
	"trustharbor.org/internal/token"
	"trustharbor.org/internal/vault"
)

func main() {
	log.SetFlags(0)
	obs.Init()
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "smoke-vault-*")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Hermetic by default: without an explicit driver the run uses a file
	// store in the temp dir. TH_STORE_DRIVER selects pg/redis/memory.
	if os.Getenv("TH_STORE_DRIVER") == "" {
		cfg.StoreDriver = config.DriverFile
		cfg.StatePath = filepath.Join(dir, "vault.json")
	}
	store, err := config.OpenStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	repo := vault.NewRepository(store)
	g := guard.New(repo)
	issuer := token.NewIssuer()

	// Shared drivers may carry state from earlier runs; start from first-run.
	if err := repo.ClearAll(ctx); err != nil {
		log.Fatalf("reset store: %v", err)
	}

	// Sign in.
	if g.IsAuthenticated(ctx) {
		log.Fatal("fresh installation must be unauthenticated")
	}
	session := vault.Session{ID: ids.NewPrefixed("user"), Email: "ava@example.com", Role: vault.RoleActor, Name: "Ava Reyes", Verified: true}
	if err := repo.SetSession(ctx, session); err != nil {
		log.Fatalf("sign in: %v", err)
	}
	if _, err := g.RequireSession(ctx); err != nil {
		log.Fatalf("session not visible after sign-in: %v", err)
	}
	ctx = guard.ContextWithSession(ctx, session)

	// Onboarding progress.
	if step := repo.OnboardingStep(ctx); step != 1 {
		log.Fatalf("default onboarding step: %d", step)
	}
	if err := repo.SetOnboardingStep(ctx, 3); err != nil {
		log.Fatalf("set onboarding step: %v", err)
	}

	// Upload and advance an asset.
	assetID := ids.NewPrefixed("asset")
	if err := repo.AddVaultAsset(ctx, vault.VaultAsset{ID: assetID, Name: "Voice print", Type: vault.AssetVoice, Size: 4096}); err != nil {
		log.Fatalf("add asset: %v", err)
	}
	status := vault.AssetScanning
	if res, err := repo.UpdateVaultAsset(ctx, assetID, vault.VaultAssetPatch{Status: &status}); err != nil || res != vault.Updated {
		log.Fatalf("advance asset: res=%v err=%v", res, err)
	}

	// Seeded requests, then an approval with an issued token.
	requests, src := repo.ListLicenseRequests(ctx)
	if src != vault.SourceSeed || len(requests) != 2 {
		log.Fatalf("request seed: src=%v len=%d", src, len(requests))
	}
	usage := issuer.New()
	if len(usage) != 35 {
		log.Fatalf("token shape: %q", usage)
	}
	if res, err := repo.ApproveLicenseRequest(ctx, requests[0].ID, usage); err != nil || res != vault.Updated {
		log.Fatalf("approve: res=%v err=%v", res, err)
	}
	if err := audit.LogEvent(ctx, "license.approved", map[string]any{"request_id": requests[0].ID}); err != nil {
		log.Fatalf("audit: %v", err)
	}
	if n := g.PendingRequestCount(ctx); n != 1 {
		log.Fatalf("badge after approval: %d", n)
	}

	// Payment rail: 3600 gross splits 360/3240 and settles to paid.
	engine := payments.NewEngine(payments.WithDelays(50*time.Millisecond, 50*time.Millisecond))
	defer engine.Close()

	evCtx, evCancel := context.WithCancel(ctx)
	defer evCancel()
	events := engine.Subscribe(evCtx)

	rec, err := engine.CreatePayment(ctx, "Echoes of Tomorrow — voice clone", payments.Money{Currency: "USD", Amount: 3600})
	if err != nil {
		log.Fatalf("create payment: %v", err)
	}
	if rec.PlatformFee.Amount != 360 || rec.NetPayout.Amount != 3240 {
		log.Fatalf("fee split: fee=%d net=%d", rec.PlatformFee.Amount, rec.NetPayout.Amount)
	}
	deadline := time.After(5 * time.Second)
	for settled := false; !settled; {
		select {
		case evt := <-events:
			if evt.Record.ID == rec.ID && evt.Record.Status == payments.StatusPaid {
				settled = true
			}
		case <-deadline:
			log.Fatal("payment never settled")
		}
	}
	totals := engine.Aggregate()
	if totals.Gross != 3600 || totals.Fees != 360 || totals.Net != 3240 {
		log.Fatalf("aggregate: %+v", totals)
	}
	if err := audit.LogEvent(ctx, "payment.paid", map[string]any{"payment_id": rec.ID}); err != nil {
		log.Fatalf("audit: %v", err)
	}

	// Sign out wipes everything and reseeds on next read.
	if err := repo.ClearAll(ctx); err != nil {
		log.Fatalf("sign out: %v", err)
	}
	if err := audit.LogEvent(ctx, "session.signed_out", nil); err != nil {
		log.Fatalf("audit: %v", err)
	}
	if g.IsAuthenticated(ctx) {
		log.Fatal("session survived sign-out")
	}
	requests, src = repo.ListLicenseRequests(ctx)
	if src != vault.SourceSeed || len(requests) != 2 {
		log.Fatalf("reseed after sign-out: src=%v len=%d", src, len(requests))
	}
	if step := repo.OnboardingStep(ctx); step != 1 {
		log.Fatalf("onboarding survived sign-out: %d", step)
	}

	fmt.Println("✅ vault core smoke test passed")
}
