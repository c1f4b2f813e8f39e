package vault

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"trustharbor.org/internal/kv"
)

func newTestRepo() *Repository {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return NewRepository(kv.NewMemory(), WithClock(func() time.Time { return fixed }))
}

func TestSessionRoundTrip(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	if _, ok := r.GetSession(ctx); ok {
		t.Fatal("fresh store must be unauthenticated")
	}

	want := Session{ID: "user_1", Email: "ava@example.com", Role: RoleActor, Name: "Ava Reyes", Verified: true, VerificationID: "ver_9"}
	if err := r.SetSession(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, ok := r.GetSession(ctx)
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: ok=%v got=%+v", ok, got)
	}

	if err := r.ClearSession(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.GetSession(ctx); ok {
		t.Fatal("session survived clear")
	}
}

func TestSetSessionRejectsInvalidRole(t *testing.T) {
	r := newTestRepo()
	err := r.SetSession(context.Background(), Session{ID: "u", Role: Role("producer")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddVaultAssetDefaultsAndDuplicate(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	if err := r.AddVaultAsset(ctx, VaultAsset{ID: "asset_1", Name: "Voice print", Type: AssetVoice, Size: 2048}); err != nil {
		t.Fatal(err)
	}
	assets := r.ListVaultAssets(ctx)
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(assets))
	}
	if assets[0].Status != AssetPending {
		t.Fatalf("missing status must default to pending, got %s", assets[0].Status)
	}
	if assets[0].UploadedAt.IsZero() {
		t.Fatal("uploadedAt not defaulted")
	}

	err := r.AddVaultAsset(ctx, VaultAsset{ID: "asset_1", Type: AssetFace})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateVaultAssetTouchesOnlyTarget(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()
	for _, a := range []VaultAsset{
		{ID: "asset_1", Name: "Voice", Type: AssetVoice, Size: 100},
		{ID: "asset_2", Name: "Face", Type: AssetFace, Size: 200},
		{ID: "asset_3", Name: "Motion", Type: AssetMotion, Size: 300},
	} {
		if err := r.AddVaultAsset(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	before := r.ListVaultAssets(ctx)

	status := AssetScanning
	res, err := r.UpdateVaultAsset(ctx, "asset_2", VaultAssetPatch{Status: &status})
	if err != nil || res != Updated {
		t.Fatalf("update: res=%v err=%v", res, err)
	}

	after := r.ListVaultAssets(ctx)
	if !reflect.DeepEqual(after[0], before[0]) || !reflect.DeepEqual(after[2], before[2]) {
		t.Fatal("unrelated records changed")
	}
	want := before[1]
	want.Status = AssetScanning
	if !reflect.DeepEqual(after[1], want) {
		t.Fatalf("target record wrong: got %+v want %+v", after[1], want)
	}
}

func TestUpdateVaultAssetIdempotent(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()
	if err := r.AddVaultAsset(ctx, VaultAsset{ID: "asset_1", Type: AssetVoice}); err != nil {
		t.Fatal(err)
	}

	name := "Session take 2"
	status := AssetVerified
	patch := VaultAssetPatch{Name: &name, Status: &status}

	if _, err := r.UpdateVaultAsset(ctx, "asset_1", patch); err != nil {
		t.Fatal(err)
	}
	once := r.ListVaultAssets(ctx)
	if _, err := r.UpdateVaultAsset(ctx, "asset_1", patch); err != nil {
		t.Fatal(err)
	}
	twice := r.ListVaultAssets(ctx)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("update not idempotent: %+v vs %+v", once, twice)
	}
}

func TestUpdateVaultAssetRejectsRegression(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()
	if err := r.AddVaultAsset(ctx, VaultAsset{ID: "asset_1", Type: AssetVoice, Status: AssetVerified}); err != nil {
		t.Fatal(err)
	}
	status := AssetScanning
	if _, err := r.UpdateVaultAsset(ctx, "asset_1", VaultAssetPatch{Status: &status}); !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("expected ErrStatusRegression, got %v", err)
	}
}

func TestUpdateVaultAssetNotFound(t *testing.T) {
	r := newTestRepo()
	res, err := r.UpdateVaultAsset(context.Background(), "ghost", VaultAssetPatch{})
	if err != nil || res != NotFound {
		t.Fatalf("expected clean NotFound, got res=%v err=%v", res, err)
	}
}

func TestLicenseRequestSeedingAndSource(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	reqs, src := r.ListLicenseRequests(ctx)
	if src != SourceSeed || len(reqs) != 2 {
		t.Fatalf("first read: src=%v len=%d", src, len(reqs))
	}
	for _, req := range reqs {
		if req.Status != RequestPending || req.UsageToken != "" {
			t.Fatalf("seed request violates invariants: %+v", req)
		}
	}

	// Reading the seed must not persist it.
	if _, src := r.ListLicenseRequests(ctx); src != SourceSeed {
		t.Fatal("seed read persisted the collection")
	}

	// The first write persists seed plus the new entry.
	if err := r.AddLicenseRequest(ctx, LicenseRequest{ID: "req_1", StudioName: "Atlas Frame", ProjectName: "Drift", RightType: RightFullLikeness}); err != nil {
		t.Fatal(err)
	}
	reqs, src = r.ListLicenseRequests(ctx)
	if src != SourceStore || len(reqs) != 3 {
		t.Fatalf("after write: src=%v len=%d", src, len(reqs))
	}
}

func TestApproveAttachesTokenAndIsTerminal(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()
	if err := r.AddLicenseRequest(ctx, LicenseRequest{ID: "req_1", RightType: RightVoiceCloning}); err != nil {
		t.Fatal(err)
	}

	res, err := r.ApproveLicenseRequest(ctx, "req_1", "TH_token")
	if err != nil || res != Updated {
		t.Fatalf("approve: res=%v err=%v", res, err)
	}
	reqs, _ := r.ListLicenseRequests(ctx)
	for _, req := range reqs {
		if (req.UsageToken != "") != (req.Status == RequestApproved) {
			t.Fatalf("token/status invariant broken: %+v", req)
		}
	}

	if _, err := r.RejectLicenseRequest(ctx, "req_1"); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus, got %v", err)
	}
}

func TestUpdateLicenseRequestTokenRules(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()
	if err := r.AddLicenseRequest(ctx, LicenseRequest{ID: "req_1", RightType: RightVoiceCloning}); err != nil {
		t.Fatal(err)
	}

	// Token without approval is invalid.
	token := "TH_x"
	if _, err := r.UpdateLicenseRequest(ctx, "req_1", LicenseRequestPatch{UsageToken: &token}); !errors.Is(err, ErrTokenStatus) {
		t.Fatalf("expected ErrTokenStatus, got %v", err)
	}
	// Approval without a token is invalid too.
	status := RequestApproved
	if _, err := r.UpdateLicenseRequest(ctx, "req_1", LicenseRequestPatch{Status: &status}); !errors.Is(err, ErrTokenStatus) {
		t.Fatalf("expected ErrTokenStatus, got %v", err)
	}
}

func TestCastingCallCatalogue(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	calls, src := r.ListCastingCalls(ctx)
	if src != SourceSeed || len(calls) != 4 {
		t.Fatalf("catalogue seed: src=%v len=%d", src, len(calls))
	}

	res, err := r.MarkCastingCallApplied(ctx, calls[1].ID)
	if err != nil || res != Updated {
		t.Fatalf("apply: res=%v err=%v", res, err)
	}
	calls, src = r.ListCastingCalls(ctx)
	if src != SourceStore {
		t.Fatal("first write must persist the catalogue")
	}
	if !calls[1].Applied || calls[0].Applied {
		t.Fatalf("applied flag wrong: %+v", calls)
	}

	if res, err := r.MarkCastingCallApplied(ctx, "ghost"); err != nil || res != NotFound {
		t.Fatalf("unknown id: res=%v err=%v", res, err)
	}
}

func TestOnboardingStepDefaultsAndRoundTrip(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	if got := r.OnboardingStep(ctx); got != 1 {
		t.Fatalf("default step: %d", got)
	}
	if err := r.SetOnboardingStep(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if got := r.OnboardingStep(ctx); got != 3 {
		t.Fatalf("step round trip: %d", got)
	}
	if err := r.SetOnboardingStep(ctx, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMalformedBlobDegradesToDefault(t *testing.T) {
	store := kv.NewMemory()
	r := NewRepository(store)
	ctx := context.Background()

	for _, key := range []string{"th:session", "th:vault-assets", "th:license-requests", "th:casting-calls", "th:onboarding-step"} {
		if err := store.Set(ctx, key, []byte("{corrupt")); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := r.GetSession(ctx); ok {
		t.Fatal("corrupt session must read as absent")
	}
	if got := r.ListVaultAssets(ctx); len(got) != 0 {
		t.Fatalf("corrupt assets must read as empty, got %d", len(got))
	}
	if reqs, src := r.ListLicenseRequests(ctx); src != SourceSeed || len(reqs) != 2 {
		t.Fatalf("corrupt requests must reseed: src=%v len=%d", src, len(reqs))
	}
	if got := r.OnboardingStep(ctx); got != 1 {
		t.Fatalf("corrupt step must default to 1, got %d", got)
	}
}

func TestSignOutClearsEverythingAndReseeds(t *testing.T) {
	r := newTestRepo()
	ctx := context.Background()

	if err := r.SetSession(ctx, Session{ID: "u1", Role: RoleActor}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddVaultAsset(ctx, VaultAsset{ID: "asset_1", Type: AssetVoice}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddLicenseRequest(ctx, LicenseRequest{ID: "req_custom", RightType: RightFullLikeness}); err != nil {
		t.Fatal(err)
	}
	if err := r.SetOnboardingStep(ctx, 4); err != nil {
		t.Fatal(err)
	}

	if err := r.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.GetSession(ctx); ok {
		t.Fatal("session survived sign-out")
	}
	if got := r.ListVaultAssets(ctx); len(got) != 0 {
		t.Fatal("assets survived sign-out")
	}
	if got := r.OnboardingStep(ctx); got != 1 {
		t.Fatalf("onboarding survived sign-out: %d", got)
	}
	reqs, src := r.ListLicenseRequests(ctx)
	if src != SourceSeed || len(reqs) != 2 {
		t.Fatalf("requests must reseed after sign-out: src=%v len=%d", src, len(reqs))
	}
	for _, req := range reqs {
		if req.ID == "req_custom" {
			t.Fatal("pre-sign-out request survived")
		}
	}
}
