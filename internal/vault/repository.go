package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trustharbor.org/internal/kv"
	"trustharbor.org/internal/obs"
)

// Persisted key layout. Everything the repository owns lives under the
// "th:" namespace; ClearAll removes exactly these keys.
const (
	keySession         = "th:session"
	keyVaultAssets     = "th:vault-assets"
	keyLicenseRequests = "th:license-requests"
	keyCastingCalls    = "th:casting-calls"
	keyOnboardingStep  = "th:onboarding-step"
)

var repositoryKeys = []string{
	keySession,
	keyVaultAssets,
	keyLicenseRequests,
	keyCastingCalls,
	keyOnboardingStep,
}

// Repository exposes typed accessors over the key-value store. It is the
// only writer of the persisted entity collections. Reads are total: a
// driver error or a corrupt blob degrades to the collection default and is
// logged, never raised. Writes fail loudly.
type Repository struct {
	store kv.Store
	now   func() time.Time
}

// Option configures Repository behavior.
type Option func(*Repository)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(r *Repository) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRepository constructs a Repository over the given store.
func NewRepository(store kv.Store, opts ...Option) *Repository {
	r := &Repository{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// --- session ---

// GetSession returns the active session, or ok=false when unauthenticated.
func (r *Repository) GetSession(ctx context.Context) (Session, bool) {
	raw, ok := r.read(ctx, keySession)
	if !ok {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		r.fallback(keySession, err)
		return Session{}, false
	}
	return s, true
}

// SetSession stores the session created at sign-in.
func (r *Repository) SetSession(ctx context.Context, s Session) error {
	if strings.TrimSpace(s.ID) == "" || !s.Role.Valid() {
		return fmt.Errorf("%w: session needs an id and a valid role", ErrInvalidInput)
	}
	return r.write(ctx, keySession, s)
}

// ClearSession removes only the session key. Full sign-out uses ClearAll.
func (r *Repository) ClearSession(ctx context.Context) error {
	err := r.store.Delete(ctx, keySession)
	obs.ObserveKVOp("delete", err)
	if err != nil {
		return fmt.Errorf("vault: clear session: %w", err)
	}
	return nil
}

// --- vault assets ---

// ListVaultAssets returns the stored assets in insertion order; empty when
// the key is absent or unreadable.
func (r *Repository) ListVaultAssets(ctx context.Context) []VaultAsset {
	raw, ok := r.read(ctx, keyVaultAssets)
	if !ok {
		return nil
	}
	var assets []VaultAsset
	if err := json.Unmarshal(raw, &assets); err != nil {
		r.fallback(keyVaultAssets, err)
		return nil
	}
	return assets
}

// AddVaultAsset appends a new asset. The id must be unique within the
// collection; a duplicate would corrupt lookups downstream, so it is
// rejected instead of silently appended.
func (r *Repository) AddVaultAsset(ctx context.Context, a VaultAsset) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: asset id is required", ErrInvalidInput)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidInput, a.Type)
	}
	if a.Status == "" {
		a.Status = AssetPending
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown asset status %q", ErrInvalidInput, a.Status)
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = r.now().UTC()
	}

	assets := r.ListVaultAssets(ctx)
	for _, existing := range assets {
		if existing.ID == a.ID {
			return fmt.Errorf("%w: asset %s", ErrDuplicateID, a.ID)
		}
	}
	return r.write(ctx, keyVaultAssets, append(assets, a))
}

// UpdateVaultAsset merges the supplied fields into the asset with the given
// id and rewrites the collection. Only the targeted record changes. Status
// may only move forward through the protection pipeline.
func (r *Repository) UpdateVaultAsset(ctx context.Context, id string, patch VaultAssetPatch) (UpdateResult, error) {
	assets := r.ListVaultAssets(ctx)
	for i := range assets {
		if assets[i].ID != id {
			continue
		}
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return NotFound, fmt.Errorf("%w: unknown asset status %q", ErrInvalidInput, *patch.Status)
			}
			if assetStatusRank[*patch.Status] < assetStatusRank[assets[i].Status] {
				return NotFound, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, assets[i].Status, *patch.Status)
			}
			assets[i].Status = *patch.Status
		}
		if patch.Name != nil {
			assets[i].Name = *patch.Name
		}
		if patch.Size != nil {
			assets[i].Size = *patch.Size
		}
		if err := r.write(ctx, keyVaultAssets, assets); err != nil {
			return NotFound, err
		}
		return Updated, nil
	}
	return NotFound, nil
}

// --- license requests ---

// ListLicenseRequests returns the stored requests, or the two seed examples
// when the key is absent. The Source return tags which one the caller got;
// the seed is not persisted by reading it.
func (r *Repository) ListLicenseRequests(ctx context.Context) ([]LicenseRequest, Source) {
	raw, ok := r.read(ctx, keyLicenseRequests)
	if !ok {
		return seedLicenseRequests(), SourceSeed
	}
	var reqs []LicenseRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		r.fallback(keyLicenseRequests, err)
		return seedLicenseRequests(), SourceSeed
	}
	return reqs, SourceStore
}

// AddLicenseRequest appends a new request; used by the studio submission
// flow. A first write persists the current list, seed included.
func (r *Repository) AddLicenseRequest(ctx context.Context, req LicenseRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	if !req.RightType.Valid() {
		return fmt.Errorf("%w: unknown right type %q", ErrInvalidInput, req.RightType)
	}
	if req.Status == "" {
		req.Status = RequestPending
	}
	if !req.Status.Valid() {
		return fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, req.Status)
	}
	if (req.UsageToken != "") != (req.Status == RequestApproved) {
		return ErrTokenStatus
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}

	reqs, _ := r.ListLicenseRequests(ctx)
	for _, existing := range reqs {
		if existing.ID == req.ID {
			return fmt.Errorf("%w: request %s", ErrDuplicateID, req.ID)
		}
	}
	return r.write(ctx, keyLicenseRequests, append(reqs, req))
}

// UpdateLicenseRequest merges the supplied fields into the request with the
// given id. Approved and rejected are terminal, and a usage token is valid
// only on an approved request; both rules are checked against the merged
// result before anything is written.
func (r *Repository) UpdateLicenseRequest(ctx context.Context, id string, patch LicenseRequestPatch) (UpdateResult, error) {
	reqs, _ := r.ListLicenseRequests(ctx)
	for i := range reqs {
		if reqs[i].ID != id {
			continue
		}
		next := reqs[i]
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return NotFound, fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, *patch.Status)
			}
			if next.Status.Terminal() && *patch.Status != next.Status {
				return NotFound, fmt.Errorf("%w: %s is final", ErrTerminalStatus, next.Status)
			}
			next.Status = *patch.Status
		}
		if patch.UsageToken != nil {
			next.UsageToken = *patch.UsageToken
		}
		if (next.UsageToken != "") != (next.Status == RequestApproved) {
			return NotFound, ErrTokenStatus
		}
		reqs[i] = next
		if err := r.write(ctx, keyLicenseRequests, reqs); err != nil {
			return NotFound, err
		}
		return Updated, nil
	}
	return NotFound, nil
}

// ApproveLicenseRequest moves a request to approved and attaches the issued
// usage token in one write.
func (r *Repository) ApproveLicenseRequest(ctx context.Context, id, usageToken string) (UpdateResult, error) {
	if strings.TrimSpace(usageToken) == "" {
		return NotFound, fmt.Errorf("%w: approval needs a usage token", ErrInvalidInput)
	}
	status := RequestApproved
	return r.UpdateLicenseRequest(ctx, id, LicenseRequestPatch{Status: &status, UsageToken: &usageToken})
}

// RejectLicenseRequest moves a request to rejected.
func (r *Repository) RejectLicenseRequest(ctx context.Context, id string) (UpdateResult, error) {
	status := RequestRejected
	return r.UpdateLicenseRequest(ctx, id, LicenseRequestPatch{Status: &status})
}

// --- casting calls ---

// ListCastingCalls returns the catalogue, seeded with the four canonical
// opportunities when the key is absent.
func (r *Repository) ListCastingCalls(ctx context.Context) ([]CastingCall, Source) {
	raw, ok := r.read(ctx, keyCastingCalls)
	if !ok {
		return seedCastingCalls(), SourceSeed
	}
	var calls []CastingCall
	if err := json.Unmarshal(raw, &calls); err != nil {
		r.fallback(keyCastingCalls, err)
		return seedCastingCalls(), SourceSeed
	}
	return calls, SourceStore
}

// MarkCastingCallApplied sets the applied flag on a catalogue entry. This is
// the catalogue's only mutator, and the first call persists the seed list.
func (r *Repository) MarkCastingCallApplied(ctx context.Context, id string) (UpdateResult, error) {
	calls, _ := r.ListCastingCalls(ctx)
	for i := range calls {
		if calls[i].ID != id {
			continue
		}
		calls[i].Applied = true
		if err := r.write(ctx, keyCastingCalls, calls); err != nil {
			return NotFound, err
		}
		return Updated, nil
	}
	return NotFound, nil
}

// --- onboarding ---

// OnboardingStep returns the stored progress marker, defaulting to 1 when
// absent or unparsable. Steps start at 1.
func (r *Repository) OnboardingStep(ctx context.Context) int {
	raw, ok := r.read(ctx, keyOnboardingStep)
	if !ok {
		return 1
	}
	// Stored as a JSON string holding the integer.
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		r.fallback(keyOnboardingStep, err)
		return 1
	}
	step, err := strconv.Atoi(s)
	if err != nil || step < 1 {
		r.fallback(keyOnboardingStep, fmt.Errorf("bad step %q", s))
		return 1
	}
	return step
}

// SetOnboardingStep stores the progress marker.
func (r *Repository) SetOnboardingStep(ctx context.Context, step int) error {
	if step < 1 {
		return fmt.Errorf("%w: onboarding step starts at 1", ErrInvalidInput)
	}
	return r.write(ctx, keyOnboardingStep, strconv.Itoa(step))
}

// --- sign-out ---

// ClearAll deletes every repository key. Sign-out is a full logout: custom
// assets and requests are gone, and subsequent list reads reseed defaults.
func (r *Repository) ClearAll(ctx context.Context) error {
	for _, key := range repositoryKeys {
		err := r.store.Delete(ctx, key)
		obs.ObserveKVOp("delete", err)
		if err != nil {
			return fmt.Errorf("vault: clear %s: %w", key, err)
		}
	}
	return nil
}

// --- plumbing ---

func (r *Repository) read(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := r.store.Get(ctx, key)
	obs.ObserveKVOp("get", err)
	if err != nil {
		// Availability over strict integrity: a read failure behaves like an
		// absent key and is logged for operators.
		obs.Warn("kv read failed, serving default", map[string]any{"key": key, "error": err.Error()})
		return nil, false
	}
	return raw, ok
}

func (r *Repository) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("vault: encode %s: %w", key, err)
	}
	err = r.store.Set(ctx, key, raw)
	obs.ObserveKVOp("set", err)
	if err != nil {
		return fmt.Errorf("vault: write %s: %w", key, err)
	}
	return nil
}

func (r *Repository) fallback(key string, err error) {
	obs.ObserveBlobFallback(key)
	obs.Warn("stored blob unreadable, serving default", map[string]any{"key": key, "error": err.Error()})
}
