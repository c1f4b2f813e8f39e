// Package vault is the typed entity repository at the heart of the consent
// platform: one authoritative store of sessions, protected assets, license
// requests, the casting-call catalogue, and onboarding progress, persisted
// as JSON blobs through the kv contract.
package vault

import (
	"errors"
	"time"
)

// Role classifies the signed-in account.
type Role string

const (
	RoleActor  Role = "actor"
	RoleStudio Role = "studio"
	RoleAgency Role = "agency"
	RoleLawyer Role = "lawyer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleActor, RoleStudio, RoleAgency, RoleLawyer:
		return true
	}
	return false
}

// AssetType is the biometric modality of a protected asset.
type AssetType string

const (
	AssetVoice  AssetType = "voice"
	AssetFace   AssetType = "face"
	AssetMotion AssetType = "motion"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetVoice, AssetFace, AssetMotion:
		return true
	}
	return false
}

// AssetStatus is the protection pipeline stage of a vault asset. Stages only
// move forward; there is no backward transition.
type AssetStatus string

const (
	AssetPending     AssetStatus = "pending"
	AssetScanning    AssetStatus = "scanning"
	AssetVerified    AssetStatus = "verified"
	AssetTamperProof AssetStatus = "tamper-proof"
)

var assetStatusRank = map[AssetStatus]int{
	AssetPending:     0,
	AssetScanning:    1,
	AssetVerified:    2,
	AssetTamperProof: 3,
}

func (s AssetStatus) Valid() bool {
	_, ok := assetStatusRank[s]
	return ok
}

// RightType is the usage right a studio requests over an asset.
type RightType string

const (
	RightVoiceCloning  RightType = "voice-cloning"
	RightFaceSynthesis RightType = "face-synthesis"
	RightFullLikeness  RightType = "full-likeness"
)

func (t RightType) Valid() bool {
	switch t {
	case RightVoiceCloning, RightFaceSynthesis, RightFullLikeness:
		return true
	}
	return false
}

// RequestStatus is the owner's decision state on a license request.
// Approved and rejected are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// Session is the signed-in account; at most one per installation, and its
// absence means unauthenticated.
type Session struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	Name           string `json:"name"`
	Verified       bool   `json:"verified"`
	VerificationID string `json:"verification_id,omitempty"`
}

// VaultAsset is a biometric artifact uploaded for protection.
type VaultAsset struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       AssetType   `json:"type"`
	Status     AssetStatus `json:"status"`
	UploadedAt time.Time   `json:"uploaded_at"`
	Size       int64       `json:"size"` // bytes
}

// LicenseRequest is a studio's request to use a protected asset under a
// right type. UsageToken is set if and only if the request is approved.
type LicenseRequest struct {
	ID          string        `json:"id"`
	StudioName  string        `json:"studio_name"`
	ProjectName string        `json:"project_name"`
	RightType   RightType     `json:"right_type"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UsageToken  string        `json:"usage_token,omitempty"`
}

// CastingCall is a read-mostly catalogue entry of a studio opportunity.
type CastingCall struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Studio       string   `json:"studio"`
	Role         string   `json:"role"`
	Description  string   `json:"description"`
	Budget       string   `json:"budget"`   // display string, e.g. "$12,000–$18,000"
	Deadline     string   `json:"deadline"` // date string, display only
	Requirements []string `json:"requirements"`
	Applied      bool     `json:"applied"`
}

// VaultAssetPatch carries the fields of a partial asset update; nil fields
// are left untouched.
type VaultAssetPatch struct {
	Name   *string
	Status *AssetStatus
	Size   *int64
}

// LicenseRequestPatch carries the fields of a partial request update.
type LicenseRequestPatch struct {
	Status     *RequestStatus
	UsageToken *string
}

// UpdateResult reports whether an update matched a record, so callers can
// tell "nothing changed" from "succeeded".
type UpdateResult int

const (
	NotFound UpdateResult = iota
	Updated
)

func (r UpdateResult) String() string {
	if r == Updated {
		return "updated"
	}
	return "not-found"
}

// Source tags whether a list read served persisted state or the first-run
// seed defaults.
type Source int

const (
	SourceStore Source = iota
	SourceSeed
)

func (s Source) String() string {
	if s == SourceSeed {
		return "seed"
	}
	return "store"
}

var (
	ErrInvalidInput     = errors.New("vault: invalid input")
	ErrDuplicateID      = errors.New("vault: duplicate id")
	ErrStatusRegression = errors.New("vault: asset status cannot move backward")
	ErrTerminalStatus   = errors.New("vault: request status is terminal")
	ErrTokenStatus      = errors.New("vault: usage token requires approved status")
)
