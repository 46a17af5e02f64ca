package catalogmodel

import "time"

// PresetKind discriminates the three preset flavors that share a uniqueness
// scope of (kind, name) at the store level even though §3 treats them as
// separate named entities.
type PresetKind string

const (
	PresetKindCrop      PresetKind = "crop"
	PresetKindFetch     PresetKind = "fetch"
	PresetKindAnimation PresetKind = "animation"
)

// CropPreset describes a fixed crop rectangle applied before animation
// frame scaling (§4.7).
type CropPreset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

// FetchPreset bundles the parameters of a recurring fetch (§3, used by
// FetchSchedule).
type FetchPreset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Satellite Satellite `json:"satellite"`
	Sector    Sector    `json:"sector"`
	Band      Band      `json:"band"`
	CreatedAt time.Time `json:"created_at"`
}

// AnimationPreset bundles encode/loop parameters for repeated animation
// requests (§4.7).
type AnimationPreset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Format     string    `json:"format"` // mp4 | gif
	Quality    string    `json:"quality"` // low | medium | high
	FPS        int       `json:"fps"`
	LoopStyle  string    `json:"loop_style"` // forward | pingpong | hold
	Scale      float64   `json:"scale"`
	CreatedAt  time.Time `json:"created_at"`
}

// FetchSchedule is an active preset wired to a recurring interval (§3).
// Invariant: IsActive implies NextRunAt != nil; !IsActive implies
// NextRunAt == nil (enforced by catalogdb's SetFetchScheduleActive, see
// §4.5 and §8).
type FetchSchedule struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PresetID        string     `json:"preset_id"`
	IntervalMinutes int        `json:"interval_minutes"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CleanupRuleType is the kind of retention rule (§3, §4.6).
type CleanupRuleType string

const (
	CleanupRuleMaxAgeDays   CleanupRuleType = "max_age_days"
	CleanupRuleMaxStorageGB CleanupRuleType = "max_storage_gb"
)

// CleanupRule is one retention policy evaluated by the retention engine
// (§4.6).
type CleanupRule struct {
	ID                 string          `json:"id"`
	RuleType           CleanupRuleType `json:"rule_type"`
	Value              float64         `json:"value"`
	ProtectCollections bool            `json:"protect_collections"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}
