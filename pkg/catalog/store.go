// Package catalog defines the Store interface for the relational catalog
// (C1): jobs, frames, collections, tags, presets, schedules, cleanup
// rules, derived artifacts, share links, notifications and settings. The
// Postgres implementation lives in pkg/catalog/catalogdb.
package catalog

import (
	"context"
	"time"

	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Class groups the errors this package returns so callers can branch with
// errs.Is without depending on a driver-specific error type.
var Class = errs.Class("catalog")

// ErrNotFound is returned by Get* lookups that found nothing.
var ErrNotFound = Class.New("not found")

// ErrConflict is returned when a unique constraint would be violated
// (duplicate tag name, duplicate preset name within its kind, ...).
var ErrConflict = Class.New("conflict")

// FrameListResult is the page returned by ListFrames.
type FrameListResult struct {
	Frames     []*catalogmodel.GoesFrame
	TotalCount int
}

// Store is implemented by pkg/catalog/catalogdb.PostgresStore. Every
// method takes a context so HTTP handlers (async sessions, §4.1) and
// worker/beat call sites (sync sessions) share one code path and respect
// request cancellation/timeouts uniformly.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, job *catalogmodel.Job) error
	GetJob(ctx context.Context, id string) (*catalogmodel.Job, error)
	ListJobs(ctx context.Context, jobType catalogmodel.JobType, status catalogmodel.JobStatus, page, limit int) ([]*catalogmodel.Job, int, error)
	UpdateJob(ctx context.Context, job *catalogmodel.Job) error
	// UpdateJobProgress is the narrow, frequently-called progress/message
	// write path (§4.4); kept distinct from UpdateJob so the throttling
	// decision in pkg/jobrun only ever touches these two columns.
	UpdateJobProgress(ctx context.Context, id string, progress int, statusMessage string) error
	DeleteJob(ctx context.Context, id string) error
	AppendJobLog(ctx context.Context, entry *catalogmodel.JobLog) error
	ListJobLogs(ctx context.Context, jobID string) ([]*catalogmodel.JobLog, error)
	// ListStaleProcessingJobs and ListStalePendingJobs back the reaper
	// (§4.4).
	ListStaleProcessingJobs(ctx context.Context, olderThan time.Duration) ([]*catalogmodel.Job, error)
	ListStalePendingJobs(ctx context.Context, olderThan time.Duration) ([]*catalogmodel.Job, error)

	// Frames
	CreateFramesBatch(ctx context.Context, frames []*catalogmodel.GoesFrame, autoCollectionName string) error
	GetFrame(ctx context.Context, id string) (*catalogmodel.GoesFrame, error)
	ListFrames(ctx context.Context, filter catalogmodel.FrameFilter, page catalogmodel.FramePage) (FrameListResult, error)
	// ListFrameIDsForRetention streams candidate ids without loading full
	// rows (§4.6).
	ListFrameIDsForRetention(ctx context.Context, createdBefore time.Time, excludeProtected bool) ([]string, error)
	ListAllFrameIDsOrderedByAge(ctx context.Context, excludeProtected bool) ([]string, error)
	DeleteFrame(ctx context.Context, id string) error
	DeleteFramesByJobID(ctx context.Context, jobID string) error
	FrameStats(ctx context.Context) (catalogmodel.FrameStats, error)
	TotalFrameBytes(ctx context.Context) (int64, error)
	// ListCaptureTimes backs the gap detector (C9).
	ListCaptureTimes(ctx context.Context, satellite *catalogmodel.Satellite, sector *catalogmodel.Sector, band *catalogmodel.Band) ([]time.Time, error)
	NearestFrame(ctx context.Context, satellite catalogmodel.Satellite, sector catalogmodel.Sector, band catalogmodel.Band, at time.Time) (*catalogmodel.GoesFrame, error)

	// Collections
	CreateCollection(ctx context.Context, c *catalogmodel.Collection) error
	GetOrCreateCollectionByName(ctx context.Context, name string) (*catalogmodel.Collection, error)
	GetCollection(ctx context.Context, id string) (*catalogmodel.Collection, error)
	ListCollections(ctx context.Context) ([]*catalogmodel.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	AddFramesToCollection(ctx context.Context, collectionID string, frameIDs []string) error
	RemoveFrameFromCollection(ctx context.Context, collectionID, frameID string) error
	ListProtectedFrameIDs(ctx context.Context) (map[string]bool, error)

	// Tags
	CreateTag(ctx context.Context, t *catalogmodel.Tag) error
	ListTags(ctx context.Context) ([]*catalogmodel.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	TagFrame(ctx context.Context, frameID, tagID string) error
	UntagFrame(ctx context.Context, frameID, tagID string) error

	// Presets
	CreateCropPreset(ctx context.Context, p *catalogmodel.CropPreset) error
	ListCropPresets(ctx context.Context) ([]*catalogmodel.CropPreset, error)
	CreateFetchPreset(ctx context.Context, p *catalogmodel.FetchPreset) error
	GetFetchPreset(ctx context.Context, id string) (*catalogmodel.FetchPreset, error)
	ListFetchPresets(ctx context.Context) ([]*catalogmodel.FetchPreset, error)
	CreateAnimationPreset(ctx context.Context, p *catalogmodel.AnimationPreset) error
	ListAnimationPresets(ctx context.Context) ([]*catalogmodel.AnimationPreset, error)
	DeletePreset(ctx context.Context, kind catalogmodel.PresetKind, id string) error

	// Fetch schedules
	CreateFetchSchedule(ctx context.Context, s *catalogmodel.FetchSchedule) error
	GetFetchSchedule(ctx context.Context, id string) (*catalogmodel.FetchSchedule, error)
	ListFetchSchedules(ctx context.Context) ([]*catalogmodel.FetchSchedule, error)
	ListDueFetchSchedules(ctx context.Context, now time.Time) ([]*catalogmodel.FetchSchedule, error)
	UpdateFetchScheduleRun(ctx context.Context, id string, lastRunAt, nextRunAt time.Time) error
	SetFetchScheduleActive(ctx context.Context, id string, active bool, nextRunAt *time.Time) error
	DeleteFetchSchedule(ctx context.Context, id string) error

	// Cleanup rules
	CreateCleanupRule(ctx context.Context, r *catalogmodel.CleanupRule) error
	ListActiveCleanupRules(ctx context.Context) ([]*catalogmodel.CleanupRule, error)
	ListCleanupRules(ctx context.Context) ([]*catalogmodel.CleanupRule, error)
	DeleteCleanupRule(ctx context.Context, id string) error

	// Derived artifacts
	CreateComposite(ctx context.Context, c *catalogmodel.Composite) error
	UpdateComposite(ctx context.Context, c *catalogmodel.Composite) error
	GetComposite(ctx context.Context, id string) (*catalogmodel.Composite, error)
	CreateAnimation(ctx context.Context, a *catalogmodel.Animation) error
	UpdateAnimation(ctx context.Context, a *catalogmodel.Animation) error
	GetAnimation(ctx context.Context, id string) (*catalogmodel.Animation, error)

	// Share links
	CreateShareLink(ctx context.Context, s *catalogmodel.ShareLink) error
	GetShareLink(ctx context.Context, token string) (*catalogmodel.ShareLink, error)

	// Notifications
	CreateNotification(ctx context.Context, n *catalogmodel.Notification) error
	ListNotifications(ctx context.Context, unreadOnly bool) ([]*catalogmodel.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// Settings
	GetSettings(ctx context.Context) (catalogmodel.Settings, error)
	UpdateSettings(ctx context.Context, s catalogmodel.Settings) error

	Close() error
}
