package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

type fakeStore struct {
	catalog.Store

	activeRules []*catalogmodel.CleanupRule
	ageIDs      []string
	orderedIDs  []string
	frames      map[string]*catalogmodel.GoesFrame
	totalBytes  int64
	deleted     []string
}

func (f *fakeStore) ListActiveCleanupRules(ctx context.Context) ([]*catalogmodel.CleanupRule, error) {
	return f.activeRules, nil
}

func (f *fakeStore) ListFrameIDsForRetention(ctx context.Context, createdBefore time.Time, excludeProtected bool) ([]string, error) {
	return f.ageIDs, nil
}

func (f *fakeStore) ListAllFrameIDsOrderedByAge(ctx context.Context, excludeProtected bool) ([]string, error) {
	return f.orderedIDs, nil
}

func (f *fakeStore) TotalFrameBytes(ctx context.Context) (int64, error) {
	return f.totalBytes, nil
}

func (f *fakeStore) GetFrame(ctx context.Context, id string) (*catalogmodel.GoesFrame, error) {
	return f.frames[id], nil
}

func (f *fakeStore) DeleteFrame(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestPreview_MaxAgeRule(t *testing.T) {
	store := &fakeStore{
		activeRules: []*catalogmodel.CleanupRule{{RuleType: catalogmodel.CleanupRuleMaxAgeDays, Value: 30, IsActive: true}},
		ageIDs:      []string{"f1", "f2"},
		frames: map[string]*catalogmodel.GoesFrame{
			"f1": {ID: "f1", FileSize: 100},
			"f2": {ID: "f2", FileSize: 200},
		},
	}
	e := NewEngine(store)

	res, err := e.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.FrameCount)
	assert.Equal(t, int64(300), res.TotalSizeBytes)
}

func TestMaxStorageCandidates_StopsOnceExcessFreed(t *testing.T) {
	store := &fakeStore{
		activeRules: []*catalogmodel.CleanupRule{{RuleType: catalogmodel.CleanupRuleMaxStorageGB, Value: 1, IsActive: true}},
		orderedIDs:  []string{"old1", "old2", "old3"},
		totalBytes:  2*bytesPerGB + 100,
		frames: map[string]*catalogmodel.GoesFrame{
			"old1": {ID: "old1", FileSize: bytesPerGB},
			"old2": {ID: "old2", FileSize: bytesPerGB},
			"old3": {ID: "old3", FileSize: bytesPerGB},
		},
	}
	e := NewEngine(store)

	ids, err := e.candidateIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestMaxStorageCandidates_NoExcessNoCandidates(t *testing.T) {
	store := &fakeStore{
		activeRules: []*catalogmodel.CleanupRule{{RuleType: catalogmodel.CleanupRuleMaxStorageGB, Value: 10, IsActive: true}},
		orderedIDs:  []string{"old1"},
		totalBytes:  bytesPerGB,
		frames:      map[string]*catalogmodel.GoesFrame{"old1": {ID: "old1", FileSize: bytesPerGB}},
	}
	e := NewEngine(store)

	ids, err := e.candidateIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRun_RemovesFilesAndRows(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "frame.png")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	store := &fakeStore{
		activeRules: []*catalogmodel.CleanupRule{{RuleType: catalogmodel.CleanupRuleMaxAgeDays, Value: 1, IsActive: true}},
		ageIDs:      []string{"f1"},
		frames: map[string]*catalogmodel.GoesFrame{
			"f1": {ID: "f1", FileSize: 42, FilePath: filePath},
		},
	}
	e := NewEngine(store)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedFrames)
	assert.Equal(t, int64(42), res.FreedBytes)
	assert.Equal(t, []string{"f1"}, store.deleted)

	_, statErr := os.Stat(filePath)
	assert.True(t, os.IsNotExist(statErr))
}
