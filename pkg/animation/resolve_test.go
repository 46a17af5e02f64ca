package animation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

type fakeStore struct {
	catalog.Store

	frames map[string]*catalogmodel.GoesFrame
	list   catalog.FrameListResult
}

func (f *fakeStore) GetFrame(ctx context.Context, id string) (*catalogmodel.GoesFrame, error) {
	fr, ok := f.frames[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return fr, nil
}

func (f *fakeStore) ListFrames(ctx context.Context, filter catalogmodel.FrameFilter, page catalogmodel.FramePage) (catalog.FrameListResult, error) {
	return f.list, nil
}

func TestResolve_ExplicitOrdersByCaptureTime(t *testing.T) {
	now := time.Now()
	store := &fakeStore{frames: map[string]*catalogmodel.GoesFrame{
		"a": {ID: "a", CaptureTime: now.Add(time.Hour)},
		"b": {ID: "b", CaptureTime: now},
	}}

	frames, err := Resolve(context.Background(), store, Input{Source: SourceExplicit, FrameIDs: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, "b", frames[0].ID)
	assert.Equal(t, "a", frames[1].ID)
}

func TestResolve_EmptyReturnsErrNoFrames(t *testing.T) {
	store := &fakeStore{frames: map[string]*catalogmodel.GoesFrame{}}
	_, err := Resolve(context.Background(), store, Input{Source: SourceExplicit, FrameIDs: []string{"missing"}})
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestResolve_QuerySource(t *testing.T) {
	store := &fakeStore{list: catalog.FrameListResult{Frames: []*catalogmodel.GoesFrame{{ID: "x"}}}}
	frames, err := Resolve(context.Background(), store, Input{Source: SourceQuery})
	require.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestResolve_UnknownSource(t *testing.T) {
	store := &fakeStore{}
	_, err := Resolve(context.Background(), store, Input{Source: "bogus"})
	assert.Error(t, err)
}
