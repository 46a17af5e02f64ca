package animation

import (
	"context"
	"sort"
	"time"

	"github.com/zeebo/errs"

	"github.com/goesarchive/goescat/pkg/catalog"
	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Class groups this package's errors (§10.2).
var Class = errs.Class("animation")

// ErrNoFrames is returned by Resolve when the input resolves to zero
// frames (§4.7 "enforce non-empty").
var ErrNoFrames = Class.New("animation input resolved to zero frames")

// Source selects how FrameIDs is interpreted by Resolve (§4.7).
type Source string

const (
	SourceExplicit   Source = "explicit"
	SourceQuery      Source = "query"
	SourceRecentHrs  Source = "recent_hours"
	SourceCollection Source = "collection"
)

// Input is the union of the four ways §4.7 lets a caller name the frame
// set for an animation.
type Input struct {
	Source       Source
	FrameIDs     []string
	Filter       catalogmodel.FrameFilter
	RecentHours  int
	CollectionID string
}

// Resolve produces the ordered (by capture_time ascending) frame list
// for in (§4.7).
func Resolve(ctx context.Context, store catalog.Store, in Input) ([]*catalogmodel.GoesFrame, error) {
	var frames []*catalogmodel.GoesFrame

	switch in.Source {
	case SourceExplicit:
		for _, id := range in.FrameIDs {
			f, err := store.GetFrame(ctx, id)
			if err != nil {
				continue
			}
			frames = append(frames, f)
		}
	case SourceQuery:
		res, err := store.ListFrames(ctx, in.Filter, catalogmodel.FramePage{Limit: 100000, SortKey: catalogmodel.SortCaptureTime})
		if err != nil {
			return nil, err
		}
		frames = res.Frames
	case SourceRecentHrs:
		now := time.Now()
		start := now.Add(-time.Duration(in.RecentHours) * time.Hour)
		filter := in.Filter
		filter.StartDate = &start
		filter.EndDate = &now
		res, err := store.ListFrames(ctx, filter, catalogmodel.FramePage{Limit: 100000, SortKey: catalogmodel.SortCaptureTime})
		if err != nil {
			return nil, err
		}
		frames = res.Frames
	case SourceCollection:
		filter := in.Filter
		filter.CollectionID = in.CollectionID
		res, err := store.ListFrames(ctx, filter, catalogmodel.FramePage{Limit: 100000, SortKey: catalogmodel.SortCaptureTime})
		if err != nil {
			return nil, err
		}
		frames = res.Frames
	default:
		return nil, Class.New("unknown animation source %q", in.Source)
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].CaptureTime.Before(frames[j].CaptureTime) })
	return frames, nil
}
