package ingestion

import (
	"fmt"
	"time"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// availabilityWindow is one entry of the static per-satellite hint map
// used to explain an empty result (§4.3 step 5).
type availabilityWindow struct {
	from, to time.Time // to is zero when still operational
	status   string
}

var availability = map[catalogmodel.Satellite]availabilityWindow{
	catalogmodel.SatelliteGOES16: {
		from:   time.Date(2017, 12, 18, 0, 0, 0, 0, time.UTC),
		to:     time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		status: "GOES-16 served as GOES-East until 2025-04-07, when GOES-19 took over",
	},
	catalogmodel.SatelliteGOES18: {
		from:   time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC),
		status: "GOES-18 is operational as GOES-West",
	},
	catalogmodel.SatelliteGOES19: {
		from:   time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
		status: "GOES-19 is operational as GOES-East",
	},
}

// AvailabilityHint explains why a query against sat for window [start,end]
// might return nothing, for the "No frames found" message in §4.3 step 5.
func AvailabilityHint(sat catalogmodel.Satellite, start, end time.Time) string {
	w, ok := availability[sat]
	if !ok {
		return fmt.Sprintf("%s is not a recognized satellite", sat)
	}
	if start.Before(w.from) {
		return fmt.Sprintf("%s has no data before %s", sat, w.from.Format("2006-01-02"))
	}
	if !w.to.IsZero() && end.After(w.to) {
		return fmt.Sprintf("%s stopped producing this product after %s (%s)", sat, w.to.Format("2006-01-02"), w.status)
	}
	return w.status
}
