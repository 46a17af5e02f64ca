package catalogmodel

import "time"

// Satellite identifies a GOES spacecraft.
type Satellite string

const (
	SatelliteGOES16 Satellite = "GOES-16"
	SatelliteGOES18 Satellite = "GOES-18"
	SatelliteGOES19 Satellite = "GOES-19"
)

// SatelliteSet is the closed set of supported satellites (§3).
var SatelliteSet = map[Satellite]bool{
	SatelliteGOES16: true,
	SatelliteGOES18: true,
	SatelliteGOES19: true,
}

// Sector identifies a scan coverage area.
type Sector string

const (
	SectorFullDisk     Sector = "FullDisk"
	SectorCONUS        Sector = "CONUS"
	SectorMesoscale1   Sector = "Mesoscale1"
	SectorMesoscale2   Sector = "Mesoscale2"
)

// SectorSet is the closed set of supported sectors (§3).
var SectorSet = map[Sector]bool{
	SectorFullDisk:   true,
	SectorCONUS:      true,
	SectorMesoscale1: true,
	SectorMesoscale2: true,
}

// Band is an ABI spectral channel, C01..C16.
type Band string

// ValidBand reports whether b is one of C01..C16. GEOCOLOR is deliberately
// excluded — §4.1 requires it be rejected with a CDN-availability message,
// which httpapi implements by checking for GEOCOLOR before calling this
// function.
func ValidBand(b Band) bool {
	if len(b) != 3 || b[0] != 'C' {
		return false
	}
	n := 0
	for _, c := range b[1:] {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 1 && n <= 16
}

// GoesFrame is a catalogued satellite image on disk (§3).
type GoesFrame struct {
	ID             string    `json:"id"`
	Satellite      Satellite `json:"satellite"`
	Sector         Sector    `json:"sector"`
	Band           Band      `json:"band"`
	CaptureTime    time.Time `json:"capture_time"`
	FilePath       string    `json:"file_path"`
	FileSize       int64     `json:"file_size"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	ThumbnailPath  string    `json:"thumbnail_path,omitempty"`
	SourceJobID    string    `json:"source_job_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Image is the legacy mirror row written alongside each GoesFrame so
// older readers that predate the catalog schema keep working (§12).
type Image struct {
	ID          string    `json:"id"`
	FrameID     string    `json:"frame_id"`
	Path        string    `json:"path"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

// SortKey is one of the whitelisted GoesFrame listing sort columns (§4.1).
type SortKey string

const (
	SortCaptureTime SortKey = "capture_time"
	SortFileSize    SortKey = "file_size"
	SortSatellite   SortKey = "satellite"
	SortCreatedAt   SortKey = "created_at"
)

// ValidSortKey reports whether k is on the closed whitelist.
func ValidSortKey(k SortKey) bool {
	switch k {
	case SortCaptureTime, SortFileSize, SortSatellite, SortCreatedAt:
		return true
	default:
		return false
	}
}

// SortDir is the listing sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// FrameFilter narrows a GoesFrame listing (§4.1).
type FrameFilter struct {
	Satellite    *Satellite
	Sector       *Sector
	Band         *Band
	StartDate    *time.Time
	EndDate      *time.Time
	CollectionID string
	Tag          string
}

// FramePage is a page request over GoesFrame listings (§6).
type FramePage struct {
	Page    int
	Limit   int
	SortKey SortKey
	SortDir SortDir
}

// FrameStats is the aggregate result of GET /api/goes/frames/stats (§4.1).
type FrameStats struct {
	TotalFrames int64             `json:"total_frames"`
	TotalBytes  int64             `json:"total_bytes"`
	BySatBand   []SatBandTotal    `json:"by_satellite_band"`
}

// SatBandTotal is one (satellite, band) aggregate row.
type SatBandTotal struct {
	Satellite Satellite `json:"satellite"`
	Band      Band      `json:"band"`
	FileSize  int64     `json:"file_size"`
	Count     int64     `json:"count"`
}
