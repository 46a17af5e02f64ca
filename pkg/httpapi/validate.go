package httpapi

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// maxFetchWindow bounds a single goes_fetch request (§6: "end - start <= 24h").
const maxFetchWindow = 24 * time.Hour

// validateFetchWindow checks satellite/sector/band/time-range against the
// closed sets and bounds from §3/§6. A non-empty return is the detail
// string for a 422 response.
func validateFetchWindow(satellite catalogmodel.Satellite, sector catalogmodel.Sector, band catalogmodel.Band, start, end time.Time) string {
	if !catalogmodel.SatelliteSet[satellite] {
		return fmt.Sprintf("satellite must be one of GOES-16, GOES-18, GOES-19, got %q", satellite)
	}
	if !catalogmodel.SectorSet[sector] {
		return fmt.Sprintf("sector must be one of FullDisk, CONUS, Mesoscale1, Mesoscale2, got %q", sector)
	}
	if band == "GEOCOLOR" {
		return "GEOCOLOR is a CDN-composited product, not an ABI band; request the constituent bands instead"
	}
	if !catalogmodel.ValidBand(band) {
		return fmt.Sprintf("band must be one of C01..C16, got %q", band)
	}
	if !end.After(start) {
		return "end must be after start"
	}
	if end.Sub(start) > maxFetchWindow {
		return "end - start must not exceed 24h"
	}
	return ""
}

// underStorageRoot reports whether path resolves under root, guarding
// every filesystem-exposing handler (job download, frame export) against
// a stored path that was somehow crafted to escape the storage root
// (§6 "Any absolute path exposed via the API must be validated...").
func underStorageRoot(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
