package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

// Bucket returns the NOAA public bucket for a satellite (§7 external
// interfaces).
func Bucket(sat catalogmodel.Satellite) (string, error) {
	switch sat {
	case catalogmodel.SatelliteGOES16:
		return "noaa-goes16", nil
	case catalogmodel.SatelliteGOES18:
		return "noaa-goes18", nil
	case catalogmodel.SatelliteGOES19:
		return "noaa-goes19", nil
	default:
		return "", fmt.Errorf("unknown satellite %q", sat)
	}
}

// Product returns the ABI product code for a sector (§7).
func Product(sector catalogmodel.Sector) (string, error) {
	switch sector {
	case catalogmodel.SectorFullDisk:
		return "ABI-L2-CMIPF", nil
	case catalogmodel.SectorCONUS:
		return "ABI-L2-CMIPC", nil
	case catalogmodel.SectorMesoscale1, catalogmodel.SectorMesoscale2:
		return "ABI-L2-CMIPM", nil
	default:
		return "", fmt.Errorf("unknown sector %q", sector)
	}
}

// Prefix computes the list prefix for one UTC hour, per §4.3 step 1.
func Prefix(sector catalogmodel.Sector, t time.Time) (string, error) {
	product, err := Product(sector)
	if err != nil {
		return "", err
	}
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%03d/%02d/", product, t.Year(), t.YearDay(), t.Hour()), nil
}

// HourRange returns every UTC hour boundary overlapping [start, end]
// inclusive, used to build the per-hour list prefixes in §4.3 step 1.
func HourRange(start, end time.Time) []time.Time {
	start = start.UTC().Truncate(time.Hour)
	end = end.UTC()
	var hours []time.Time
	for h := start; !h.After(end); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}
	return hours
}

// ParsedKey is the result of parsing a GOES object key.
type ParsedKey struct {
	ScanStart time.Time
	Band      catalogmodel.Band
	MesoSlot  string // "M1", "M2", or "" when not a mesoscale product
}

// parseScanStart finds a scan-start field like "s2024001120000" embedded in
// a GOES object key (year, day-of-year, hour, minute, second, tenths).
func parseScanStart(key string) (time.Time, bool) {
	idx := strings.IndexByte(key, 's')
	for idx >= 0 {
		if idx+15 <= len(key) {
			digits := key[idx+1 : idx+15]
			if allDigits(digits) {
				year, _ := strconv.Atoi(digits[0:4])
				doy, _ := strconv.Atoi(digits[4:7])
				hour, _ := strconv.Atoi(digits[7:9])
				min, _ := strconv.Atoi(digits[9:11])
				sec, _ := strconv.Atoi(digits[11:13])
				t := time.Date(year, 1, 1, hour, min, sec, 0, time.UTC).AddDate(0, 0, doy-1)
				return t, true
			}
		}
		next := strings.IndexByte(key[idx+1:], 's')
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// bandMarkerRe-equivalent hand parser: matches M[346]C{band} as documented
// in §7 — the mode digit (3, 4, or 6) is not otherwise meaningful here.
func parseBandMarker(key string) (catalogmodel.Band, bool) {
	idx := strings.Index(key, "C")
	for idx >= 0 {
		if idx+3 <= len(key) {
			candidate := catalogmodel.Band(key[idx : idx+3])
			if catalogmodel.ValidBand(candidate) && idx > 0 {
				prev := key[idx-1]
				if prev == '3' || prev == '4' || prev == '6' {
					return candidate, true
				}
			}
		}
		next := strings.Index(key[idx+1:], "C")
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return "", false
}

// parseMesoSlot distinguishes M1 from M2 by the product-code substring in
// the key (§4.3 step 1(c)).
func parseMesoSlot(key string) string {
	switch {
	case strings.Contains(key, "ABI-L2-CMIPM1"):
		return "M1"
	case strings.Contains(key, "ABI-L2-CMIPM2"):
		return "M2"
	default:
		return ""
	}
}

// ParseKey extracts the scan-start time and band from a GOES object key,
// and for mesoscale products the M1/M2 slot (§4.3 step 1).
func ParseKey(key string) (ParsedKey, bool) {
	scanStart, ok := parseScanStart(key)
	if !ok {
		return ParsedKey{}, false
	}
	band, ok := parseBandMarker(key)
	if !ok {
		return ParsedKey{}, false
	}
	return ParsedKey{ScanStart: scanStart, Band: band, MesoSlot: parseMesoSlot(key)}, true
}

// MatchesSector reports whether a parsed key belongs to the requested
// sector, disambiguating Mesoscale1 vs Mesoscale2 by slot.
func MatchesSector(pk ParsedKey, sector catalogmodel.Sector) bool {
	switch sector {
	case catalogmodel.SectorMesoscale1:
		return pk.MesoSlot == "M1"
	case catalogmodel.SectorMesoscale2:
		return pk.MesoSlot == "M2"
	default:
		return true
	}
}
