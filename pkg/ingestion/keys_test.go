package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func TestBucketAndProduct(t *testing.T) {
	b, err := Bucket(catalogmodel.SatelliteGOES18)
	require.NoError(t, err)
	assert.Equal(t, "noaa-goes18", b)

	p, err := Product(catalogmodel.SectorCONUS)
	require.NoError(t, err)
	assert.Equal(t, "ABI-L2-CMIPC", p)
}

func TestPrefix(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	prefix, err := Prefix(catalogmodel.SectorFullDisk, ts)
	require.NoError(t, err)
	assert.Equal(t, "ABI-L2-CMIPF/2024/001/12/", prefix)
}

func TestHourRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 2, 10, 0, 0, time.UTC)
	hours := HourRange(start, end)
	require.Len(t, hours, 3)
	assert.Equal(t, 0, hours[0].Hour())
	assert.Equal(t, 2, hours[2].Hour())
}

func TestParseKey(t *testing.T) {
	key := "ABI-L2-CMIPF/2024/001/12/OR_ABI-L2-CMIPF-M6C02_G18_s20240011200000_e20240011209999_c20240011210000.nc"
	pk, ok := ParseKey(key)
	require.True(t, ok)
	assert.Equal(t, catalogmodel.Band("C02"), pk.Band)
	assert.Equal(t, "", pk.MesoSlot)
	assert.Equal(t, 2024, pk.ScanStart.Year())
	assert.Equal(t, 12, pk.ScanStart.Hour())
}

func TestParseKeyMesoscale(t *testing.T) {
	key := "ABI-L2-CMIPM/2024/001/12/OR_ABI-L2-CMIPM1-M6C01_G18_s20240011200000_e20240011200589_c20240011201028.nc"
	pk, ok := ParseKey(key)
	require.True(t, ok)
	assert.Equal(t, "M1", pk.MesoSlot)
	assert.True(t, MatchesSector(pk, catalogmodel.SectorMesoscale1))
	assert.False(t, MatchesSector(pk, catalogmodel.SectorMesoscale2))
}
