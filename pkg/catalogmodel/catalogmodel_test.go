package catalogmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidBand(t *testing.T) {
	assert.True(t, ValidBand("C01"))
	assert.True(t, ValidBand("C16"))
	assert.False(t, ValidBand("C00"))
	assert.False(t, ValidBand("C17"))
	assert.False(t, ValidBand("GEOCOLOR"))
	assert.False(t, ValidBand("C1"))
}

func TestJobValidate_TerminalRequiresCompletedAt(t *testing.T) {
	j := &Job{Status: JobStatusCompleted, Progress: 100}
	require.Error(t, j.Validate())

	now := time.Now()
	j.CompletedAt = &now
	require.NoError(t, j.Validate())
}

func TestJobValidate_ProgressRange(t *testing.T) {
	j := &Job{Status: JobStatusPending, Progress: 101}
	require.Error(t, j.Validate())

	j.Progress = -1
	require.Error(t, j.Validate())

	j.Progress = 50
	require.NoError(t, j.Validate())
}

func TestClampMaxFramesPerFetch(t *testing.T) {
	assert.Equal(t, 1, ClampMaxFramesPerFetch(0))
	assert.Equal(t, 1, ClampMaxFramesPerFetch(-5))
	assert.Equal(t, 1000, ClampMaxFramesPerFetch(5000))
	assert.Equal(t, 200, ClampMaxFramesPerFetch(200))
}

func TestShareLinkExpired(t *testing.T) {
	now := time.Now()
	s := &ShareLink{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
}
