package jobrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRunner() *Runner {
	return &Runner{lastSaved: make(map[string]int)}
}

func TestShouldPersist_FirstWriteAlwaysPersists(t *testing.T) {
	r := newTestRunner()
	assert.True(t, r.shouldPersist("job-1", 3))
}

func TestShouldPersist_SmallDeltaSuppressed(t *testing.T) {
	r := newTestRunner()
	r.shouldPersist("job-1", 10)
	assert.False(t, r.shouldPersist("job-1", 13))
}

func TestShouldPersist_LargeDeltaPersists(t *testing.T) {
	r := newTestRunner()
	r.shouldPersist("job-1", 10)
	assert.True(t, r.shouldPersist("job-1", 16))
}

func TestShouldPersist_TerminalAlwaysPersists(t *testing.T) {
	r := newTestRunner()
	r.shouldPersist("job-1", 96)
	assert.True(t, r.shouldPersist("job-1", 100))
}

func TestClearThrottle_ResetsState(t *testing.T) {
	r := newTestRunner()
	r.shouldPersist("job-1", 50)
	r.clearThrottle("job-1")
	assert.True(t, r.shouldPersist("job-1", 51))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 5, abs(-5))
	assert.Equal(t, 5, abs(5))
	assert.Equal(t, 0, abs(0))
}
