package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	warnings []string
}

func (c *captureLogger) Warnf(format string, args ...any) {
	c.warnings = append(c.warnings, format)
}
func (c *captureLogger) Errorf(format string, args ...any) {}

func TestAcquireRelease(t *testing.T) {
	before := Live()
	logger := &captureLogger{}

	release := Acquire(logger)
	require.Equal(t, before+1, Live())

	release()
	assert.Equal(t, before, Live())
}

func TestAcquireReleaseIsIdempotent(t *testing.T) {
	before := Live()
	logger := &captureLogger{}
	release := Acquire(logger)
	release()
	release()
	assert.Equal(t, before, Live())
}

func TestWarnThresholdFiresOnce(t *testing.T) {
	logger := &captureLogger{}
	var releases []func()
	for i := uint64(0); i < warnThreshold+5; i++ {
		releases = append(releases, Acquire(logger))
	}
	for _, r := range releases {
		r()
	}
	assert.LessOrEqual(t, len(logger.warnings), 1)
}
