package sys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0s", FormatDuration(0))
	assert.Equal("45s", FormatDuration(45*time.Second))
	assert.Equal("10m", FormatDuration(10*time.Minute))
	assert.Equal("1m 30s", FormatDuration(90*time.Second))
	assert.Equal("2h 20m", FormatDuration(140*time.Minute))
	assert.Equal("1d", FormatDuration(24*time.Hour))
	assert.Equal("1d 2h", FormatDuration(26*time.Hour))
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("hello", Truncate("hello", 10))
	assert.Equal("he...", Truncate("hello world", 5))
	assert.Equal("he", Truncate("hello", 2))
}
