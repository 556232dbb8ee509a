package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2025-10-04")
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.October, 4), d)
	assert.Equal(t, "2025-10-04", FormatDate(d))

	_, err = ParseDate("2025/10/04")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	ts := time.Date(2025, 10, 4, 15, 30, 45, 123, time.UTC)
	assert.Equal(t, Date(2025, time.October, 4), Truncate(ts))
}
