package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadpulse/roadpulse/internal/api/models"
)

func TestTimestamp_RoundTrip(t *testing.T) {
	original := models.Timestamp(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-30T12:00:00Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Time().Equal(decoded.Time()))
}

func TestTimestamp_UnmarshalNull(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	assert.True(t, ts.Time().IsZero())
}

func TestTimestamp_UnmarshalRejectsNonString(t *testing.T) {
	// Malformed server data must surface as an error, not a panic.
	for _, raw := range []string{`1`, `""`, `{}`, `"not-a-time"`} {
		var ts models.Timestamp
		assert.Error(t, json.Unmarshal([]byte(raw), &ts), "input %s", raw)
	}
}
