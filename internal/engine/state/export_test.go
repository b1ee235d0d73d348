package state

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "abc", FormatValue("abc"))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "4.5", FormatValue(4.5))
	assert.Equal(t, `["a","b"]`, FormatValue([]any{"a", "b"}))
}

func TestWriteCSVAndJSON(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	s := NewMemoryStore(WithClock(func() time.Time { return ts }))

	require.NoError(t, s.EnsureObject(ctx, "0.periods", Channel("periods")))
	require.NoError(t, s.EnsureObject(ctx, "0.rating", ReadOnlyState("rating", "float")))
	require.NoError(t, s.SetState(ctx, "0.rating", 4.2, true))

	entries, err := s.List(ctx, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"0.periods", "channel", "", "", "", ""}, records[1])
	assert.Equal(t, []string{"0.rating", "state", "float", "4.2", "true", "2026-10-18T08:00:00Z"}, records[2])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, entries))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "0.rating", decoded[1]["id"])
	assert.NotContains(t, decoded[0], "state")
}
