package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairTimestamps(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	mtime := t1.Add(time.Hour)

	in := []ParsedMessage{
		{UUID: "a"},
		{UUID: "b", Timestamp: t1},
		{UUID: "c"},
		{UUID: "d"},
		{UUID: "e", Timestamp: t2},
		{UUID: "f"},
		{UUID: "g"},
	}
	out := RepairTimestamps(in, mtime)

	require.Len(t, out, len(in))
	want := []time.Time{t1, t1, t2, t2, t2, mtime, mtime}
	for i := range out {
		assert.Equal(t, in[i].UUID, out[i].UUID)
		assert.True(t, want[i].Equal(out[i].Timestamp), "message %d: got %v", i, out[i].Timestamp)
	}

	assert.False(t, in[0].HasTimestamp(), "input must not be modified")
	assert.False(t, in[5].HasTimestamp(), "input must not be modified")
}

func TestRepairTimestamps_Idempotent(t *testing.T) {
	mtime := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	in := []ParsedMessage{{}, {Timestamp: mtime.Add(-time.Hour)}, {}}

	once := RepairTimestamps(in, mtime)
	twice := RepairTimestamps(once, mtime.Add(24*time.Hour))
	assert.Equal(t, once, twice)
}

func TestRepairTimestamps_Empty(t *testing.T) {
	assert.Nil(t, RepairTimestamps(nil, time.Now()))
	assert.Empty(t, RepairTimestamps([]ParsedMessage{}, time.Now()))
}

func TestRepairTimestamps_AllMissing(t *testing.T) {
	mtime := time.Date(2025, 3, 3, 3, 3, 3, 0, time.UTC)
	out := RepairTimestamps(make([]ParsedMessage, 3), mtime)
	for _, m := range out {
		assert.True(t, mtime.Equal(m.Timestamp))
	}
}
