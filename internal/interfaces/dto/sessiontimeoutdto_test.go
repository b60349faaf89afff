package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

func TestRecordActivityRequest_ToActivityEvents(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Second)

	req := RecordActivityRequest{Events: []ActivityEventRequest{
		{Type: "keydown"},
		{Type: "scroll", ObservedAt: past.UnixMilli()},
		{Type: "pointermove", ObservedAt: now.Add(time.Hour).UnixMilli()},
	}}

	events := req.ToActivityEvents("sess-1", now)
	require.Len(t, events, 3)

	assert.Equal(t, timeout.EventKeyDown, events[0].Type)
	assert.Equal(t, now, events[0].ObservedAt)
	assert.Equal(t, "sess-1", events[0].SessionID)
	assert.True(t, past.Equal(events[1].ObservedAt))
	assert.Equal(t, now, events[2].ObservedAt)
}
