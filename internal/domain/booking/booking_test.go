package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusRequested, StatusApproved, true},
		{StatusRequested, StatusRejected, true},
		{StatusRequested, StatusCancelled, true},
		{StatusRequested, StatusCompleted, false},
		{StatusRequested, StatusRequested, false},
		{StatusApproved, StatusRejected, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusApproved, false},
		{StatusApproved, StatusRequested, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusRequested, false},
		{StatusCancelled, StatusApproved, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusRequested.Active())
	assert.True(t, StatusApproved.Active())
	assert.False(t, StatusRejected.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, StatusCompleted.Active())

	assert.False(t, StatusRequested.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("pending")
	assert.Error(t, err)
}

func TestTransitionRefusesInvalidTarget(t *testing.T) {
	b := &Booking{Status: StatusRequested}
	err := b.Transition(StatusCompleted, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusRequested, b.Status)
}

func TestMarkCancelledValidatesReason(t *testing.T) {
	b := &Booking{Status: StatusRequested}
	err := b.MarkCancelled("user-1", "   ", time.Now())
	assert.ErrorIs(t, err, ErrReasonRequired)

	err = b.MarkCancelled("user-1", strings.Repeat("x", MaxReasonLength+1), time.Now())
	assert.ErrorIs(t, err, ErrReasonTooLong)
	assert.Equal(t, StatusRequested, b.Status)

	err = b.MarkCancelled("user-1", " overslept ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, "overslept", b.CancellationReason)
	assert.EqualValues(t, "user-1", b.CancelledBy)
}

func TestMarkCancelledRefusesTerminal(t *testing.T) {
	b := &Booking{Status: StatusCompleted}
	err := b.MarkCancelled("user-1", "too late", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQueryNormalized(t *testing.T) {
	q := Query{}.Normalized()
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Zero(t, q.Offset)

	q = Query{Limit: 1000, Offset: -2}.Normalized()
	assert.Equal(t, MaxPageSize, q.Limit)
	assert.Zero(t, q.Offset)

	q = Query{Limit: 7, Offset: 3}.Normalized()
	assert.Equal(t, 7, q.Limit)
	assert.Equal(t, 3, q.Offset)
}

func TestQueryMatches(t *testing.T) {
	b := &Booking{
		RequesterID: "u1",
		OfferingID:  "off1",
		OwnerID:     "u2",
		Status:      StatusApproved,
	}
	assert.True(t, Query{}.Matches(b))
	assert.True(t, Query{RequesterID: "u1", OwnerID: "u2"}.Matches(b))
	assert.False(t, Query{RequesterID: "u2"}.Matches(b))
	assert.False(t, Query{OfferingID: "off2"}.Matches(b))
	assert.True(t, Query{Statuses: []Status{StatusRequested, StatusApproved}}.Matches(b))
	assert.False(t, Query{Statuses: []Status{StatusCompleted}}.Matches(b))
}
