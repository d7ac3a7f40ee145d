package order

import (
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineIn(status ShippingStatus) *Line {
	return &Line{ID: "l1", ShippingStatus: status}
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		from    ShippingStatus
		to      ShippingStatus
		changed bool
		wantErr bool
	}{
		{StatusNotShipped, StatusPacking, true, false},
		{StatusNotShipped, StatusDelivered, true, false},
		{StatusNotShipped, StatusCancelled, true, false},
		{StatusNotShipped, StatusNotShipped, false, false},
		{StatusPacking, StatusShipped, true, false},
		{StatusPacking, StatusNotShipped, false, true},
		{StatusShipped, StatusDelivered, true, false},
		{StatusShipped, StatusPacking, false, true},
		{StatusShipped, StatusCancelled, true, false},
		{StatusDelivered, StatusPacking, false, true},
		{StatusDelivered, StatusCancelled, false, true},
		{StatusDelivered, StatusDelivered, false, false},
		{StatusCancelled, StatusShipped, false, true},
		{StatusCancelled, StatusCancelled, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			l := lineIn(tt.from)
			changed, err := l.TransitionTo(tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidStateTransition)
				assert.ErrorIs(t, err, apperr.ErrConflict)
				assert.Equal(t, tt.from, l.ShippingStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.to, l.ShippingStatus)
		})
	}
}

func TestTransitionTouchesOnlyOnChange(t *testing.T) {
	l := lineIn(StatusPacking)
	_, err := l.TransitionTo(StatusPacking)
	require.NoError(t, err)
	assert.True(t, l.UpdatedAt.IsZero())

	_, err = l.TransitionTo(StatusShipped)
	require.NoError(t, err)
	assert.False(t, l.UpdatedAt.IsZero())
}

func TestTransitionUnknownStatus(t *testing.T) {
	_, err := lineIn(StatusNotShipped).TransitionTo("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestOverrideStatusAllowsBackwardMoves(t *testing.T) {
	l := lineIn(StatusDelivered)
	changed, err := l.OverrideStatus(StatusPacking)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusPacking, l.ShippingStatus)

	_, err = l.OverrideStatus("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
