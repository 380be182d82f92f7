package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrapped: %w", Conflict("twice"))))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))

	assert.Equal(t, "twice", Message(fmt.Errorf("wrapped: %w", Conflict("twice"))))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
}

func TestUnexpectedKeepsClassifiedErrors(t *testing.T) {
	assert.NoError(t, Unexpected("op", nil))

	nf := NotFound("gone")
	assert.Same(t, nf, Unexpected("op", nf))

	cause := errors.New("disk full")
	err := Unexpected("Repo.Save", cause)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, BookingStatusPaymentReleased.Valid())
	assert.False(t, BookingStatus("done").Valid())
	assert.True(t, BookingStatusDisputed.Terminal())
	assert.False(t, BookingStatusInProgress.Terminal())
	assert.True(t, RequestStatusBidding.AcceptingBids())
	assert.False(t, RequestStatusAssigned.AcceptingBids())
}
