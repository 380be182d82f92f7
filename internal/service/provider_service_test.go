package service

import (
	"context"
	"testing"

	"servicehub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderProfileUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.db)
	ctx := context.Background()
	provider := f.provider(t)

	name := "  Ace Repairs "
	bio := "same day"
	inactive := false
	got, err := svc.UpdateProfile(ctx, provider, UpdateProviderInput{
		DisplayName: &name, Bio: &bio, CategoryID: &f.category.ID, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ace Repairs", got.DisplayName)
	assert.Equal(t, "same day", got.Bio)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, f.category.ID, *got.CategoryID)

	blank := " "
	_, err = svc.UpdateProfile(ctx, provider, UpdateProviderInput{DisplayName: &blank})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	missing := uint(777)
	_, err = svc.UpdateProfile(ctx, provider, UpdateProviderInput{CategoryID: &missing})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.UpdateProfile(ctx, f.client(t), UpdateProviderInput{Bio: &bio})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestProviderProfileRating(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.db)
	ctx := context.Background()
	client := f.client(t)
	provider := f.provider(t)

	for _, rating := range []int{5, 4} {
		b := f.completedBooking(t, client, provider, 100)
		_, err := f.bookings.UserConfirmBooking(ctx, client, b.ID, rating, "")
		require.NoError(t, err)
	}

	got, err := svc.GetProfile(ctx, provider.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.RatingCount)
	assert.InDelta(t, 4.5, got.AverageRating, 0.001)

	_, err = svc.GetProfile(ctx, client.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.db)
	ctx := context.Background()
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	c, err := svc.CreateCategory(ctx, admin, " Gardening ", "lawns")
	require.NoError(t, err)
	assert.Equal(t, "Gardening", c.Name)

	_, err = svc.CreateCategory(ctx, admin, "Gardening", "")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	_, err = svc.CreateCategory(ctx, admin, "", "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.CreateCategory(ctx, f.client(t), "Cleaning", "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
