package repository

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/database"
	"beautybook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *OfferRepository {
	t.Helper()
	db, err := database.Connect("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return NewOfferRepository(db)
}

func seedOffer(t *testing.T, repo *OfferRepository, token string) *domain.Offer {
	t.Helper()
	offer := &domain.Offer{
		CustomerID:      1,
		BeauticianID:    5,
		ServiceID:       10,
		OfferType:       domain.OfferIntervalReminder,
		DiscountPercent: 15,
		OriginalPrice:   5000,
		DiscountedPrice: 4250,
		Message:         "Hi!",
		Status:          domain.OfferPending,
		LinkToken:       token,
		CreatedAt:       time.Now(),
		ExpiresAt:       time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), offer))
	require.NotZero(t, offer.ID)
	return offer
}

func TestOfferRepository_TransitionStatus(t *testing.T) {
	repo := setupTestDB(t)
	offer := seedOffer(t, repo, "tok-transition")
	ctx := context.Background()

	moved, err := repo.TransitionStatus(ctx, offer.ID, domain.OfferPending, domain.OfferSent)
	require.NoError(t, err)
	assert.True(t, moved)

	// the optimistic guard refuses a stale from-status
	moved, err = repo.TransitionStatus(ctx, offer.ID, domain.OfferPending, domain.OfferSent)
	require.NoError(t, err)
	assert.False(t, moved)

	got, err := repo.GetByToken(ctx, "tok-transition")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.OfferSent, got.Status)
}

func TestOfferRepository_TransitionStampsTimestamps(t *testing.T) {
	repo := setupTestDB(t)
	offer := seedOffer(t, repo, "tok-stamps")
	ctx := context.Background()

	_, err := repo.TransitionStatus(ctx, offer.ID, domain.OfferPending, domain.OfferSent)
	require.NoError(t, err)

	moved, err := repo.TransitionStatus(ctx, offer.ID, domain.OfferSent, domain.OfferClicked)
	require.NoError(t, err)
	require.True(t, moved)

	got, err := repo.GetByToken(ctx, "tok-stamps")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferClicked, got.Status)
	assert.NotNil(t, got.ClickedAt)
	assert.Nil(t, got.BookedAt)

	moved, err = repo.TransitionStatus(ctx, offer.ID, domain.OfferClicked, domain.OfferBooked)
	require.NoError(t, err)
	require.True(t, moved)

	got, err = repo.GetByToken(ctx, "tok-stamps")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferBooked, got.Status)
	assert.NotNil(t, got.BookedAt)
}

func TestOfferRepository_GetByToken_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	got, err := repo.GetByToken(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOfferRepository_GetByCustomerID_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	older := seedOffer(t, repo, "tok-older")
	olderModel := toOfferModel(older)
	olderModel.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.db.Save(&olderModel).Error)

	newer := seedOffer(t, repo, "tok-newer")

	offers, err := repo.GetByCustomerID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, newer.ID, offers[0].ID)
	assert.Equal(t, older.ID, offers[1].ID)
}
