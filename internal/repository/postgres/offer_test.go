package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/database"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

func setupOfferRepo(t *testing.T) (*OfferRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOfferRepository(mock)
	return repo, mock
}

func sampleOffer() *domain.Offer {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Offer{
		ID:              "offer-001",
		ProductID:       "prod-001",
		VariantKey:      "1KG",
		DiscountedPrice: 800,
		StartDate:       now,
		EndDate:         now.Add(10 * 24 * time.Hour),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func offerColumnNames() []string {
	return []string{
		"id", "product_id", "variant_key", "discounted_price_cents",
		"start_date", "end_date", "is_active", "created_at", "updated_at",
	}
}

func offerRow(o *domain.Offer) *pgxmock.Rows {
	return pgxmock.NewRows(offerColumnNames()).
		AddRow(
			o.ID, o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
			o.StartDate, o.EndDate, o.IsActive, o.CreatedAt, o.UpdatedAt,
		)
}

func TestOfferRepository_Create_Success(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()

	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			o.ID, o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
			o.StartDate, o.EndDate, o.IsActive, o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Create_ExclusionViolation(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()

	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			o.ID, o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
			o.StartDate, o.EndDate, o.IsActive, o.CreatedAt, o.UpdatedAt,
		).
		WillReturnError(errors.New(`ERROR: conflicting key value violates exclusion constraint "offers_no_active_overlap" (SQLSTATE 23P01)`))

	err := repo.Create(context.Background(), o)
	assert.ErrorIs(t, err, apperrors.ErrOfferConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(offerColumnNames()))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_ListInEffect(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()
	now := o.StartDate.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(now).
		WillReturnRows(offerRow(o))

	offers, err := repo.ListInEffect(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, o.ID, offers[0].ID)
	assert.Equal(t, domain.VariantKey("1KG"), offers[0].VariantKey)
	assert.Equal(t, domain.Cents(800), offers[0].DiscountedPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_ListInEffect_Empty(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows(offerColumnNames()))

	offers, err := repo.ListInEffect(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, offers)
	assert.NotNil(t, offers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_ListActiveByProduct(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(o.ProductID).
		WillReturnRows(offerRow(o))

	offers, err := repo.ListActiveByProduct(context.Background(), o.ProductID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, o.ID, offers[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_List_WithFilter(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()
	active := true

	mock.ExpectQuery("SELECT (.+) FROM offers").
		WithArgs(o.ProductID, active, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(offerColumnNames(), "total_count")).
			AddRow(
				o.ID, o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
				o.StartDate, o.EndDate, o.IsActive, o.CreatedAt, o.UpdatedAt, 1,
			))

	offers, total, err := repo.List(context.Background(), repository.OfferFilter{
		ProductID: &o.ProductID,
		IsActive:  &active,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, offers, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Update_Conflict(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()

	mock.ExpectExec("UPDATE offers").
		WithArgs(
			o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
			o.StartDate, o.EndDate, o.IsActive, pgxmock.AnyArg(), o.ID,
		).
		WillReturnError(errors.New(`ERROR: conflicting key value violates exclusion constraint "offers_no_active_overlap" (SQLSTATE 23P01)`))

	err := repo.Update(context.Background(), o)
	assert.ErrorIs(t, err, apperrors.ErrOfferConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	o := sampleOffer()

	mock.ExpectExec("UPDATE offers").
		WithArgs(
			o.ProductID, string(o.VariantKey), int64(o.DiscountedPrice),
			o.StartDate, o.EndDate, o.IsActive, pgxmock.AnyArg(), o.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), o)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferRepository_Delete(t *testing.T) {
	repo, mock := setupOfferRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM offers").
		WithArgs("offer-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "offer-001")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
