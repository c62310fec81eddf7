package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingColumnNames = []string{"id", "owner_id", "title", "description", "sale_type", "address", "postcode",
	"latitude", "longitude", "status", "payment_status", "start_date", "end_date", "created_at", "updated_at"}

func TestListingRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ListingRepository{querier: mock, logger: newTestLogger()}

	l, err := listing.NewListing("owner-1", "Clear-out", "", listing.SaleTypeGarageSale, "1 Main St", "3101", nil, nil)
	require.NoError(t, err)
	l.Latitude, l.Longitude = -37.8, 145.03

	t.Run("AssignsID", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO garage_sales`).
			WithArgs(pgxmock.AnyArg(), "owner-1", "Clear-out", "", listing.SaleTypeGarageSale, "1 Main St", "3101",
				-37.8, 145.03, listing.StatusPendingPayment, listing.PaymentStatusUnpaid,
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(ctx, l))
		_, err := uuid.Parse(l.ID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO garage_sales`).WillReturnError(errors.New("constraint"))

		err := repo.Create(ctx, l)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create listing")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ListingRepository{querier: mock, logger: newTestLogger()}
	id := uuid.NewString()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT.*FROM garage_sales WHERE id = \$1`).WithArgs(id).
			WillReturnRows(pgxmock.NewRows(listingColumnNames).AddRow(
				id, "owner-1", "Clear-out", "", listing.SaleTypeYardSale, "", "3000", -37.81, 144.96,
				listing.StatusActive, listing.PaymentStatusPaid, nil, nil, now, now))

		l, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, l.ID)
		assert.Equal(t, listing.SaleTypeYardSale, l.SaleType)
		assert.Nil(t, l.StartDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM garage_sales`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, listing.ErrListingNotFound{ListingID: id})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MalformedIDSkipsQuery", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingRepository_ListByStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ListingRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()

	mock.ExpectQuery(`FROM garage_sales WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(listing.StatusActive, 50).
		WillReturnRows(pgxmock.NewRows(listingColumnNames).
			AddRow("a", "o1", "A", "", listing.SaleTypeGarageSale, "", "3101", 1.0, 2.0, listing.StatusActive, listing.PaymentStatusPaid, nil, nil, now, now).
			AddRow("b", "o2", "B", "", listing.SaleTypeEstateSale, "", "3000", 3.0, 4.0, listing.StatusActive, listing.PaymentStatusPaid, nil, nil, now, now))

	listings, err := repo.ListByStatus(ctx, listing.StatusActive, 50)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "a", listings[0].ID)
	assert.Equal(t, "b", listings[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ListingRepository{querier: mock, logger: newTestLogger()}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE garage_sales\s+SET status = \$1, payment_status = \$2`).
			WithArgs(listing.StatusPendingApproval, listing.PaymentStatusPaid, pgxmock.AnyArg(), "id-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, "id-1", listing.StatusPendingApproval, listing.PaymentStatusPaid))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE garage_sales`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, "id-2", listing.StatusActive, listing.PaymentStatusPaid)
		assert.ErrorIs(t, err, listing.ErrListingNotFound{ListingID: "id-2"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListingRepository_WithTx(t *testing.T) {
	repo := &ListingRepository{logger: newTestLogger()}

	mockTx := pgx.Tx(nil)
	txRepo := repo.WithTx(mockTx)

	listingRepo, ok := txRepo.(*ListingRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, listingRepo.querier)
}
