package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockBalanceEntryRepository(t *testing.T) (*GormBalanceEntryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBalanceEntryRepository(gormDB), mock, mockDB
}

func TestGormBalanceEntryRepository_Save(t *testing.T) {
	t.Run("inserts a new entry", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()
		entry, err := partner.NewBalanceEntry(
			tenantID, partner.EntityKindCustomer, entityID,
			partner.BalanceEntryTypeCreditSale,
			decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100),
		)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "balance_entries"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBalanceEntryRepository_FindByEntity(t *testing.T) {
	t.Run("finds entries newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "entity_kind", "entity_id", "entry_type", "delta", "balance_before", "balance_after"}).
			AddRow(uuid.New(), tenantID, "customer", entityID, "PAYMENT", "-50", "100", "50").
			AddRow(uuid.New(), tenantID, "customer", entityID, "CREDIT_SALE", "100", "0", "100")

		mock.ExpectQuery(`SELECT \* FROM "balance_entries" WHERE tenant_id = \$1 AND entity_kind = \$2 AND entity_id = \$3 ORDER BY created_at DESC`).
			WithArgs(tenantID, partner.EntityKindCustomer, entityID).
			WillReturnRows(rows)

		entries, err := repo.FindByEntity(context.Background(), tenantID, partner.EntityKindCustomer, entityID, shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, partner.BalanceEntryTypePayment, entries[0].EntryType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by entry type", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "entity_kind", "entity_id", "entry_type", "delta", "balance_before", "balance_after"}).
			AddRow(uuid.New(), tenantID, "customer", entityID, "PAYMENT", "-50", "100", "50")

		mock.ExpectQuery(`SELECT \* FROM "balance_entries" WHERE \(tenant_id = \$1 AND entity_kind = \$2 AND entity_id = \$3\) AND entry_type = \$4 ORDER BY created_at DESC`).
			WithArgs(tenantID, partner.EntityKindCustomer, entityID, "PAYMENT").
			WillReturnRows(rows)

		entries, err := repo.FindByEntity(context.Background(), tenantID, partner.EntityKindCustomer, entityID, shared.Filter{
			Filters: map[string]interface{}{"entry_type": "PAYMENT"},
		})

		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBalanceEntryRepository_FindBySource(t *testing.T) {
	t.Run("finds entries for one source document oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		sourceID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "entity_kind", "entity_id", "entry_type", "delta", "balance_before", "balance_after", "source_id"}).
			AddRow(uuid.New(), tenantID, "customer", uuid.New(), "CREDIT_SALE", "100", "0", "100", sourceID)

		mock.ExpectQuery(`SELECT \* FROM "balance_entries" WHERE tenant_id = \$1 AND source_id = \$2 ORDER BY created_at ASC`).
			WithArgs(tenantID, sourceID).
			WillReturnRows(rows)

		entries, err := repo.FindBySource(context.Background(), tenantID, sourceID)

		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBalanceEntryRepository_SumDeltasSince(t *testing.T) {
	t.Run("sums deltas recorded after the given time", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()
		since := time.Now().Add(-24 * time.Hour)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(delta\), 0\) as total FROM "balance_entries" WHERE tenant_id = \$1 AND entity_kind = \$2 AND entity_id = \$3 AND created_at > \$4`).
			WithArgs(tenantID, partner.EntityKindCustomer, entityID, since).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("150.75"))

		total, err := repo.SumDeltasSince(context.Background(), tenantID, partner.EntityKindCustomer, entityID, since)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("150.75")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when no entries match", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()
		since := time.Now().Add(-time.Hour)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(delta\), 0\) as total FROM "balance_entries"`).
			WithArgs(tenantID, partner.EntityKindSupplier, entityID, since).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

		total, err := repo.SumDeltasSince(context.Background(), tenantID, partner.EntityKindSupplier, entityID, since)

		assert.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBalanceEntryRepository_CountByEntity(t *testing.T) {
	t.Run("counts entries for one entity", func(t *testing.T) {
		repo, mock, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		entityID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "balance_entries" WHERE tenant_id = \$1 AND entity_kind = \$2 AND entity_id = \$3`).
			WithArgs(tenantID, partner.EntityKindCustomer, entityID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountByEntity(context.Background(), tenantID, partner.EntityKindCustomer, entityID)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBalanceEntryRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements BalanceEntryRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockBalanceEntryRepository(t)
		defer mockDB.Close()

		var _ partner.BalanceEntryRepository = repo
	})
}
