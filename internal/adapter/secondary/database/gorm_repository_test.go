package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/paybridge/payment-orchestrator/internal/constant/model/db"
	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

func newTestRepository(t *testing.T) output.TransactionRepository {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&db.Transaction{}, &db.Refund{}))
	return NewGormTransactionRepository(gormDB)
}

func newPendingTransaction(reference string) *core.Transaction {
	return &core.Transaction{
		Reference:     reference,
		Amount:        decimal.NewFromInt(5000),
		Currency:      "NGN",
		CustomerEmail: "customer@example.com",
		CustomerName:  "Ada Obi",
		Status:        core.StatusPending,
		Provider:      core.ProviderPaystack,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestCreateAndGetByReference(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	tx := newPendingTransaction("PS_create1")
	tx.GatewayResponse = []byte(`{"status":true}`)
	require.NoError(t, repo.Create(ctx, tx))
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, core.StatusPending, tx.LoadedStatus)

	got, err := repo.GetByReference(ctx, "PS_create1")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "customer@example.com", got.CustomerEmail)
	assert.Equal(t, core.ProviderPaystack, got.Provider)
	assert.Equal(t, core.StatusPending, got.Status)
	assert.Equal(t, core.StatusPending, got.LoadedStatus)
	assert.JSONEq(t, `{"status":true}`, string(got.GatewayResponse))
}

func TestGetByReferenceNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	_, err := repo.GetByReference(context.Background(), "PS_unknown")
	require.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func TestUpdateAppliesTransition(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	tx := newPendingTransaction("PS_update1")
	require.NoError(t, repo.Create(ctx, tx))

	loaded, err := repo.GetByReference(ctx, "PS_update1")
	require.NoError(t, err)

	_, err = loaded.ApplyStatus(core.StatusSuccessful, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, loaded))
	assert.Equal(t, core.StatusSuccessful, loaded.LoadedStatus)

	got, err := repo.GetByReference(ctx, "PS_update1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusSuccessful, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestUpdateDetectsLostRace(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	tx := newPendingTransaction("PS_race1")
	require.NoError(t, repo.Create(ctx, tx))

	// Two readers load the same pending record.
	first, err := repo.GetByReference(ctx, "PS_race1")
	require.NoError(t, err)
	second, err := repo.GetByReference(ctx, "PS_race1")
	require.NoError(t, err)

	_, err = first.ApplyStatus(core.StatusSuccessful, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))

	// The second writer's guard status is stale now.
	_, err = second.ApplyStatus(core.StatusFailed, time.Now().UTC())
	require.NoError(t, err)
	require.ErrorIs(t, repo.Update(ctx, second), core.ErrStaleTransaction)

	got, err := repo.GetByReference(ctx, "PS_race1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusSuccessful, got.Status)
}

func TestUpdateUnknownReference(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	tx := newPendingTransaction("PS_ghost1")
	tx.LoadedStatus = core.StatusPending
	require.ErrorIs(t, repo.Update(context.Background(), tx), core.ErrTransactionNotFound)
}

func TestListByCustomerEmailNewestFirst(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, ref := range []string{"PS_old", "PS_mid", "PS_new"} {
		tx := newPendingTransaction(ref)
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, tx))
	}
	other := newPendingTransaction("PS_other")
	other.CustomerEmail = "someone-else@example.com"
	require.NoError(t, repo.Create(ctx, other))

	txs, err := repo.ListByCustomerEmail(ctx, "customer@example.com")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "PS_new", txs[0].Reference)
	assert.Equal(t, "PS_mid", txs[1].Reference)
	assert.Equal(t, "PS_old", txs[2].Reference)
}

func TestCreateRefund(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	tx := newPendingTransaction("PS_parent1")
	require.NoError(t, repo.Create(ctx, tx))

	processed := time.Now().UTC()
	refund := &core.Refund{
		Reference:            "RF_child1",
		TransactionReference: "PS_parent1",
		Amount:               decimal.NewFromInt(1000),
		Currency:             "NGN",
		Reason:               "customer request",
		Status:               core.StatusRefunded,
		Provider:             core.ProviderPaystack,
		CreatedAt:            time.Now().UTC(),
		ProcessedAt:          &processed,
	}
	require.NoError(t, repo.CreateRefund(ctx, refund))
	assert.NotEmpty(t, refund.ID)
}
