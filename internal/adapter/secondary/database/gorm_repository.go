package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/paybridge/payment-orchestrator/internal/constant/model/db"
	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

// GormTransactionRepository is a secondary adapter implementing the
// TransactionRepository output port.
type GormTransactionRepository struct {
	gormDB *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(gormDB *gorm.DB) output.TransactionRepository {
	return &GormTransactionRepository{gormDB: gormDB}
}

func toCore(t *db.Transaction) *core.Transaction {
	return &core.Transaction{
		ID:              t.ID,
		Reference:       t.Reference,
		Amount:          t.Amount,
		Currency:        t.Currency,
		CustomerEmail:   t.CustomerEmail,
		CustomerName:    t.CustomerName,
		Status:          core.Status(t.Status),
		Provider:        core.Provider(t.Provider),
		GatewayResponse: []byte(t.GatewayResponse),
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
		LoadedStatus:    core.Status(t.Status),
	}
}

func fromCore(t *core.Transaction) *db.Transaction {
	return &db.Transaction{
		ID:              t.ID,
		Reference:       t.Reference,
		Amount:          t.Amount,
		Currency:        t.Currency,
		CustomerEmail:   t.CustomerEmail,
		CustomerName:    t.CustomerName,
		Status:          string(t.Status),
		Provider:        string(t.Provider),
		GatewayResponse: datatypes.JSON(t.GatewayResponse),
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
	}
}

// Create persists a new transaction and reflects the generated identity back
// onto the entity.
func (r *GormTransactionRepository) Create(ctx context.Context, t *core.Transaction) error {
	row := fromCore(t)
	if err := r.gormDB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	t.ID = row.ID
	t.CreatedAt = row.CreatedAt
	t.LoadedStatus = t.Status
	return nil
}

// GetByReference retrieves the transaction owning the reference.
func (r *GormTransactionRepository) GetByReference(ctx context.Context, reference string) (*core.Transaction, error) {
	var row db.Transaction
	if err := r.gormDB.WithContext(ctx).Where("reference = ?", reference).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return toCore(&row), nil
}

// Update writes the mutable fields in a single statement guarded by the
// status the entity was loaded with, so a concurrent read-modify-write on
// the same record cannot overwrite a finished transition.
func (r *GormTransactionRepository) Update(ctx context.Context, t *core.Transaction) error {
	res := r.gormDB.WithContext(ctx).
		Model(&db.Transaction{}).
		Where("reference = ? AND status = ?", t.Reference, string(t.LoadedStatus)).
		Updates(map[string]any{
			"status":           string(t.Status),
			"completed_at":     t.CompletedAt,
			"gateway_response": datatypes.JSON(t.GatewayResponse),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.gormDB.WithContext(ctx).Model(&db.Transaction{}).
			Where("reference = ?", t.Reference).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if count == 0 {
			return core.ErrTransactionNotFound
		}
		return core.ErrStaleTransaction
	}
	t.LoadedStatus = t.Status
	return nil
}

// ListByCustomerEmail returns the customer's transactions newest first.
func (r *GormTransactionRepository) ListByCustomerEmail(ctx context.Context, email string) ([]core.Transaction, error) {
	var rows []db.Transaction
	if err := r.gormDB.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, *toCore(&rows[i]))
	}
	return out, nil
}

// CreateRefund persists a refund record under its parent transaction.
func (r *GormTransactionRepository) CreateRefund(ctx context.Context, refund *core.Refund) error {
	row := &db.Refund{
		ID:                   refund.ID,
		Reference:            refund.Reference,
		TransactionReference: refund.TransactionReference,
		Amount:               refund.Amount,
		Currency:             refund.Currency,
		Reason:               refund.Reason,
		Status:               string(refund.Status),
		Provider:             string(refund.Provider),
		GatewayResponse:      datatypes.JSON(refund.GatewayResponse),
		CreatedAt:            refund.CreatedAt,
		ProcessedAt:          refund.ProcessedAt,
	}
	if err := r.gormDB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	refund.ID = row.ID
	refund.CreatedAt = row.CreatedAt
	return nil
}
