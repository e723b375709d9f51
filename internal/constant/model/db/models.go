package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction is the payment transaction row. The gateway reference is the
// lookup key; the row ID only exists for storage identity.
type Transaction struct {
	ID              string          `gorm:"type:varchar(36);primary_key" json:"id"`
	Reference       string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"reference"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	CustomerEmail   string          `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerName    string          `gorm:"type:varchar(255)" json:"customer_name"`
	Status          string          `gorm:"type:varchar(20);not null" json:"status"`
	Provider        string          `gorm:"type:varchar(20);not null" json:"provider"`
	GatewayResponse datatypes.JSON  `json:"gateway_response"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate assigns identity and creation time when absent.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Refund is a refund row, a logical child of a Transaction. Its provider
// always equals the parent's.
type Refund struct {
	ID                   string          `gorm:"type:varchar(36);primary_key" json:"id"`
	Reference            string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"reference"`
	TransactionReference string          `gorm:"type:varchar(255);not null;index" json:"transaction_reference"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency             string          `gorm:"type:varchar(3);not null" json:"currency"`
	Reason               string          `gorm:"type:varchar(255)" json:"reason"`
	Status               string          `gorm:"type:varchar(20);not null" json:"status"`
	Provider             string          `gorm:"type:varchar(20);not null" json:"provider"`
	GatewayResponse      datatypes.JSON  `json:"gateway_response"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	ProcessedAt          *time.Time      `json:"processed_at"`
}

func (Refund) TableName() string {
	return "refunds"
}

func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
