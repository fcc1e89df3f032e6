package models

import (
	"github.com/shopspring/decimal"
)

// Receipt is an immutable proof-of-payment snapshot generated once a payment
// completes. Amount and currency are copied from the payment at generation
// time; later changes to payment metadata do not touch the receipt.
//
// The unique index on PaymentID is the backstop that guarantees at most one
// receipt per payment even if two executions race past the existence check.
type Receipt struct {
	BaseModel
	ReceiptNumber string          `gorm:"size:32;uniqueIndex;not null" json:"receiptNumber"`
	PaymentID     string          `gorm:"size:36;uniqueIndex;not null" json:"paymentId"`
	UserID        string          `gorm:"size:36;index;not null" json:"userId"`
	AppointmentID *string         `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	PayerName     string          `gorm:"size:200" json:"payerName"`
	PayerEmail    string          `gorm:"size:255" json:"payerEmail"`
	TransactionID string          `gorm:"size:100" json:"transactionId"`
	Description   string          `gorm:"size:255" json:"description"`

	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}
