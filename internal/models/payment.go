package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "CREATED"
	PaymentApproved  PaymentStatus = "APPROVED"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// paymentTransitions is the allowed transition table. COMPLETED, FAILED and
// CANCELLED are terminal; a failed execution requires a fresh payment intent.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentCreated:  {PaymentApproved, PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentApproved: {PaymentCompleted, PaymentFailed, PaymentCancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal status change.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transition.
func (s PaymentStatus) IsTerminal() bool {
	return len(paymentTransitions[s]) == 0
}

// Payment represents a local record of a gateway payment intent and its outcome.
type Payment struct {
	BaseModel
	UserID          string          `gorm:"size:36;index;not null" json:"userId"`
	AppointmentID   *string         `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	Description     string          `gorm:"size:255" json:"description"`
	Status          PaymentStatus   `gorm:"size:20;default:'CREATED'" json:"status"`
	Method          string          `gorm:"size:30" json:"method"`
	PayPalPaymentID string          `gorm:"size:100;uniqueIndex;not null" json:"paypalPaymentId"`
	PayerID         string          `gorm:"size:100" json:"payerId,omitempty"`
	PayerEmail      string          `gorm:"size:255" json:"payerEmail,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`

	// ApprovalURL is returned by the gateway at intent creation and handed
	// back to the caller for the redirect; it is not persisted.
	ApprovalURL string `gorm:"-" json:"approvalUrl,omitempty"`

	// Relations
	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Receipt *Receipt `gorm:"foreignKey:PaymentID" json:"-"`
}
