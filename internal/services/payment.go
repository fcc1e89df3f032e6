package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/paypal"
)

// PaymentService drives the payment lifecycle against the external gateway:
// create intent, execute after approval, cancel. Receipt generation hangs
// off successful execution.
type PaymentService struct {
	db       *gorm.DB
	gateway  paypal.Client
	receipts *ReceiptService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(db *gorm.DB, gateway paypal.Client, receipts *ReceiptService) *PaymentService {
	return &PaymentService{db: db, gateway: gateway, receipts: receipts}
}

// CreatePaymentInput carries the parameters for opening a payment intent.
type CreatePaymentInput struct {
	UserID        string
	AppointmentID *string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	ReturnURL     string
	CancelURL     string
	Method        string
}

// Create opens an intent with the gateway and persists the local payment row
// in CREATED state. The gateway call happens first: a failed gateway call
// must not leave an orphan local row.
func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if in.Currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidArgument)
	}

	if in.AppointmentID != nil {
		var appointment models.Appointment
		if err := s.db.WithContext(ctx).First(&appointment, "id = ?", *in.AppointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, *in.AppointmentID)
			}
			return nil, err
		}
	}

	created, err := s.gateway.CreatePayment(ctx, paypal.CreatePaymentRequest{
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		ReturnURL:   in.ReturnURL,
		CancelURL:   in.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create payment: %v", ErrExternalService, err)
	}

	payment := models.Payment{
		UserID:          in.UserID,
		AppointmentID:   in.AppointmentID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		Description:     in.Description,
		Status:          models.PaymentCreated,
		Method:          in.Method,
		PayPalPaymentID: created.PaymentID,
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}

	payment.ApprovalURL = created.ApprovalURL
	return &payment, nil
}

// Execute finalizes an approved payment with the gateway. On gateway-reported
// success the payment moves to COMPLETED and the receipt is generated in the
// same transaction, so a completed-but-unreceipted payment cannot persist
// past this call. On gateway-reported non-success the payment is marked
// FAILED and the failure is still returned to the caller: the local state
// change records what happened.
func (s *PaymentService) Execute(ctx context.Context, gatewayPaymentID, payerID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("pay_pal_payment_id = ?", gatewayPaymentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, gatewayPaymentID)
		}
		return nil, err
	}

	if !payment.Status.CanTransitionTo(models.PaymentCompleted) {
		return nil, fmt.Errorf("%w: cannot execute payment in status %s", ErrInvalidState, payment.Status)
	}

	result, err := s.gateway.ExecutePayment(ctx, gatewayPaymentID, payerID)
	if err != nil {
		// Transport-level failure: the gateway may or may not have
		// processed the execution, so the local status is left alone
		// and the caller may retry.
		return nil, fmt.Errorf("%w: execute payment: %v", ErrExternalService, err)
	}

	if !result.Approved() {
		payment.Status = models.PaymentFailed
		if saveErr := s.db.WithContext(ctx).Save(&payment).Error; saveErr != nil {
			return nil, saveErr
		}
		return &payment, fmt.Errorf("%w: gateway reported state %q", ErrExternalService, result.State)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.Status = models.PaymentCompleted
		payment.CompletedAt = &now
		payment.PayerID = payerID
		payment.PayerEmail = result.PayerEmail
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		_, err := s.receipts.Generate(tx, &payment, result)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// Cancel marks a payment cancelled by user action. Completed (and otherwise
// terminal) payments cannot be cancelled.
func (s *PaymentService) Cancel(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pay_pal_payment_id = ?", gatewayPaymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %s", ErrNotFound, gatewayPaymentID)
			}
			return err
		}

		if !payment.Status.CanTransitionTo(models.PaymentCancelled) {
			return fmt.Errorf("%w: cannot cancel payment in status %s", ErrInvalidState, payment.Status)
		}

		payment.Status = models.PaymentCancelled
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Get fetches one payment by local id.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
		}
		return nil, err
	}
	return &payment, nil
}

// GetByGatewayID fetches one payment by its gateway-assigned id.
func (s *PaymentService) GetByGatewayID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).Where("pay_pal_payment_id = ?", gatewayPaymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, gatewayPaymentID)
		}
		return nil, err
	}
	return &payment, nil
}

// ListForUser returns a user's payments ordered by creation time descending.
func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

// ListForAppointment returns the payments linked to an appointment,
// ordered by creation time descending.
func (s *PaymentService) ListForAppointment(ctx context.Context, appointmentID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}
