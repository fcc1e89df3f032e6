package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/paypal"
)

// receiptNumberAttempts bounds the regenerate-on-collision loop. Collisions
// on 8 random hex characters within one day are vanishingly rare; the bound
// only keeps a broken random source from spinning forever.
const receiptNumberAttempts = 5

// ReceiptService derives immutable receipts from completed payments.
type ReceiptService struct {
	db *gorm.DB
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// Generate creates the receipt for a completed payment, or returns the
// existing one. It is idempotent by payment id: the pre-check catches the
// common case, and the unique index on payment_id catches the race where two
// executions pass the check together — the duplicate-key insert is then
// resolved by fetching the winner's row.
//
// It runs on the caller's transaction handle so that payment completion and
// receipt creation commit atomically.
func (s *ReceiptService) Generate(tx *gorm.DB, payment *models.Payment, details *paypal.ExecutePaymentResult) (*models.Receipt, error) {
	var existing models.Receipt
	err := tx.Where("payment_id = ?", payment.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	number, err := s.freeReceiptNumber(tx)
	if err != nil {
		return nil, err
	}

	payerName := ""
	payerEmail := ""
	transactionID := ""
	if details != nil {
		payerName = strings.TrimSpace(details.PayerFirstName + " " + details.PayerLastName)
		payerEmail = details.PayerEmail
		transactionID = details.TransactionID
	}

	receipt := models.Receipt{
		ReceiptNumber: number,
		PaymentID:     payment.ID,
		UserID:        payment.UserID,
		AppointmentID: payment.AppointmentID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PayerName:     payerName,
		PayerEmail:    payerEmail,
		TransactionID: transactionID,
		Description:   payment.Description,
	}

	if err := tx.Create(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: another execution inserted the receipt
			// between our check and insert.
			var winner models.Receipt
			if ferr := tx.Where("payment_id = ?", payment.ID).First(&winner).Error; ferr == nil {
				return &winner, nil
			}
			return nil, err
		}
		return nil, err
	}

	return &receipt, nil
}

// freeReceiptNumber generates a receipt number of the form
// RCP-YYYYMMDD-XXXXXXXX and regenerates on a uniqueness collision.
func (s *ReceiptService) freeReceiptNumber(tx *gorm.DB) (string, error) {
	for i := 0; i < receiptNumberAttempts; i++ {
		number := NewReceiptNumber(time.Now())

		var count int64
		if err := tx.Model(&models.Receipt{}).Where("receipt_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not allocate a free receipt number")
}

// NewReceiptNumber formats a receipt number for the given generation date:
// RCP-, the date as YYYYMMDD, and 8 uppercase hex characters from a random
// identifier.
func NewReceiptNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("RCP-%s-%s", at.Format("20060102"), suffix)
}

// Get fetches one receipt by id.
func (s *ReceiptService) Get(ctx context.Context, receiptID string) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).First(&receipt, "id = ?", receiptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: receipt %s", ErrNotFound, receiptID)
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByNumber fetches one receipt by its receipt number.
func (s *ReceiptService) GetByNumber(ctx context.Context, number string) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).Where("receipt_number = ?", number).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: receipt %s", ErrNotFound, number)
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByPayment fetches the receipt belonging to a payment.
func (s *ReceiptService) GetByPayment(ctx context.Context, paymentID string) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no receipt for payment %s", ErrNotFound, paymentID)
		}
		return nil, err
	}
	return &receipt, nil
}

// ListForUser returns a user's receipts, newest first.
func (s *ReceiptService) ListForUser(ctx context.Context, userID string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&receipts).Error
	return receipts, err
}

// ListForAppointment returns the receipts linked to an appointment.
func (s *ReceiptService) ListForAppointment(ctx context.Context, appointmentID string) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at desc").
		Find(&receipts).Error
	return receipts, err
}
