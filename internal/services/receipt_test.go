package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/paypal"
)

func TestGenerateReceiptIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := NewReceiptService(db)

	payment := models.Payment{
		UserID:          "u-1",
		Amount:          decimal.RequireFromString("150.00"),
		Currency:        "USD",
		Description:     "Consultation",
		Status:          models.PaymentCompleted,
		PayPalPaymentID: "PAY-1",
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	details := &paypal.ExecutePaymentResult{
		State:          "approved",
		TransactionID:  "TXN-1",
		PayerEmail:     "payer@example.com",
		PayerFirstName: "Pat",
		PayerLastName:  "Smith",
	}

	first, err := svc.Generate(db, &payment, details)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := svc.Generate(db, &payment, details)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call returned a different receipt: %s vs %s", first.ID, second.ID)
	}
	if first.ReceiptNumber != second.ReceiptNumber {
		t.Errorf("receipt numbers differ: %s vs %s", first.ReceiptNumber, second.ReceiptNumber)
	}

	var count int64
	db.Model(&models.Receipt{}).Where("payment_id = ?", payment.ID).Count(&count)
	if count != 1 {
		t.Errorf("receipt count = %d, want 1", count)
	}
}

func TestGenerateReceiptSnapshotsPaymentFields(t *testing.T) {
	db := openTestDB(t)
	svc := NewReceiptService(db)

	appointmentID := "appt-1"
	payment := models.Payment{
		UserID:          "u-1",
		AppointmentID:   &appointmentID,
		Amount:          decimal.RequireFromString("42.75"),
		Currency:        "EUR",
		Description:     "Follow-up",
		Status:          models.PaymentCompleted,
		PayPalPaymentID: "PAY-2",
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}

	receipt, err := svc.Generate(db, &payment, &paypal.ExecutePaymentResult{
		State:          "approved",
		TransactionID:  "TXN-2",
		PayerEmail:     "payer@example.com",
		PayerFirstName: "Pat",
		PayerLastName:  "Smith",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !receipt.Amount.Equal(payment.Amount) || receipt.Currency != "EUR" {
		t.Errorf("snapshot = %s %s, want 42.75 EUR", receipt.Amount, receipt.Currency)
	}
	if receipt.AppointmentID == nil || *receipt.AppointmentID != appointmentID {
		t.Error("appointment id should be carried onto the receipt")
	}
	if receipt.PayerName != "Pat Smith" {
		t.Errorf("payer name = %q", receipt.PayerName)
	}
}

func TestNewReceiptNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number := NewReceiptNumber(at)
		if !receiptNumberPattern.MatchString(number) {
			t.Fatalf("number %q does not match RCP-YYYYMMDD-XXXXXXXX", number)
		}
		if number[:12] != "RCP-20260314" {
			t.Fatalf("number %q does not embed the generation date", number)
		}
		if seen[number] {
			t.Fatalf("duplicate number %q in 50 draws", number)
		}
		seen[number] = true
	}
}

func TestGetReceiptByNumberNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewReceiptService(db)

	_, err := svc.GetByNumber(context.Background(), "RCP-20260101-DEADBEEF")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
