package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/paypal"
)

// fakeGateway is an in-memory stand-in for the payment gateway.
type fakeGateway struct {
	createErr    error
	executeErr   error
	executeState string

	createCalls  int
	executeCalls int
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req paypal.CreatePaymentRequest) (*paypal.CreatePaymentResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &paypal.CreatePaymentResult{
		PaymentID:   fmt.Sprintf("PAY-%d", f.createCalls),
		ApprovalURL: "https://www.sandbox.paypal.com/checkout?token=EC-TEST",
		State:       "created",
	}, nil
}

func (f *fakeGateway) ExecutePayment(ctx context.Context, paymentID, payerID string) (*paypal.ExecutePaymentResult, error) {
	f.executeCalls++
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	state := f.executeState
	if state == "" {
		state = "approved"
	}
	return &paypal.ExecutePaymentResult{
		PaymentID:      paymentID,
		State:          state,
		TransactionID:  "TXN-123",
		PayerEmail:     "payer@example.com",
		PayerFirstName: "Pat",
		PayerLastName:  "Smith",
	}, nil
}

func TestCreatePaymentPersistsCreated(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:      patient.ID,
		Amount:      decimal.RequireFromString("150.00"),
		Currency:    "USD",
		Description: "Consultation",
		ReturnURL:   "https://app.example.com/return",
		CancelURL:   "https://app.example.com/cancel",
		Method:      "paypal",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if payment.Status != models.PaymentCreated {
		t.Errorf("status = %s, want CREATED", payment.Status)
	}
	if payment.PayPalPaymentID == "" {
		t.Error("gateway payment id should be set")
	}
	if payment.ApprovalURL == "" {
		t.Error("approval URL should be passed through")
	}

	var stored models.Payment
	if err := db.First(&stored, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("payment row not persisted: %v", err)
	}
	if stored.Status != models.PaymentCreated {
		t.Errorf("stored status = %s, want CREATED", stored.Status)
	}
}

func TestCreatePaymentGatewayFailureLeavesNoRow(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{createErr: errors.New("connection refused")}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	_, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("payment count = %d, want 0", count)
	}
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	_, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   "u-1",
		Amount:   decimal.Zero,
		Currency: "USD",
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if gw.createCalls != 0 {
		t.Errorf("gateway called %d times, want 0", gw.createCalls)
	}
}

var receiptNumberPattern = regexp.MustCompile(`^RCP-\d{8}-[0-9A-F]{8}$`)

func TestExecutePaymentCompletesAndGeneratesReceipt(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	receipts := NewReceiptService(db)
	svc := NewPaymentService(db, gw, receipts)

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:      patient.ID,
		Amount:      decimal.RequireFromString("150.00"),
		Currency:    "USD",
		Description: "Consultation",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	executed, err := svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if executed.Status != models.PaymentCompleted {
		t.Errorf("status = %s, want COMPLETED", executed.Status)
	}
	if executed.CompletedAt == nil {
		t.Error("completedAt should be set")
	}
	if executed.PayerID != "PAYER-1" {
		t.Errorf("payerId = %q, want PAYER-1", executed.PayerID)
	}
	if executed.PayerEmail != "payer@example.com" {
		t.Errorf("payerEmail = %q", executed.PayerEmail)
	}

	receipt, err := receipts.GetByPayment(context.Background(), executed.ID)
	if err != nil {
		t.Fatalf("GetByPayment: %v", err)
	}
	if !receiptNumberPattern.MatchString(receipt.ReceiptNumber) {
		t.Errorf("receipt number %q does not match RCP-YYYYMMDD-XXXXXXXX", receipt.ReceiptNumber)
	}
	if !receipt.Amount.Equal(created.Amount) {
		t.Errorf("receipt amount = %s, want %s", receipt.Amount, created.Amount)
	}
	if receipt.PayerName != "Pat Smith" {
		t.Errorf("payer name = %q, want %q", receipt.PayerName, "Pat Smith")
	}
	if receipt.TransactionID != "TXN-123" {
		t.Errorf("transaction id = %q, want TXN-123", receipt.TransactionID)
	}

	var count int64
	db.Model(&models.Receipt{}).Where("payment_id = ?", executed.ID).Count(&count)
	if count != 1 {
		t.Errorf("receipt count = %d, want 1", count)
	}
}

func TestExecutePaymentTwiceIsRejected(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	_, err = svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second execute: err = %v, want ErrInvalidState", err)
	}
	if gw.executeCalls != 1 {
		t.Errorf("gateway execute called %d times, want 1", gw.executeCalls)
	}
}

func TestExecutePaymentGatewayDecline(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{executeState: "failed"}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}

	var stored models.Payment
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("fetch payment: %v", err)
	}
	if stored.Status != models.PaymentFailed {
		t.Errorf("status = %s, want FAILED", stored.Status)
	}

	var count int64
	db.Model(&models.Receipt{}).Count(&count)
	if count != 0 {
		t.Errorf("receipt count = %d, want 0", count)
	}
}

func TestExecutePaymentTransportErrorKeepsStatus(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{executeErr: errors.New("timeout")}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}

	var stored models.Payment
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("fetch payment: %v", err)
	}
	if stored.Status != models.PaymentCreated {
		t.Errorf("status = %s, want CREATED after transport failure", stored.Status)
	}
}

func TestCancelPayment(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), created.PayPalPaymentID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.PaymentCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	// A cancelled payment cannot be executed.
	_, err = svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("execute after cancel: err = %v, want ErrInvalidState", err)
	}
}

func TestCancelCompletedPaymentFails(t *testing.T) {
	db := openTestDB(t)
	gw := &fakeGateway{}
	svc := NewPaymentService(db, gw, NewReceiptService(db))

	patient := createTestPatient(t, db, "pat@example.com")

	created, err := svc.Create(context.Background(), CreatePaymentInput{
		UserID:   patient.ID,
		Amount:   decimal.RequireFromString("150.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Execute(context.Background(), created.PayPalPaymentID, "PAYER-1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	_, err = svc.Cancel(context.Background(), created.PayPalPaymentID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}
