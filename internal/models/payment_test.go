package models

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{"created to approved", PaymentCreated, PaymentApproved, true},
		{"created to completed", PaymentCreated, PaymentCompleted, true},
		{"created to failed", PaymentCreated, PaymentFailed, true},
		{"created to cancelled", PaymentCreated, PaymentCancelled, true},
		{"approved to completed", PaymentApproved, PaymentCompleted, true},
		{"approved to failed", PaymentApproved, PaymentFailed, true},
		{"approved to cancelled", PaymentApproved, PaymentCancelled, true},
		{"approved to created", PaymentApproved, PaymentCreated, false},
		{"completed to cancelled", PaymentCompleted, PaymentCancelled, false},
		{"completed to failed", PaymentCompleted, PaymentFailed, false},
		{"failed to completed", PaymentFailed, PaymentCompleted, false},
		{"cancelled to completed", PaymentCancelled, PaymentCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	terminal := []PaymentStatus{PaymentCompleted, PaymentFailed, PaymentCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []PaymentStatus{PaymentCreated, PaymentApproved} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
