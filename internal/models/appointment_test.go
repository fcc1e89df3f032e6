package models

import "testing"

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{"pending to confirmed", AppointmentPending, AppointmentConfirmed, true},
		{"pending to cancelled", AppointmentPending, AppointmentCancelled, true},
		{"pending to completed", AppointmentPending, AppointmentCompleted, true},
		{"confirmed to completed", AppointmentConfirmed, AppointmentCompleted, true},
		{"confirmed to cancelled", AppointmentConfirmed, AppointmentCancelled, true},
		{"confirmed to pending", AppointmentConfirmed, AppointmentPending, false},
		{"cancelled to confirmed", AppointmentCancelled, AppointmentConfirmed, false},
		{"cancelled to completed", AppointmentCancelled, AppointmentCompleted, false},
		{"completed to cancelled", AppointmentCompleted, AppointmentCancelled, false},
		{"same status is not a transition", AppointmentPending, AppointmentPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestAppointmentStatusIsTerminal(t *testing.T) {
	if AppointmentPending.IsTerminal() {
		t.Error("PENDING should not be terminal")
	}
	if AppointmentConfirmed.IsTerminal() {
		t.Error("CONFIRMED should not be terminal")
	}
	if !AppointmentCancelled.IsTerminal() {
		t.Error("CANCELLED should be terminal")
	}
	if !AppointmentCompleted.IsTerminal() {
		t.Error("COMPLETED should be terminal")
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	tests := []struct {
		input string
		want  AppointmentStatus
		ok    bool
	}{
		{"PENDING", AppointmentPending, true},
		{"pending", AppointmentPending, true},
		{"Confirmed", AppointmentConfirmed, true},
		{"CANCELLED", AppointmentCancelled, true},
		{"completed", AppointmentCompleted, true},
		{"rescheduled", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseAppointmentStatus(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAppointmentStatus(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
