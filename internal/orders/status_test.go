package orders

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusAccepted, true},
		{StatusNew, StatusCancelled, true},
		{StatusNew, StatusPreparing, false},
		{StatusNew, StatusCompleted, false},
		{StatusAccepted, StatusPreparing, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusAccepted, StatusNew, false},
		{StatusAccepted, StatusCompleted, false},
		{StatusPreparing, StatusCompleted, true},
		{StatusPreparing, StatusCancelled, false},
		{StatusPreparing, StatusNew, false},
		{StatusCompleted, StatusNew, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusNew, false},
		{"", StatusNew, false},
		{StatusNew, "", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusAccepted, StatusPreparing, StatusCompleted, StatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []Status{"", "paid", "NEW", "done"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}
