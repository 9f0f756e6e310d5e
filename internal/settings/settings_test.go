package settings

import "testing"

func TestComplete(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want bool
	}{
		{"with number", Settings{KitchenName: "K", WhatsAppNumber: "+911234567890"}, true},
		{"no number", Settings{KitchenName: "K", UPIID: "k@upi"}, false},
		{"zero value", Settings{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.KitchenName == "" {
		t.Error("defaults should carry a kitchen name")
	}
	if d.Complete() {
		t.Error("defaults must not look payment-ready; the operator has to configure a number first")
	}
}
