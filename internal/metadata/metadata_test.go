package metadata

import "testing"

func TestIsModemUpdate(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  bool
	}{
		{
			name:  "modem update",
			topic: "MONROE.META.DEVICE.MODEM.89470000000000000001.UPDATE",
			want:  true,
		},
		{
			name:  "connectivity event",
			topic: "MONROE.META.DEVICE.MODEM.89470000000000000001.CONNECTIVITY",
		},
		{
			name:  "other device",
			topic: "MONROE.META.DEVICE.GPS.UPDATE",
		},
		{
			name:  "update without device id",
			topic: "MONROE.META.DEVICE.MODEM.UPDATE",
			want:  true,
		},
		{
			name:  "bare prefix",
			topic: "MONROE.META.DEVICE.MODEM",
		},
		{
			name:  "empty",
			topic: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsModemUpdate(tt.topic); got != tt.want {
				t.Fatalf("IsModemUpdate(%q) = %v, want %v", tt.topic, got, tt.want)
			}
		})
	}
}
