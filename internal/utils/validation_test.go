package utils

import "testing"

func TestIsValidPhone(t *testing.T) {
	valid := []string{"+15550001111", "15550001111", "+44 20 7946 0958", "(555) 000-1111"}
	for _, phone := range valid {
		if !IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = false, want true", phone)
		}
	}

	invalid := []string{"", "abc", "0123456", "+0123456789"}
	for _, phone := range invalid {
		if IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = true, want false", phone)
		}
	}
}

func TestIsValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, 180.1, false},
		{-91, 0, false},
	}
	for _, tt := range tests {
		if got := IsValidCoordinates(tt.lat, tt.lng); got != tt.want {
			t.Errorf("IsValidCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}
