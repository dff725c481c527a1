package domain

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"jan@example.com", "a.b@sub.domain.nl"}
	invalid := []string{"", "jan", "jan@example", "jan @example.com", "@example.com"}

	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true, want false", s)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"0612345678", "+31 6 1234 5678", "(070) 123-4567"}
	invalid := []string{"", "12345", "06 ab 345678"}

	for _, s := range valid {
		if !IsValidPhone(s) {
			t.Errorf("IsValidPhone(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidPhone(s) {
			t.Errorf("IsValidPhone(%q) = true, want false", s)
		}
	}
}

func TestIsDisqualifyingHeating(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		want      bool
	}{
		{"empty", nil, false},
		{"only district heating", []string{HeatDistrictHeating}, true},
		{"only air heating", []string{HeatAirHeating}, true},
		{"both incompatible", []string{HeatDistrictHeating, HeatAirHeating}, true},
		{"mixed with radiators", []string{HeatDistrictHeating, HeatRadiators}, false},
		{"radiators only", []string{HeatRadiators}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDisqualifyingHeating(tt.selection); got != tt.want {
				t.Errorf("IsDisqualifyingHeating(%v) = %v, want %v", tt.selection, got, tt.want)
			}
		})
	}
}
