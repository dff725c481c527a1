package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestApplyMergesOnlyPresentFields(t *testing.T) {
	f := NewFormData()
	f.FirstName = "Jan"
	f.Email = "jan@example.com"

	f.Apply(Update{LastName: strPtr("de Vries")})

	if f.FirstName != "Jan" {
		t.Errorf("FirstName = %q, want untouched", f.FirstName)
	}
	if f.LastName != "de Vries" {
		t.Errorf("LastName = %q", f.LastName)
	}
	if f.Email != "jan@example.com" {
		t.Errorf("Email = %q, want untouched", f.Email)
	}
}

func TestApplyAddressChangeClearsResolvedAddress(t *testing.T) {
	f := NewFormData()
	f.PostalCode = "1234AB"
	f.HouseNumber = "10"
	f.SetResolvedAddress("Keizersgracht", "Amsterdam")

	result := f.Apply(Update{PostalCode: strPtr("5644JL")})

	if !result.AddressChanged {
		t.Fatal("expected AddressChanged")
	}
	if f.Street != "" || f.City != "" {
		t.Errorf("resolved address not cleared: %q %q", f.Street, f.City)
	}
}

func TestApplySamePostalCodeIsNotAChange(t *testing.T) {
	f := NewFormData()
	f.PostalCode = "1234AB"
	f.SetResolvedAddress("Keizersgracht", "Amsterdam")

	result := f.Apply(Update{PostalCode: strPtr("1234AB")})

	if result.AddressChanged {
		t.Fatal("unchanged postal code reported as change")
	}
	if f.Street != "Keizersgracht" {
		t.Errorf("Street = %q, want untouched", f.Street)
	}
}

func TestApplyClearsContactFieldErrors(t *testing.T) {
	f := NewFormData()

	result := f.Apply(Update{Email: strPtr("x@y.nl"), Phone: strPtr("0612345678")})

	want := map[string]bool{"email": true, "phone": true}
	for _, field := range result.ClearedErrors {
		delete(want, field)
	}
	if len(want) != 0 {
		t.Errorf("missing cleared fields: %v", want)
	}
}

func TestApplyReplacesSlicesWholesale(t *testing.T) {
	f := NewFormData()
	f.Insulation = []string{"roof"}

	f.Apply(Update{Insulation: &[]string{"glass", "floor"}})

	if len(f.Insulation) != 2 || f.Insulation[0] != "glass" {
		t.Errorf("Insulation = %v, want wholesale replacement", f.Insulation)
	}
}

func TestAddressComplete(t *testing.T) {
	tests := []struct {
		postal string
		number string
		want   bool
	}{
		{"1234AB", "10", true},
		{"1234 ab", "4", true},
		{"1234A", "10", false},
		{"1234AB", "", false},
		{"", "10", false},
	}
	for _, tt := range tests {
		f := FormData{PostalCode: tt.postal, HouseNumber: tt.number}
		if got := f.AddressComplete(); got != tt.want {
			t.Errorf("AddressComplete(%q, %q) = %v, want %v", tt.postal, tt.number, got, tt.want)
		}
	}
}

func TestCleanPostalCode(t *testing.T) {
	if got := CleanPostalCode(" 1234 ab "); got != "1234AB" {
		t.Errorf("CleanPostalCode = %q, want 1234AB", got)
	}
}
