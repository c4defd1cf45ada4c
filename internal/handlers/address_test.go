package handlers

import "testing"

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432100", false},
		{"98765abc10", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := validPhone(tc.phone); got != tc.want {
			t.Errorf("validPhone(%q) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}

func TestValidPincode(t *testing.T) {
	cases := []struct {
		pincode string
		want    bool
	}{
		{"560001", true},
		{"56001", false},
		{"5600011", false},
		{"56000a", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := validPincode(tc.pincode); got != tc.want {
			t.Errorf("validPincode(%q) = %v, want %v", tc.pincode, got, tc.want)
		}
	}
}
