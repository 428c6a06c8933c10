package crypto

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
		failed   []string
	}{
		{"Abcdef12", true, nil},
		{"abcdef12", true, []string{CheckUppercase}},
		{"Abcd12", true, []string{CheckLength}},
		{"abc", false, []string{CheckLength, CheckUppercase, CheckNumber}},
		{"", false, []string{CheckLength, CheckLowercase, CheckUppercase, CheckNumber}},
		{"ABCDEF12", true, []string{CheckLowercase}},
		{"Abcdefgh", true, []string{CheckNumber}},
		{"12345678", false, []string{CheckLowercase, CheckUppercase}},
	}
	for _, tc := range cases {
		ok, failed := CheckPasswordStrength(tc.password)
		if ok != tc.ok {
			t.Fatalf("password %q: expected ok=%v, got %v", tc.password, tc.ok, ok)
		}
		if strings.Join(failed, ",") != strings.Join(tc.failed, ",") {
			t.Fatalf("password %q: expected failed=%v, got %v", tc.password, tc.failed, failed)
		}
	}
}

func TestPasswordStrengthFailureOrder(t *testing.T) {
	_, failed := CheckPasswordStrength("")
	want := []string{CheckLength, CheckLowercase, CheckUppercase, CheckNumber}
	if strings.Join(failed, ",") != strings.Join(want, ",") {
		t.Fatalf("expected fixed order %v, got %v", want, failed)
	}
}
