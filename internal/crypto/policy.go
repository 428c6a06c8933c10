package crypto

import "unicode"

// MinPasswordLength is the organisation-wide minimum.
const MinPasswordLength = 8

// minStrengthScore is the number of checks a password must satisfy.
const minStrengthScore = 3

// Strength check names, in the order they are reported.
const (
	CheckLength    = "length"
	CheckLowercase = "lowercase"
	CheckUppercase = "uppercase"
	CheckNumber    = "number"
)

// CheckPasswordStrength scores a candidate password against the four checks
// and returns the names of the failed ones, in fixed order. A password is
// acceptable when the score reaches minStrengthScore.
func CheckPasswordStrength(password string) (ok bool, failed []string) {
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	checks := []struct {
		name string
		pass bool
	}{
		{CheckLength, len(password) >= MinPasswordLength},
		{CheckLowercase, hasLower},
		{CheckUppercase, hasUpper},
		{CheckNumber, hasDigit},
	}

	score := 0
	for _, check := range checks {
		if check.pass {
			score++
		} else {
			failed = append(failed, check.name)
		}
	}
	return score >= minStrengthScore, failed
}
