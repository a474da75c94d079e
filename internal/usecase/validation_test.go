package usecase

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"a.b+tag@sub.domain.io",
		"x@y.co",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Fatalf("expected email %s to be valid", email)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@nodot",
		"user name@example.com",
		"user@example.com ",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Fatalf("expected email %s to be invalid", email)
		}
	}
}
