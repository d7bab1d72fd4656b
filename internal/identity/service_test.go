package identity

import (
	"errors"
	"testing"
)

func TestFormatPhone(t *testing.T) {
	got, err := FormatPhone("+31", "6159-578 03")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "+31 615957803" {
		t.Fatalf("expected +31 615957803, got %q", got)
	}
}

func TestFormatPhoneRejectsMissingPlus(t *testing.T) {
	if _, err := FormatPhone("31", "615957803"); !errors.Is(err, ErrCountryCode) {
		t.Fatalf("expected ErrCountryCode, got %v", err)
	}
}

func TestFormatPhoneRejectsShortNumber(t *testing.T) {
	if _, err := FormatPhone("+237", "1234"); !errors.Is(err, ErrPhoneTooShort) {
		t.Fatalf("expected ErrPhoneTooShort, got %v", err)
	}
}

func TestFormatPhoneIgnoresNonASCIIDigits(t *testing.T) {
	got, err := FormatPhone("+31", "61595780٣٤")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "+31 61595780" {
		t.Fatalf("expected only ASCII digits kept, got %q", got)
	}
	if _, err := FormatPhone("+٣١", "615957803"); !errors.Is(err, ErrCountryCode) {
		t.Fatalf("expected ErrCountryCode for non-ASCII country code, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	if err := CheckPassword("12345", "12345"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected too short, got %v", err)
	}
	if err := CheckPassword("secret123", "secret124"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := CheckPassword("secret123", "secret123"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestApplyKeepsIDAndRole(t *testing.T) {
	u := User{ID: 1, Role: RoleCustomer, Email: "old@x.com", Name: "Ann"}
	email := "new@x.com"
	got := u.Apply(Patch{Email: &email})
	if got.Email != "new@x.com" {
		t.Fatalf("expected email updated, got %q", got.Email)
	}
	if got.ID != 1 || got.Role != RoleCustomer || got.Name != "Ann" {
		t.Fatalf("unexpected fields changed: %+v", got)
	}
	if u.Email != "old@x.com" {
		t.Fatalf("Apply must not mutate the receiver")
	}
}

func TestRoleHelpers(t *testing.T) {
	if !RoleAdmin.IsStaff() || !RoleEmployee.IsStaff() || RoleCustomer.IsStaff() {
		t.Fatalf("unexpected IsStaff results")
	}
	if Role("root").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}
