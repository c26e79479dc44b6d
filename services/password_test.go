package services

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	const password = "Str0ng!!Pass9"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if strings.Contains(hash, password) {
		t.Fatal("hash contains the plain password")
	}
	if len(strings.Split(hash, "$")) != 2 {
		t.Fatalf("hash %q is not salt$hash", hash)
	}

	match, err := VerifyPassword(hash, password)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !match {
		t.Error("correct password did not verify")
	}

	match, err = VerifyPassword(hash, "Wr0ng!!Pass9")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if match {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordRejectsWeakPasswords(t *testing.T) {
	cases := []struct {
		name     string
		password string
	}{
		{"too short", "a1!2@"},
		{"no digits", "abcdef!!"},
		{"no specials", "abcdef12"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := HashPassword(tc.password); err == nil {
				t.Errorf("HashPassword(%q) accepted a weak password", tc.password)
			}
		})
	}
}

func TestHashPasswordSaltsEveryHash(t *testing.T) {
	const password = "Str0ng!!Pass9"

	first, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("not-a-valid-hash", "whatever"); err == nil {
		t.Error("VerifyPassword() accepted a hash without a separator")
	}
	if _, err := VerifyPassword("bad salt$###", "whatever"); err == nil {
		t.Error("VerifyPassword() accepted undecodable base64")
	}
}
