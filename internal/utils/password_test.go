package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordClampsLowCost(t *testing.T) {
	for _, cost := range []int{0, -3} {
		hash, err := HashPassword("s3cret", cost)
		if err != nil {
			t.Fatalf("cost %d: %v", cost, err)
		}
		got, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("cost %d: read back: %v", cost, err)
		}
		if got != bcrypt.DefaultCost {
			t.Errorf("cost %d: hashed at %d, want default %d", cost, got, bcrypt.DefaultCost)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("", "s3cret") {
		t.Error("empty hash accepted")
	}
}
