package auth

import (
	"testing"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	role := domain.StaffRoleHelpdesk
	token, expiresAt, err := tm.GenerateToken("staff-1", domain.SubjectTypeStaff, &role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry to be set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "staff-1" {
		t.Fatalf("expected subject id staff-1, got %s", claims.SubjectID)
	}
	if claims.Subject != domain.SubjectTypeStaff {
		t.Fatalf("expected staff subject, got %s", claims.Subject)
	}
	if claims.Role == nil || *claims.Role != domain.StaffRoleHelpdesk {
		t.Fatalf("expected helpdesk role, got %v", claims.Role)
	}
}

func TestTokenApplicantHasNoRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.GenerateToken("applicant-1", domain.SubjectTypeApplicant, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != nil {
		t.Fatalf("expected nil role, got %v", *claims.Role)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	other := NewTokenManager("secret-b", 60)

	token, _, err := tm.GenerateToken("applicant-1", domain.SubjectTypeApplicant, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong-pass"); err == nil {
		t.Fatal("expected mismatch")
	}
}
