package service

import (
	"strings"
	"testing"
)

func TestGenerateReference(t *testing.T) {
	ref, err := generateReference("EE")
	if err != nil {
		t.Fatalf("generateReference() error = %v", err)
	}

	if !strings.HasPrefix(ref, "EE-") {
		t.Errorf("reference %q missing prefix", ref)
	}
	code := strings.TrimPrefix(ref, "EE-")
	if len(code) != referenceLength {
		t.Errorf("code length = %d, want %d", len(code), referenceLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(referenceAlphabet, r) {
			t.Errorf("reference %q contains %q outside the alphabet", ref, r)
		}
	}
}

func TestGenerateReference_NoPrefix(t *testing.T) {
	ref, err := generateReference("")
	if err != nil {
		t.Fatalf("generateReference() error = %v", err)
	}
	if len(ref) != referenceLength {
		t.Errorf("length = %d, want %d", len(ref), referenceLength)
	}
	if strings.Contains(ref, "-") {
		t.Errorf("reference %q should have no separator without a prefix", ref)
	}
}

func TestGenerateReference_AvoidsLookalikes(t *testing.T) {
	for _, banned := range "0O1I" {
		if strings.ContainsRune(referenceAlphabet, banned) {
			t.Errorf("alphabet contains ambiguous character %q", banned)
		}
	}
}

func TestGenerateReference_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref, err := generateReference("EE")
		if err != nil {
			t.Fatalf("generateReference() error = %v", err)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference %q after %d draws", ref, i)
		}
		seen[ref] = true
	}
}
