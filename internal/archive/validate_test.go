package archive

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/lumen-design/ldip/internal/integrity"
	"github.com/lumen-design/ldip/internal/manifest"
)

func TestValidateSigned(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	data := testPackage(t)
	if err := manifest.AttachSignature(data.Manifest, key, integrity.SigRSASHA256); err != nil {
		t.Fatalf("AttachSignature error: %v", err)
	}

	archive, err := Build(data)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if _, err := ValidateSigned(archive, &key.PublicKey); err != nil {
		t.Fatalf("ValidateSigned error: %v", err)
	}

	// A different key must fail verification.
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	if _, err := ValidateSigned(archive, &otherKey.PublicKey); !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestValidateSigned_Unsigned(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	archive, err := Build(testPackage(t))
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if _, err := ValidateSigned(archive, &key.PublicKey); !errors.Is(err, ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature for unsigned manifest", err)
	}
}
