// Package integrity provides the checksum and signature primitives used for
// manifest stamping and archive tamper detection: sha256/sha512 hex digests,
// RSA and ECDSA SHA-256 signatures, and CSPRNG hex token generation.
package integrity

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// Checksum algorithm identifiers accepted on the wire.
const (
	AlgSHA256 = "sha256"
	AlgSHA512 = "sha512"
)

// Signature algorithm identifiers accepted on the wire.
const (
	SigRSASHA256   = "RSA-SHA256"
	SigECDSASHA256 = "ECDSA-SHA256"
)

// Checksum returns the hex digest of data under the named algorithm.
func Checksum(data []byte, algorithm string) (string, error) {
	switch algorithm {
	case AlgSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case AlgSHA512:
		sum := sha512.Sum512(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}

// Sign signs data with the given private key. Supported keys are *rsa.PrivateKey
// (RSA-SHA256, PKCS#1 v1.5) and *ecdsa.PrivateKey (ECDSA-SHA256, ASN.1 DER).
func Sign(data []byte, key crypto.PrivateKey, algorithm string) ([]byte, error) {
	digest := sha256.Sum256(data)

	switch algorithm {
	case SigRSASHA256:
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("algorithm %s requires an RSA private key, got %T", algorithm, key)
		}
		sig, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, crypto.SHA256, digest[:])
		if err != nil {
			return nil, fmt.Errorf("signing: %w", err)
		}
		return sig, nil
	case SigECDSASHA256:
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("algorithm %s requires an ECDSA private key, got %T", algorithm, key)
		}
		sig, err := ecdsa.SignASN1(rand.Reader, ecKey, digest[:])
		if err != nil {
			return nil, fmt.Errorf("signing: %w", err)
		}
		return sig, nil
	default:
		return nil, fmt.Errorf("unsupported signature algorithm %q", algorithm)
	}
}

// Verify reports whether signature is a valid signature of data under the
// given public key. Malformed signatures, wrong key types, and unknown
// algorithms all report false rather than an error: a bad signature is a
// verification failure, not an exceptional condition.
func Verify(data, signature []byte, key crypto.PublicKey, algorithm string) bool {
	digest := sha256.Sum256(data)

	switch algorithm {
	case SigRSASHA256:
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return false
		}
		return rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, digest[:], signature) == nil
	case SigECDSASHA256:
		ecKey, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return false
		}
		return ecdsa.VerifyASN1(ecKey, digest[:], signature)
	default:
		return false
	}
}

// GenerateID returns a cryptographically random hex token of the given
// length. Used for build hashes and default identifiers. Odd lengths are
// rounded up internally and truncated, so the result is always exactly
// length characters.
func GenerateID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf)[:length], nil
}
