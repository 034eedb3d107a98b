package archive

import (
	"archive/zip"
	"bytes"
	"crypto"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/lumen-design/ldip/internal/integrity"
	"github.com/lumen-design/ldip/internal/manifest"
)

// Validate extracts the archive and verifies the manifest's integrity
// checksum over the extracted body. A mismatch is tampering evidence and
// returns ErrIntegrity. This is the single authoritative tamper check; run
// it before trusting any extracted content.
func Validate(archive []byte) (*PackageData, error) {
	data, err := Extract(archive)
	if err != nil {
		return nil, err
	}

	ok, err := manifest.VerifyIntegrity(data.Manifest)
	if err != nil {
		return nil, fmt.Errorf("verifying manifest integrity: %w", err)
	}
	if !ok {
		return nil, ErrIntegrity
	}
	return data, nil
}

// ValidateSigned runs Validate and additionally verifies the manifest
// signature against the given public key. Manifests without a signature
// fail: a caller supplying a key is demanding signed content.
func ValidateSigned(archive []byte, key crypto.PublicKey) (*PackageData, error) {
	data, err := Validate(archive)
	if err != nil {
		return nil, err
	}

	integ := data.Manifest.Integrity
	if integ.Signature == "" || integ.SignatureAlg == "" {
		return nil, fmt.Errorf("%w: manifest carries no signature", ErrBadSignature)
	}
	sig, err := base64.StdEncoding.DecodeString(integ.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature encoding", ErrBadSignature)
	}

	body, err := manifest.CanonicalBody(data.Manifest)
	if err != nil {
		return nil, fmt.Errorf("serializing manifest body: %w", err)
	}
	if !integrity.Verify(body, sig, key, integ.SignatureAlg) {
		return nil, ErrBadSignature
	}
	return data, nil
}

// Size reports the compressed archive length and the sum of decompressed
// member lengths.
func Size(archive []byte) (SizeInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return SizeInfo{}, fmt.Errorf("opening archive: %w", err)
	}

	info := SizeInfo{Compressed: int64(len(archive))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return SizeInfo{}, fmt.Errorf("opening archive member %s: %w", f.Name, err)
		}
		n, err := io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return SizeInfo{}, fmt.Errorf("reading archive member %s: %w", f.Name, err)
		}
		info.Uncompressed += n
	}
	return info, nil
}
