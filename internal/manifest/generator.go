package manifest

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lumen-design/ldip/internal/integrity"
)

// buildHashLength is the length of generated build hash tokens.
const buildHashLength = 16

// Options carries caller-supplied values for CreateManifest. Metadata is
// required; every other section may be zero and gets the documented default.
type Options struct {
	Metadata       Metadata
	Requirements   Requirements
	Resources      *Resources
	Permissions    Permissions
	Lifecycle      *Lifecycle
	Monitoring     *Monitoring
	BuilderVersion string
	// Algorithm for the integrity checksum. Defaults to sha256.
	Algorithm string
}

// Updates carries section replacements for UpdateManifest. Nil sections are
// left untouched; non-nil sections replace the existing one wholesale.
type Updates struct {
	Metadata     *Metadata
	Requirements *Requirements
	Resources    *Resources
	Permissions  *Permissions
	Lifecycle    *Lifecycle
	Monitoring   *Monitoring
}

// CreateManifest assembles a manifest, stamps extended metadata with a fresh
// build hash, defaults monitoring to all-disabled, and attaches the
// integrity checksum computed over the manifest body minus the integrity
// block itself.
func CreateManifest(opts Options) (*ExtensionManifest, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = integrity.AlgSHA256
	}

	buildHash, err := integrity.GenerateID(buildHashLength)
	if err != nil {
		return nil, fmt.Errorf("generating build hash: %w", err)
	}

	monitoring := opts.Monitoring
	if monitoring == nil {
		monitoring = &Monitoring{}
	}

	// A nil slice marshals as null, which the schema rejects; a
	// permissionless extension still needs an empty array.
	permissions := opts.Permissions
	if permissions.Required == nil {
		permissions.Required = []string{}
	}

	now := time.Now().UTC().Truncate(time.Second)
	m := &ExtensionManifest{
		Schema:          SchemaURL,
		ManifestVersion: CurrentManifestVersion,
		Metadata:        opts.Metadata,
		Requirements:    opts.Requirements,
		Resources:       opts.Resources,
		Permissions:     permissions,
		Lifecycle:       opts.Lifecycle,
		Monitoring:      monitoring,
		Extended: &ExtendedMetadata{
			CreatedAt: now,
			UpdatedAt: now,
			BuildInfo: &BuildInfo{
				BuildHash:      buildHash,
				BuilderVersion: opts.BuilderVersion,
			},
		},
	}

	if err := StampIntegrity(m, opts.Algorithm); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateManifest applies section replacements, refreshes the updated_at
// timestamp and build hash, and recomputes the integrity checksum. The input
// manifest is not mutated.
func UpdateManifest(m *ExtensionManifest, updates Updates) (*ExtensionManifest, error) {
	out := *m

	if updates.Metadata != nil {
		out.Metadata = *updates.Metadata
	}
	if updates.Requirements != nil {
		out.Requirements = *updates.Requirements
	}
	if updates.Resources != nil {
		out.Resources = updates.Resources
	}
	if updates.Permissions != nil {
		out.Permissions = *updates.Permissions
	}
	if updates.Lifecycle != nil {
		out.Lifecycle = updates.Lifecycle
	}
	if updates.Monitoring != nil {
		out.Monitoring = updates.Monitoring
	}

	buildHash, err := integrity.GenerateID(buildHashLength)
	if err != nil {
		return nil, fmt.Errorf("generating build hash: %w", err)
	}

	extended := ExtendedMetadata{}
	if m.Extended != nil {
		extended = *m.Extended
	}
	extended.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	extended.BuildInfo = &BuildInfo{BuildHash: buildHash}
	if m.Extended != nil && m.Extended.BuildInfo != nil {
		extended.BuildInfo.BuilderVersion = m.Extended.BuildInfo.BuilderVersion
	}
	out.Extended = &extended

	algorithm := integrity.AlgSHA256
	if m.Integrity != nil && m.Integrity.Algorithm != "" {
		algorithm = m.Integrity.Algorithm
	}
	if err := StampIntegrity(&out, algorithm); err != nil {
		return nil, err
	}
	return &out, nil
}

// CanonicalBody serializes the manifest with the integrity block excluded.
// This is the exact byte sequence the integrity checksum covers: hashing the
// block that holds the hash would make the checksum impossible to recompute.
func CanonicalBody(m *ExtensionManifest) ([]byte, error) {
	body := *m
	body.Integrity = nil
	data, err := json.Marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("serializing manifest body: %w", err)
	}
	return data, nil
}

// StampIntegrity computes the checksum over the canonical body and attaches
// a fresh integrity block, discarding any previous one.
func StampIntegrity(m *ExtensionManifest, algorithm string) error {
	body, err := CanonicalBody(m)
	if err != nil {
		return err
	}
	sum, err := integrity.Checksum(body, algorithm)
	if err != nil {
		return fmt.Errorf("computing manifest checksum: %w", err)
	}
	m.Integrity = &Integrity{Checksum: sum, Algorithm: algorithm}
	return nil
}

// VerifyIntegrity recomputes the checksum over the canonical body and
// compares it to the stored value.
func VerifyIntegrity(m *ExtensionManifest) (bool, error) {
	if m.Integrity == nil || m.Integrity.Checksum == "" {
		return false, fmt.Errorf("manifest has no integrity block")
	}
	body, err := CanonicalBody(m)
	if err != nil {
		return false, err
	}
	sum, err := integrity.Checksum(body, m.Integrity.Algorithm)
	if err != nil {
		return false, fmt.Errorf("recomputing manifest checksum: %w", err)
	}
	return sum == m.Integrity.Checksum, nil
}

// AttachSignature signs the canonical body with the given private key and
// stores the base64 signature in the integrity block. The signature lives
// outside the checksummed body, so stamping order does not matter as long as
// the body is not changed afterwards.
func AttachSignature(m *ExtensionManifest, key crypto.PrivateKey, algorithm string) error {
	if m.Integrity == nil {
		return fmt.Errorf("manifest must be integrity-stamped before signing")
	}
	body, err := CanonicalBody(m)
	if err != nil {
		return err
	}
	sig, err := integrity.Sign(body, key, algorithm)
	if err != nil {
		return fmt.Errorf("signing manifest: %w", err)
	}
	m.Integrity.Signature = base64.StdEncoding.EncodeToString(sig)
	m.Integrity.SignatureAlg = algorithm
	return nil
}

// idSanitizer collapses runs of characters outside [a-z0-9-] into hyphens.
var idSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// GenerateManifestID derives a reverse-domain extension ID from a vendor
// domain and a display name: "acme.com" + "Math Pack!" → "acme.com.math-pack".
func GenerateManifestID(domain, name string) string {
	sanitized := strings.ToLower(name)
	sanitized = idSanitizer.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, "-")
	return domain + "." + sanitized
}
