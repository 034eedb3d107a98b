package cli

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/lumen-design/ldip/internal/archive"
	"github.com/lumen-design/ldip/internal/branding"
	"github.com/lumen-design/ldip/internal/integrity"
	"github.com/lumen-design/ldip/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	packOutput  string
	packSignKey string
)

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "Output archive path (defaults to <extension-id>"+branding.PackageExt()+")")
	packCmd.Flags().StringVar(&packSignKey, "sign", "", "PEM private key file; signs the manifest before packing")
	rootCmd.AddCommand(packCmd)
}

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Package an extension directory into an archive",
	Long: `Assemble an extension project directory into a distributable archive.
The manifest integrity checksum is refreshed, so edits made after the last
stamp do not fail installation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		data, err := archive.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading extension directory: %w", err)
		}

		// Restamp so a hand-edited manifest packs with a valid checksum.
		algorithm := integrity.AlgSHA256
		if data.Manifest.Integrity != nil && data.Manifest.Integrity.Algorithm != "" {
			algorithm = data.Manifest.Integrity.Algorithm
		}
		if err := manifest.StampIntegrity(data.Manifest, algorithm); err != nil {
			return err
		}

		if packSignKey != "" {
			if err := signManifest(data.Manifest, packSignKey); err != nil {
				return err
			}
		}

		pkg, err := archive.Build(data)
		if err != nil {
			return fmt.Errorf("building archive: %w", err)
		}

		output := packOutput
		if output == "" {
			output = data.Manifest.Metadata.ID + branding.PackageExt()
		}
		if err := os.WriteFile(output, pkg, 0644); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}

		info, err := archive.Size(pkg)
		if err != nil {
			return err
		}
		fmt.Printf("Packed %s v%s → %s (%d bytes, %d uncompressed)\n",
			data.Manifest.Metadata.ID, data.Manifest.Metadata.Version,
			output, info.Compressed, info.Uncompressed)
		return nil
	},
}

// signManifest loads a PEM private key and attaches a signature. RSA keys
// sign with rsa-sha256, EC keys with ecdsa-sha256.
func signManifest(m *manifest.ExtensionManifest, keyPath string) error {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("reading signing key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return fmt.Errorf("signing key %s is not PEM encoded", keyPath)
	}

	var key any
	switch {
	case strings.Contains(block.Type, "RSA"):
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case strings.Contains(block.Type, "EC"):
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	}
	if err != nil {
		return fmt.Errorf("parsing signing key: %w", err)
	}

	var algorithm string
	switch key.(type) {
	case *rsa.PrivateKey:
		algorithm = integrity.SigRSASHA256
	case *ecdsa.PrivateKey:
		algorithm = integrity.SigECDSASHA256
	default:
		return fmt.Errorf("unsupported signing key type %T", key)
	}

	if err := manifest.AttachSignature(m, key, algorithm); err != nil {
		return err
	}
	return nil
}
