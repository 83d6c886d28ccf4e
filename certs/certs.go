// Package certs provisions the TLS material for HTTPS serving. When no
// certificate exists it generates a self-signed one good enough for a
// browser to accept after a warning, which is all ad-hoc LAN sharing
// needs.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/calebsm/dirshare"
)

const (
	keyBits  = 2048
	validity = 10 * 365 * 24 * time.Hour
)

// EnsureCertificate makes sure a certificate/key pair exists at the
// given paths, generating a self-signed pair when either file is
// missing. Existing files are trusted as-is: an expired or garbage
// certificate surfaces later as a TLS handshake failure, not here.
//
// The generated certificate uses a 2048-bit RSA key, a placeholder
// subject with the local hostname as common name, a fixed serial, and a
// ten year validity window, signed with SHA-256.
//
// Failures wrap dirshare.ErrCertGen; the caller is expected to fall
// back to plaintext HTTP rather than exit.
func EnsureCertificate(certPath, keyPath string) error {
	if fileExists(certPath) && fileExists(keyPath) {
		return nil
	}

	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return fmt.Errorf("%w: generate key: %v", dirshare.ErrCertGen, err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: big.NewInt(1000),
		Subject: pkix.Name{
			Country:            []string{"US"},
			Province:           []string{"State"},
			Locality:           []string{"City"},
			Organization:       []string{"Organization"},
			OrganizationalUnit: []string{"Organizational Unit"},
			CommonName:         hostname,
		},
		NotBefore:             now,
		NotAfter:              now.Add(validity),
		SignatureAlgorithm:    x509.SHA256WithRSA,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{hostname, "localhost"},
	}

	// Self-signed: the template is its own parent.
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("%w: sign certificate: %v", dirshare.ErrCertGen, err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("%w: write certificate: %v", dirshare.ErrCertGen, err)
	}

	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("%w: write key: %v", dirshare.ErrCertGen, err)
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
