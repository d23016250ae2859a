package core

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"devrelay/logger"
)

const (
	caCertFile = "ca.crt"
	caKeyFile  = "ca.key"
)

// CertPaths returns the CA certificate and key locations inside certDir.
func CertPaths(certDir string) (certPath, keyPath string) {
	return filepath.Join(certDir, caCertFile), filepath.Join(certDir, caKeyFile)
}

// EnsureCA loads the CA pair from certDir, generating and saving a fresh
// one when either file is missing. The returned certificate is ready to
// hand to the TLS interceptor.
func EnsureCA(certDir string) (*tls.Certificate, error) {
	certPath, keyPath := CertPaths(certDir)
	if _, err := os.Stat(certPath); os.IsNotExist(err) {
		logger.ProxyInfo("No CA found in %s, generating a new one.", certDir)
		if err := GenerateAndSaveCA(certDir); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("CA certificate %s exists but key %s is missing", certPath, keyPath)
	}
	return loadCA(certPath, keyPath)
}

// GenerateAndSaveCA creates a self-signed root CA and writes the PEM
// encoded pair into certDir. The key file is created mode 0600.
func GenerateAndSaveCA(certDir string) error {
	if err := os.MkdirAll(certDir, 0750); err != nil {
		return fmt.Errorf("failed to create certificate directory %s: %w", certDir, err)
	}
	certPath, keyPath := CertPaths(certDir)

	cert, key, err := generateCA("DevRelay Proxy CA")
	if err != nil {
		return fmt.Errorf("failed to generate CA: %w", err)
	}

	certOut, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", certPath, err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}); err != nil {
		return fmt.Errorf("failed to write CA certificate to %s: %w", certPath, err)
	}

	keyOut, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", keyPath, err)
	}
	defer keyOut.Close()
	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal CA private key: %w", err)
	}
	if err := pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}); err != nil {
		return fmt.Errorf("failed to write CA private key to %s: %w", keyPath, err)
	}

	logger.ProxyInfo("CA pair saved to %s and %s", certPath, keyPath)
	return nil
}

func loadCA(certPath, keyPath string) (*tls.Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate %s: %w", certPath, err)
	}
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil || certBlock.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("failed to decode CA certificate PEM block from %s", certPath)
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA certificate from %s: %w", certPath, err)
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA key %s: %w", keyPath, err)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, fmt.Errorf("failed to decode CA key PEM block from %s", keyPath)
	}

	var parsedKey interface{}
	switch keyBlock.Type {
	case "PRIVATE KEY":
		parsedKey, err = x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
	case "RSA PRIVATE KEY":
		parsedKey, err = x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	default:
		return nil, fmt.Errorf("unknown CA key PEM block type %q in %s", keyBlock.Type, keyPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA private key from %s: %w", keyPath, err)
	}
	key, ok := parsedKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("CA key in %s is not an RSA private key", keyPath)
	}

	return &tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

func generateCA(commonName string) (*x509.Certificate, *rsa.PrivateKey, error) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"DevRelay Development CA"},
			CommonName:   commonName,
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privKey.PublicKey, privKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse generated CA certificate: %w", err)
	}
	return cert, privKey, nil
}
