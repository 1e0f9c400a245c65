// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// applicationURI is the fixed OPC UA application identity this bridge
// presents during the security handshake.
const applicationURI = "urn:client1"

// certKeyBits is the RSA key size for the self-signed application
// certificate.
const certKeyBits = 2048

// certValidity is how long the bootstrapped self-signed certificate remains
// valid before it must be regenerated.
const certValidity = 365 * 24 * time.Hour

// identity is the application instance certificate this client presents
// during the OPC UA security handshake, in the forms gopcua's client options
// consume directly.
type identity struct {
	certDER []byte
	key     *rsa.PrivateKey
}

// loadOrCreateIdentity returns this client's OPC UA application instance
// certificate, generating and persisting a new self-signed keypair under dir
// on first run.
//
// No pack library covers X.509 self-signed certificate generation for a
// custom Application URI SAN, so this uses crypto/rsa and crypto/x509
// directly; see DESIGN.md.
func loadOrCreateIdentity(dir string) (identity, error) {
	certPath := filepath.Join(dir, "client1-cert.pem")
	keyPath := filepath.Join(dir, "client1-key.pem")

	certPEM, certErr := os.ReadFile(certPath)
	keyPEM, keyErr := os.ReadFile(keyPath)
	if certErr != nil || keyErr != nil {
		var err error
		certPEM, keyPEM, err = generateSelfSigned()
		if err != nil {
			return identity{}, fmt.Errorf("ingest: generating application certificate: %w", err)
		}

		if err := os.MkdirAll(dir, 0o700); err != nil {
			return identity{}, fmt.Errorf("ingest: creating cert dir %q: %w", dir, err)
		}
		if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
			return identity{}, fmt.Errorf("ingest: writing %q: %w", certPath, err)
		}
		if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
			return identity{}, fmt.Errorf("ingest: writing %q: %w", keyPath, err)
		}
	}

	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return identity{}, fmt.Errorf("ingest: %q contains no PEM certificate block", certPath)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return identity{}, fmt.Errorf("ingest: %q contains no PEM key block", keyPath)
	}

	key, err := x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	if err != nil {
		return identity{}, fmt.Errorf("ingest: parsing private key: %w", err)
	}

	return identity{certDER: certBlock.Bytes, key: key}, nil
}

func generateSelfSigned() (certPEM, keyPEM []byte, err error) {
	priv, err := rsa.GenerateKey(rand.Reader, certKeyBits)
	if err != nil {
		return nil, nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, err
	}

	uri, err := url.Parse(applicationURI)
	if err != nil {
		return nil, nil, err
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "Client1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(certValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		URIs:         []*url.URL{uri},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	return certPEM, keyPEM, nil
}
