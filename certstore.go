package isomsgsign

// SPDX-License-Identifier: MIT
// Adapted from cert.go's certManager: P12 loading via golang.org/x/crypto/pkcs12
// is kept verbatim in spirit, generalized from an RSA-only key store (the
// OIB business-registry number this module's teacher extracted from the
// certificate's Subject has no ISO 20022 analogue, so that extraction is
// dropped) to one that loads RSA and ECDSA keys.

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// KeyStore holds the private key and certificate chain loaded from a PKCS#12
// archive, generalized across the Crypto Primitives Adapter's three
// signature families rather than the single RSA key the teacher's
// certManager assumed.
type KeyStore struct {
	PrivateKey crypto.Signer
	Cert       *x509.Certificate
	CACerts    []*x509.Certificate

	Expired    bool
	ExpireSoon bool
	ExpireDays int
}

// LoadP12KeyStore reads a PKCS#12 archive from path, decrypts it with
// password, and returns the private key and certificate chain it contains.
// RSA and ECDSA private keys are accepted; which one determines which SigAlg
// the caller may sign with (see SigAlgFor). An archive holding an Ed25519
// key fails to decode, since pkcs12.ToPEM does not convert Ed25519 keys.
func LoadP12KeyStore(path string, password string) (*KeyStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PKCS#12 archive: %w", err)
	}
	return loadP12KeyStoreFromBytes(raw, password)
}

func loadP12KeyStoreFromBytes(raw []byte, password string) (*KeyStore, error) {
	blocks, err := pkcs12.ToPEM(raw, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PKCS#12 archive: %w", err)
	}

	ks := &KeyStore{}
	for _, block := range blocks {
		switch block.Type {
		case "PRIVATE KEY":
			key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				if rsaKey, rsaErr := x509.ParsePKCS1PrivateKey(block.Bytes); rsaErr == nil {
					key = rsaKey
				} else if ecKey, ecErr := x509.ParseECPrivateKey(block.Bytes); ecErr == nil {
					key = ecKey
				} else {
					return nil, fmt.Errorf("failed to parse private key (tried PKCS8, PKCS1 and SEC1): %w", err)
				}
			}
			signer, ok := key.(crypto.Signer)
			if !ok {
				return nil, fmt.Errorf("private key type %T does not implement crypto.Signer", key)
			}
			ks.PrivateKey = signer
		case "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate: %w", err)
			}
			if cert.IsCA {
				ks.CACerts = append(ks.CACerts, cert)
			} else {
				ks.Cert = cert
			}
		}
	}

	if ks.PrivateKey == nil {
		return nil, fmt.Errorf("private key not found in PKCS#12 archive")
	}
	if ks.Cert == nil {
		return nil, fmt.Errorf("leaf certificate not found in PKCS#12 archive")
	}

	now := time.Now()
	if now.Before(ks.Cert.NotBefore) {
		return nil, fmt.Errorf("certificate is not valid yet: valid from %v", ks.Cert.NotBefore)
	}
	if now.After(ks.Cert.NotAfter) {
		ks.Expired = true
	}
	ks.ExpireDays = int(ks.Cert.NotAfter.Sub(now).Hours() / 24)
	if ks.ExpireDays <= 30 {
		ks.ExpireSoon = true
	}

	return ks, nil
}

// SigAlgFor reports which SigAlg ks's private key can be used with, based on
// its concrete type. It returns ("", false) for a key type none of this
// module's signature families accept.
func (ks *KeyStore) SigAlgFor() (SigAlg, bool) {
	switch ks.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return SigAlgRS256, true
	case *ecdsa.PrivateKey:
		return SigAlgES256, true
	case ed25519.PrivateKey:
		return SigAlgEdDSA, true
	default:
		return "", false
	}
}

// DisplayText renders ks's certificate chain as plain text, useful for
// operational logging or a CLI --inspect-cert flag.
func (ks *KeyStore) DisplayText() string {
	if ks.Cert == nil {
		return "No certificate loaded."
	}

	out := "Certificate Information:\n"
	out += fmt.Sprintf("Issuer: %s\n", ks.Cert.Issuer.String())
	out += fmt.Sprintf("Subject: %s\n", ks.Cert.Subject.String())
	out += fmt.Sprintf("Serial Number: %s\n", ks.Cert.SerialNumber.String())
	out += fmt.Sprintf("Valid From: %s\n", ks.Cert.NotBefore.Format("02 Jan 2006 15:04:05 MST"))
	out += fmt.Sprintf("Valid Until: %s\n", ks.Cert.NotAfter.Format("02 Jan 2006 15:04:05 MST"))

	if len(ks.CACerts) > 0 {
		out += "CA Certificates:\n"
		for i, ca := range ks.CACerts {
			out += fmt.Sprintf("CA Cert %d: Issuer: %s, Subject: %s\n", i+1, ca.Issuer.String(), ca.Subject.String())
		}
	} else {
		out += "No CA certificates found.\n"
	}
	return out
}

// DisplayKeyPoints renders ks's certificate chain as an ordered list of
// (label, value) pairs, for callers that want to lay the same information
// out in their own template rather than consume preformatted text.
func (ks *KeyStore) DisplayKeyPoints() [][2]string {
	var out [][2]string
	if ks.Cert == nil {
		return append(out, [2]string{"Error", "No certificate loaded."})
	}

	out = append(out, [2]string{"Issuer", ks.Cert.Issuer.String()})
	out = append(out, [2]string{"Subject", ks.Cert.Subject.String()})
	out = append(out, [2]string{"Serial Number", ks.Cert.SerialNumber.String()})
	out = append(out, [2]string{"Valid From", ks.Cert.NotBefore.Format("02 Jan 2006 15:04:05 MST")})
	out = append(out, [2]string{"Valid Until", ks.Cert.NotAfter.Format("02 Jan 2006 15:04:05 MST")})

	for i, ca := range ks.CACerts {
		out = append(out, [2]string{fmt.Sprintf("CA Cert %d Issuer", i+1), ca.Issuer.String()})
		out = append(out, [2]string{fmt.Sprintf("CA Cert %d Subject", i+1), ca.Subject.String()})
	}
	return out
}
