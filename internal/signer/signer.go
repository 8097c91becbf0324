// Package signer owns the receipt signing keypair (ECDSA P-256, SHA-256
// digest) and detached verification against embedded key material.
package signer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
)

var (
	// ErrNotLoaded is returned when Sign is called before Load.
	ErrNotLoaded = errors.New("signing key not loaded")
	// ErrBadKeyMaterial wraps any failure importing configured key
	// material. This is fatal by design: a broken signing key must never
	// be masked by a silent fallback.
	ErrBadKeyMaterial = errors.New("invalid signing key material")
)

// jwk is the importable JSON key format for persistent key material.
// Coordinates and the private scalar are base64url without padding.
type jwk struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	D   string `json:"d"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// Provider holds the process signing keypair. Initialization is
// single-flight: concurrent first callers share one Load and one keypair.
type Provider struct {
	keyJSON string

	once    sync.Once
	priv    *ecdsa.PrivateKey
	pubDER  []byte
	loadErr error
}

// New returns a Provider. keyJSON is the persistent private key in JSON key
// format; empty means no persistent key is configured and Load will fall
// back to an ephemeral keypair.
func New(keyJSON string) *Provider {
	return &Provider{keyJSON: keyJSON}
}

// Load imports the configured key or generates an ephemeral one. Safe to
// call any number of times from any goroutine; only the first call does
// work, and every call reports the same outcome.
func (p *Provider) Load() error {
	p.once.Do(func() {
		if p.keyJSON != "" {
			p.priv, p.loadErr = importJWK(p.keyJSON)
		} else {
			// Availability over persistence: receipts issued with an
			// ephemeral key cannot be re-verified against provider
			// state after a restart, only via their embedded key.
			slog.Warn("no persistent signing key configured; using ephemeral keypair, receipts will not be verifiable against this process after restart")
			p.priv, p.loadErr = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
			if p.loadErr != nil {
				p.loadErr = fmt.Errorf("%w: keygen: %v", ErrBadKeyMaterial, p.loadErr)
			}
		}
		if p.loadErr != nil {
			return
		}
		der, err := x509.MarshalPKIXPublicKey(&p.priv.PublicKey)
		if err != nil {
			p.loadErr = fmt.Errorf("%w: encode public key: %v", ErrBadKeyMaterial, err)
			return
		}
		p.pubDER = der
	})
	return p.loadErr
}

// Sign signs payload with SHA-256/ECDSA and returns the ASN.1 signature and
// the PKIX DER public key to embed alongside it.
func (p *Provider) Sign(payload []byte) (sig []byte, pubDER []byte, err error) {
	if err := p.Load(); err != nil {
		return nil, nil, err
	}
	if p.priv == nil {
		return nil, nil, ErrNotLoaded
	}
	digest := sha256.Sum256(payload)
	sig, err = ecdsa.SignASN1(rand.Reader, p.priv, digest[:])
	if err != nil {
		return nil, nil, fmt.Errorf("sign payload: %w", err)
	}
	return sig, p.pubDER, nil
}

// PublicKey returns the provider's PKIX DER public key.
func (p *Provider) PublicKey() ([]byte, error) {
	if err := p.Load(); err != nil {
		return nil, err
	}
	return p.pubDER, nil
}

// Verify checks sig over payload using only the supplied DER public key. It
// is deliberately a package function with no provider state: receipts must
// verify from their own embedded bytes. A false result with nil error means
// the signature does not match; a non-nil error means the inputs could not
// be evaluated at all (e.g. corrupt key bytes).
func Verify(payload, sig, pubDER []byte) (bool, error) {
	keyAny, err := x509.ParsePKIXPublicKey(pubDER)
	if err != nil {
		return false, fmt.Errorf("parse embedded public key: %w", err)
	}
	pub, ok := keyAny.(*ecdsa.PublicKey)
	if !ok {
		return false, errors.New("embedded public key is not an EC key")
	}
	digest := sha256.Sum256(payload)
	return ecdsa.VerifyASN1(pub, digest[:], sig), nil
}

func importJWK(keyJSON string) (*ecdsa.PrivateKey, error) {
	var k jwk
	if err := json.Unmarshal([]byte(keyJSON), &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKeyMaterial, err)
	}
	if k.Kty != "EC" || k.Crv != "P-256" {
		return nil, fmt.Errorf("%w: unsupported key type %q/%q", ErrBadKeyMaterial, k.Kty, k.Crv)
	}
	d, err := b64Field(k.D, "d")
	if err != nil {
		return nil, err
	}
	x, err := b64Field(k.X, "x")
	if err != nil {
		return nil, err
	}
	y, err := b64Field(k.Y, "y")
	if err != nil {
		return nil, err
	}

	curve := elliptic.P256()
	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(x),
			Y:     new(big.Int).SetBytes(y),
		},
		D: new(big.Int).SetBytes(d),
	}
	if !curve.IsOnCurve(priv.PublicKey.X, priv.PublicKey.Y) {
		return nil, fmt.Errorf("%w: public point not on P-256", ErrBadKeyMaterial)
	}
	if priv.D.Sign() <= 0 || priv.D.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrBadKeyMaterial)
	}
	return priv, nil
}

func b64Field(v, name string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("%w: missing %q", ErrBadKeyMaterial, name)
	}
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrBadKeyMaterial, name, err)
	}
	return b, nil
}

// ExportJWK renders a private key in the importable JSON key format. Used by
// operator tooling to mint persistent key material.
func ExportJWK(priv *ecdsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", ErrNotLoaded
	}
	byteLen := (priv.Curve.Params().BitSize + 7) / 8
	k := jwk{
		Kty: "EC",
		Crv: "P-256",
		D:   base64.RawURLEncoding.EncodeToString(priv.D.FillBytes(make([]byte, byteLen))),
		X:   base64.RawURLEncoding.EncodeToString(priv.PublicKey.X.FillBytes(make([]byte, byteLen))),
		Y:   base64.RawURLEncoding.EncodeToString(priv.PublicKey.Y.FillBytes(make([]byte, byteLen))),
	}
	out, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
