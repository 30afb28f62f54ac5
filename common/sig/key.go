package sig

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"
)

// SignatureVerificationKey is a public key trusted to verify assertion
// signatures, as resolved from a client's JWKS. Alg may be SigAlgUnknown
// when the JWKS entry did not pin one.
type SignatureVerificationKey struct {
	Kid string
	Key crypto.PublicKey
	Alg SigAlg
}

// SignatureKeyer is anything that can publish itself as a JWK.
type SignatureKeyer interface {
	GetJWK() (JSONWebKey, error)
}

// SignatureKey holds a private signing key together with its kid and
// algorithm, for the client side of assertion-based authentication.
type SignatureKey struct {
	Kid string
	Key crypto.PrivateKey
	Alg SigAlg
}

var _ SignatureKeyer = &SignatureKey{}

// GetJWK renders the public half of the key as a JWK. RSA and ECDSA over
// the NIST curves are supported.
func (k *SignatureKey) GetJWK() (JSONWebKey, error) {
	if k.Key == nil {
		return JSONWebKey{}, errors.New("nil key")
	}

	jwk := JSONWebKey{
		Use: "sig",
		Kid: k.Kid,
		Alg: k.Alg.String(),
	}

	switch pk := k.Key.(type) {
	case *rsa.PrivateKey:
		jwk.Kty = "RSA"
		jwk.N = &byteBuffer{data: pk.N.Bytes()}
		jwk.E = &byteBuffer{data: big.NewInt(int64(pk.E)).Bytes()}
	case *ecdsa.PrivateKey:
		jwk.Kty = "EC"
		crv, size := curveNameAndSize(pk.Curve)
		if crv == "" {
			return JSONWebKey{}, fmt.Errorf("unsupported elliptic curve: %T", pk.Curve)
		}
		jwk.Crv = crv
		// Coordinates are fixed-width for the curve, left-padded with zeros.
		jwk.X = &byteBuffer{data: pk.X.FillBytes(make([]byte, size))}
		jwk.Y = &byteBuffer{data: pk.Y.FillBytes(make([]byte, size))}
	default:
		return JSONWebKey{}, fmt.Errorf("unsupported key type: %T", pk)
	}

	return jwk, nil
}

// FindSignatureVerificationKey returns a matching key by kid, or the only
// key if kid is empty and len(keys)==1.
func FindSignatureVerificationKey(keys []SignatureVerificationKey, kid string) (*SignatureVerificationKey, bool) {
	if kid == "" {
		if len(keys) == 1 {
			return &keys[0], true
		}
		return nil, false
	}

	for i := range keys {
		if keys[i].Kid == kid {
			return &keys[i], true
		}
	}
	return nil, false
}

func curveNameAndSize(c elliptic.Curve) (name string, sizeBytes int) {
	switch c {
	case elliptic.P256():
		return "P-256", 32
	case elliptic.P384():
		return "P-384", 48
	case elliptic.P521():
		return "P-521", 66
	default:
		return "", 0
	}
}
