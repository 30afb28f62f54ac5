package sig_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"

	"github.com/axent-pl/clientauth/common/sig"
)

func TestFindSignatureVerificationKey(t *testing.T) {
	keys := []sig.SignatureVerificationKey{
		{Kid: "a", Alg: sig.SigAlgRS256},
		{Kid: "b", Alg: sig.SigAlgPS256},
	}

	tests := []struct {
		name      string
		keys      []sig.SignatureVerificationKey
		kid       string
		wantKid   string
		wantFound bool
	}{
		{name: "match by kid", keys: keys, kid: "b", wantKid: "b", wantFound: true},
		{name: "unknown kid", keys: keys, kid: "c", wantFound: false},
		{name: "empty kid with multiple keys", keys: keys, kid: "", wantFound: false},
		{name: "empty kid with single key", keys: keys[:1], kid: "", wantKid: "a", wantFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := sig.FindSignatureVerificationKey(tt.keys, tt.kid)
			if found != tt.wantFound {
				t.Fatalf("FindSignatureVerificationKey() found = %v, want %v", found, tt.wantFound)
			}
			if found && got.Kid != tt.wantKid {
				t.Errorf("FindSignatureVerificationKey() kid = %q, want %q", got.Kid, tt.wantKid)
			}
		})
	}
}

func TestSignatureKey_GetJWK_RSA(t *testing.T) {
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	key := &sig.SignatureKey{Kid: "k1", Key: rsaKey, Alg: sig.SigAlgRS256}

	jwk, err := key.GetJWK()
	if err != nil {
		t.Fatalf("GetJWK() failed: %v", err)
	}
	if jwk.Kty != "RSA" || jwk.Kid != "k1" || jwk.Alg != "RS256" || jwk.Use != "sig" {
		t.Errorf("GetJWK() = {Kty:%q Kid:%q Alg:%q Use:%q}", jwk.Kty, jwk.Kid, jwk.Alg, jwk.Use)
	}

	encoded, err := json.Marshal(jwk)
	if err != nil {
		t.Fatalf("marshal jwk failed: %v", err)
	}
	var decoded sig.JSONWebKey
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal jwk failed: %v", err)
	}
	if decoded.N == nil || decoded.E == nil {
		t.Fatal("round-tripped RSA jwk is missing n or e")
	}
	if string(decoded.N.Bytes()) != string(rsaKey.N.Bytes()) {
		t.Error("round-tripped modulus differs from the source key")
	}
}

func TestSignatureKey_GetJWK_EC(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	key := &sig.SignatureKey{Kid: "k2", Key: ecKey, Alg: sig.SigAlgES256}

	jwk, err := key.GetJWK()
	if err != nil {
		t.Fatalf("GetJWK() failed: %v", err)
	}
	if jwk.Kty != "EC" || jwk.Crv != "P-256" {
		t.Errorf("GetJWK() = {Kty:%q Crv:%q}, want EC/P-256", jwk.Kty, jwk.Crv)
	}
	if len(jwk.X.Bytes()) != 32 || len(jwk.Y.Bytes()) != 32 {
		t.Errorf("coordinate widths = %d/%d, want 32/32", len(jwk.X.Bytes()), len(jwk.Y.Bytes()))
	}
}

func TestSignatureKey_GetJWK_NilKey(t *testing.T) {
	key := &sig.SignatureKey{Kid: "k1", Alg: sig.SigAlgRS256}
	if _, err := key.GetJWK(); err == nil {
		t.Error("GetJWK() with nil key succeeded, want error")
	}
}
