package jwks_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/axent-pl/clientauth/common"
	"github.com/axent-pl/clientauth/common/sig"
	"github.com/axent-pl/clientauth/jwks"
)

type roundTripperFunc func(r *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body []byte) roundTripperFunc {
	return func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(bytes.NewBuffer(body)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	}
}

func TestResolver_Resolve(t *testing.T) {
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	ecdsaKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	goodSet, err := jwks.EncodeSet(
		&sig.SignatureKey{Kid: "rsa-1", Key: rsaKey, Alg: sig.SigAlgRS256},
		&sig.SignatureKey{Kid: "ec-1", Key: ecdsaKey, Alg: sig.SigAlgES256},
	)
	if err != nil {
		t.Fatalf("EncodeSet() failed: %v", err)
	}

	client := common.ClientIdentity{ID: "acme-1", JWKSURI: "https://acme.example/jwks"}

	tests := []struct {
		name      string
		transport roundTripperFunc
		wantKids  []string
	}{
		{
			name:      "two usable keys",
			transport: jsonResponse(http.StatusOK, goodSet),
			wantKids:  []string{"rsa-1", "ec-1"},
		},
		{
			name: "network error degrades to empty list",
			transport: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantKids: nil,
		},
		{
			name:      "non-2xx degrades to empty list",
			transport: jsonResponse(http.StatusInternalServerError, []byte("boom")),
			wantKids:  nil,
		},
		{
			name:      "malformed document degrades to empty list",
			transport: jsonResponse(http.StatusOK, []byte("{not json")),
			wantKids:  nil,
		},
		{
			name:      "empty key set degrades to empty list",
			transport: jsonResponse(http.StatusOK, []byte(`{"keys":[]}`)),
			wantKids:  nil,
		},
		{
			name:      "unsupported kty skipped, nothing usable",
			transport: jsonResponse(http.StatusOK, []byte(`{"keys":[{"kty":"oct","k":"c2VjcmV0"}]}`)),
			wantKids:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &jwks.Resolver{Client: stubClient(tt.transport)}
			got := r.Resolve(context.Background(), client)
			if len(got) != len(tt.wantKids) {
				t.Fatalf("Resolve() returned %d keys, want %d", len(got), len(tt.wantKids))
			}
			for i, kid := range tt.wantKids {
				if got[i].Kid != kid {
					t.Errorf("Resolve() key[%d].Kid = %q, want %q", i, got[i].Kid, kid)
				}
			}
		})
	}
}

func TestResolver_Resolve_Idempotent(t *testing.T) {
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	set, err := jwks.EncodeSet(&sig.SignatureKey{Kid: "rsa-1", Key: rsaKey, Alg: sig.SigAlgRS256})
	if err != nil {
		t.Fatalf("EncodeSet() failed: %v", err)
	}

	r := &jwks.Resolver{Client: stubClient(jsonResponse(http.StatusOK, set))}
	client := common.ClientIdentity{ID: "acme-1", JWKSURI: "https://acme.example/jwks"}

	first := r.Resolve(context.Background(), client)
	second := r.Resolve(context.Background(), client)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Resolve() = %d then %d keys, want 1 and 1", len(first), len(second))
	}
	if first[0].Kid != second[0].Kid || first[0].Alg != second[0].Alg {
		t.Errorf("Resolve() key metadata changed across calls: %+v vs %+v", first[0], second[0])
	}
	firstPub, ok := first[0].Key.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("Resolve() key type = %T, want *rsa.PublicKey", first[0].Key)
	}
	secondPub := second[0].Key.(*rsa.PublicKey)
	if firstPub.N.Cmp(secondPub.N) != 0 || firstPub.E != secondPub.E {
		t.Errorf("Resolve() yielded different public keys for an unchanged document")
	}
	if firstPub.N.Cmp(rsaKey.N) != 0 {
		t.Errorf("Resolve() modulus does not match the published key")
	}
}
