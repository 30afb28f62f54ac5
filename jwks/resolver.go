package jwks

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/axent-pl/clientauth/common"
	"github.com/axent-pl/clientauth/common/logx"
	"github.com/axent-pl/clientauth/common/sig"
)

const defaultFetchTimeout = 5 * time.Second

// Resolver fetches a client's published JWKS document and converts it into
// verification keys. Every call re-fetches: freshness is traded for latency,
// and caching is left to the transport if the host wants it.
//
// Resolve never returns an error. Any failure along the way (network, bad
// status, malformed document, zero usable keys) degrades to an empty key
// list, which downstream makes signature verification fail rather than
// crash the authentication request.
type Resolver struct {
	// Client overrides the HTTP client. When nil a client with Timeout
	// (default 5s) is built, so an unresponsive JWKS endpoint cannot stall
	// the calling request indefinitely.
	Client  *http.Client
	Timeout time.Duration
	// InsecureSkipVerify disables certificate-chain verification on the
	// outbound JWKS fetch. Some client registries host key sets behind
	// certificates that cannot be validated locally; enabling this is a
	// known trust trade-off and stays off unless the deployment opts in.
	InsecureSkipVerify bool

	once   sync.Once
	client *http.Client
}

func (r *Resolver) httpClient() *http.Client {
	r.once.Do(func() {
		if r.Client != nil {
			r.client = r.Client
			return
		}
		timeout := r.Timeout
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if r.InsecureSkipVerify {
			// #nosec G402 -- opt-in, see field doc
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		r.client = &http.Client{Timeout: timeout, Transport: transport}
	})
	return r.client
}

// Resolve returns the verification keys published at client.JWKSURI.
// A single attempt, no retries. Individual keys that cannot be converted
// are skipped.
func (r *Resolver) Resolve(ctx context.Context, client common.ClientIdentity) []sig.SignatureVerificationKey {
	doc, err := r.fetch(ctx, client.JWKSURI)
	if err != nil {
		logx.L().Debug("jwks resolution failed", "client_id", client.ID, "jwks_uri", client.JWKSURI, "error", err)
		return nil
	}

	keys := make([]sig.SignatureVerificationKey, 0, len(doc.Keys))
	for _, jk := range doc.Keys {
		pub, err := jwkToPublicKey(jk)
		if err != nil {
			logx.L().Debug("skipping unusable jwk", "client_id", client.ID, "kid", jk.Kid, "error", err)
			continue
		}
		alg, _ := sig.FromOAuth(jk.Alg)
		keys = append(keys, sig.SignatureVerificationKey{
			Kid: jk.Kid,
			Key: pub,
			Alg: alg,
		})
	}
	if len(keys) == 0 {
		logx.L().Debug("jwks contains no usable keys", "client_id", client.ID, "jwks_uri", client.JWKSURI)
		return nil
	}
	return keys
}

func (r *Resolver) fetch(ctx context.Context, jwksURI string) (*jwksDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, fmt.Errorf("jwks request build failed: %w", err)
	}

	resp, err := r.httpClient().Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			return nil, fmt.Errorf("jwks fetch failed: %w", err)
		}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logx.L().Error("could not close http.Response.Body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jwks fetch failed: unexpected status %s", resp.Status)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("jwks decode failed: %w", err)
	}
	if len(doc.Keys) == 0 {
		return nil, errors.New("jwks contains no keys")
	}
	return &doc, nil
}

// --- internal types/helpers ---

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Use string `json:"use,omitempty"`
	Kty string `json:"kty,omitempty"`
	Kid string `json:"kid,omitempty"`
	Crv string `json:"crv,omitempty"`
	Alg string `json:"alg,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

func b64uToBigInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("empty base64url")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

func jwkToPublicKey(k jwkKey) (crypto.PublicKey, error) {
	switch strings.ToUpper(k.Kty) {
	case "RSA":
		n, err := b64uToBigInt(k.N)
		if err != nil {
			return nil, fmt.Errorf("rsa n: %w", err)
		}
		eBig, err := b64uToBigInt(k.E)
		if err != nil {
			return nil, fmt.Errorf("rsa e: %w", err)
		}
		if !eBig.IsInt64() || eBig.Int64() > int64(^uint32(0)>>1) {
			return nil, errors.New("rsa exponent too large")
		}
		e := int(eBig.Int64())
		return &rsa.PublicKey{N: n, E: e}, nil

	case "EC":
		var curve elliptic.Curve
		switch k.Crv {
		case "P-256":
			curve = elliptic.P256()
		case "P-384":
			curve = elliptic.P384()
		case "P-521":
			curve = elliptic.P521()
		default:
			return nil, fmt.Errorf("unsupported EC curve: %q", k.Crv)
		}
		x, err := b64uToBigInt(k.X)
		if err != nil {
			return nil, fmt.Errorf("ec x: %w", err)
		}
		y, err := b64uToBigInt(k.Y)
		if err != nil {
			return nil, fmt.Errorf("ec y: %w", err)
		}
		if !curve.IsOnCurve(x, y) {
			return nil, errors.New("ec point not on curve")
		}
		return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
	default:
		return nil, fmt.Errorf("unsupported kty: %q", k.Kty)
	}
}
