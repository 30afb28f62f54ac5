package clientassertion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/axent-pl/clientauth/common"
	"github.com/axent-pl/clientauth/common/logx"
	"github.com/axent-pl/clientauth/common/sig"
	"github.com/axent-pl/clientauth/jwks"
	"github.com/axent-pl/clientauth/replay"
	jwtx "github.com/golang-jwt/jwt/v5"
)

// Leeway applied to "nbf" and "exp" checks. Client clocks in the wild drift;
// two minutes absorbs that without meaningfully widening the replay window.
const clockSkewLeeway = 120 * time.Second

const tokenEndpointPath = "/connect/token"

// Validator authenticates a client from its signed assertion. Trusted keys
// come from the client's published JWKS on every call; consumed assertion
// identifiers go through the replay cache.
type Validator struct {
	Keys   *jwks.Resolver
	Replay *replay.Cache
	// BaseURL is the service's externally visible issuer URL.
	BaseURL string
	// SecureBaseURL is the mTLS-gated issuer URL; the token endpoint hangs
	// off it. Both URLs are the service's own, never derived from client
	// input.
	SecureBaseURL string
}

// Validate checks the assertion's signature, lifetime, audience, jti,
// subject/issuer binding and single-use, in that order, short-circuiting on
// the first failure. On full success the assertion's jti is recorded as
// consumed; no recording happens on any earlier failure.
//
// The returned error is one of the common.Err* rejection reasons and safe to
// show to the caller.
func (v *Validator) Validate(ctx context.Context, client common.ClientIdentity, clientAssertion string) error {
	trustedKeys := v.Keys.Resolve(ctx, client)
	validAudiences := []string{v.BaseURL, v.SecureBaseURL + tokenEndpointPath}

	claims, err := verifySignature(clientAssertion, trustedKeys)
	if err != nil {
		// Single generic message; the cause stays in the logs.
		logx.L().Debug("client assertion failed token validation", "client_id", client.ID, "error", err)
		return common.ErrAssertionInvalid
	}

	if !audienceAccepted(claims.Audience, validAudiences) {
		logx.L().Debug("client assertion audience rejected", "client_id", client.ID, "audience", []string(claims.Audience))
		return common.ErrAssertionInvalid
	}

	if claims.ID == "" {
		return common.ErrMissingJTI
	}

	if !strings.EqualFold(claims.Subject, claims.Issuer) ||
		!strings.EqualFold(claims.Issuer, client.ID) ||
		!strings.EqualFold(claims.Subject, client.ID) {
		return common.ErrSubjectIssuerMismatch
	}

	// Key replay state by the registered client identifier, not the
	// assertion's issuer: the issuer check above is case-insensitive, so a
	// case-varied "iss" must not land under a fresh cache key.
	if v.Replay.IsReplay(ctx, client.ID, claims.ID) {
		return common.ErrReplayedAssertion
	}

	// ExpiresAt is guaranteed by the expiration-required parser option.
	if claims.ExpiresAt != nil {
		v.Replay.Record(ctx, client.ID, claims.ID, claims.ExpiresAt.Time)
	}
	return nil
}

// audienceAccepted accepts an audience equal to or prefixed by a valid
// audience. The prefix tolerance absorbs trailing path variance in issuer
// URL construction; it is looser than exact match and can accept unintended
// superstrings, a known policy trade-off.
func audienceAccepted(presented jwtx.ClaimStrings, valid []string) bool {
	for _, aud := range presented {
		for _, want := range valid {
			if want != "" && strings.HasPrefix(aud, want) {
				return true
			}
		}
	}
	return false
}

func verifySignature(token string, keys []sig.SignatureVerificationKey) (*jwtx.RegisteredClaims, error) {
	if len(keys) == 0 {
		return nil, errors.New("no trusted keys resolved")
	}

	headerKid, headerHasKid, headerAlg, err := parseJWTHeader(token)
	if err != nil {
		return nil, fmt.Errorf("could not parse token header: %w", err)
	}

	candidates := keys
	if headerHasKid {
		if key, found := sig.FindSignatureVerificationKey(keys, headerKid); found {
			candidates = []sig.SignatureVerificationKey{*key}
		}
	}

	var lastErr error
	for i := range candidates {
		opts, err := parserOptions(candidates[i], headerAlg)
		if err != nil {
			lastErr = err
			continue
		}
		claims, err := parseJWT(token, candidates[i], opts)
		if err != nil {
			lastErr = err
			continue
		}
		return claims, nil
	}
	return nil, lastErr
}

// Build parser options
func parserOptions(key sig.SignatureVerificationKey, headerAlg string) ([]jwtx.ParserOption, error) {
	keyAlg := key.Alg
	if keyAlg == sig.SigAlgUnknown {
		// JWKS entry did not pin an alg; fall back to the header's, as long
		// as it names an asymmetric method we know.
		parsed, err := sig.FromOAuth(headerAlg)
		if err != nil {
			return nil, fmt.Errorf("unsupported signing algorithm %q", headerAlg)
		}
		keyAlg = parsed
	}
	algName, err := keyAlg.ToOAuth()
	if err != nil {
		return nil, err
	}
	return []jwtx.ParserOption{
		jwtx.WithLeeway(clockSkewLeeway),
		jwtx.WithExpirationRequired(),
		jwtx.WithValidMethods([]string{algName}),
	}, nil
}

func parseJWTHeader(token string) (kid string, hasKid bool, alg string, err error) {
	parser := jwtx.NewParser()
	unverifiedToken, _, err := parser.ParseUnverified(token, jwtx.MapClaims{})
	if err != nil || unverifiedToken == nil {
		return "", false, "", err
	}
	if k, ok := unverifiedToken.Header["kid"].(string); ok && k != "" {
		kid, hasKid = k, true
	}
	if a, ok := unverifiedToken.Header["alg"].(string); ok && a != "" {
		alg = a
	}
	return kid, hasKid, alg, nil
}

func parseJWT(token string, key sig.SignatureVerificationKey, opts []jwtx.ParserOption) (*jwtx.RegisteredClaims, error) {
	claims := &jwtx.RegisteredClaims{}
	tok, err := jwtx.ParseWithClaims(
		token,
		claims,
		func(t *jwtx.Token) (interface{}, error) {
			return key.Key, nil
		},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("could not parse token: %w", err)
	}
	if tok == nil {
		return nil, errors.New("token is empty")
	}
	if !tok.Valid {
		return nil, errors.New("token is invalid")
	}
	return claims, nil
}
