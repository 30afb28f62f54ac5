package clientassertion

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"time"

	"github.com/axent-pl/clientauth/common/sig"
	jwtx "github.com/golang-jwt/jwt/v5"
)

// IssueParams configures a self-signed client assertion. This is the client
// side of private_key_jwt: services embedding this library use it in
// integration tests and client tooling.
type IssueParams struct {
	// OAuth2 Client ID, asserted as both "iss" and "sub".
	ClientID string

	// Audience for the assertion (typically the token endpoint URL, or
	// issuer, depending on server expectations).
	Audience string

	// Assertion validity (typical: 1-5 minutes).
	Exp time.Duration

	// Signing key material.
	Key *sig.SignatureKey

	// Optional overlay claims (e.g. "nbf", custom claims).
	OverlayClaims map[string]any
}

// Issue builds and signs a client assertion with a fresh jti.
func Issue(params IssueParams) (string, error) {
	if params.ClientID == "" {
		return "", fmt.Errorf("client id is required")
	}
	if params.Audience == "" {
		return "", fmt.Errorf("audience is required")
	}
	if params.Exp <= 0 {
		return "", fmt.Errorf("exp must be > 0")
	}
	if params.Key == nil {
		return "", fmt.Errorf("signing key is required")
	}

	jti, err := newJTI(16)
	if err != nil {
		return "", fmt.Errorf("could not generate jti: %w", err)
	}

	now := time.Now()
	claims := jwtx.MapClaims{
		"iss": params.ClientID,
		"sub": params.ClientID,
		"aud": params.Audience,
		"iat": now.Unix(),
		"exp": now.Add(params.Exp).Unix(),
		"jti": jti,
	}
	if params.OverlayClaims != nil {
		maps.Copy(claims, params.OverlayClaims)
	}

	signingMethod, err := params.Key.Alg.ToGoJWT()
	if err != nil {
		return "", fmt.Errorf("could not sign assertion: %w", err)
	}

	token := jwtx.NewWithClaims(signingMethod, claims)
	if params.Key.Kid != "" {
		token.Header["kid"] = params.Key.Kid
	}

	signed, err := token.SignedString(params.Key.Key)
	if err != nil {
		return "", fmt.Errorf("could not sign assertion: %w", err)
	}
	return signed, nil
}

func newJTI(nbytes int) (string, error) {
	b := make([]byte, nbytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
