package sig

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SigAlg represents a unified signature algorithm across JOSE and the jwt lib
type SigAlg int

const (
	SigAlgUnknown SigAlg = iota

	// RSA PKCS#1 v1.5
	SigAlgRS256
	SigAlgRS384
	SigAlgRS512

	// ECDSA over P-256/384/512 (aka P-521) with SHA-2
	SigAlgES256
	SigAlgES384
	SigAlgES512

	// RSA-PSS
	SigAlgPS256
	SigAlgPS384
	SigAlgPS512
)

func (sa SigAlg) String() string {
	mapping := map[SigAlg]string{
		SigAlgRS256: "RS256",
		SigAlgRS384: "RS384",
		SigAlgRS512: "RS512",
		SigAlgES256: "ES256",
		SigAlgES384: "ES384",
		SigAlgES512: "ES512",
		SigAlgPS256: "PS256",
		SigAlgPS384: "PS384",
		SigAlgPS512: "PS512",
	}
	if alg, ok := mapping[sa]; ok {
		return alg
	}
	return "unknown"
}

// ---------- JWT package ---
func (sa SigAlg) ToGoJWT() (jwt.SigningMethod, error) {
	mapping := map[SigAlg]jwt.SigningMethod{
		SigAlgRS256: jwt.SigningMethodRS256,
		SigAlgRS384: jwt.SigningMethodRS384,
		SigAlgRS512: jwt.SigningMethodRS512,
		SigAlgES256: jwt.SigningMethodES256,
		SigAlgES384: jwt.SigningMethodES384,
		SigAlgES512: jwt.SigningMethodES512,
		SigAlgPS256: jwt.SigningMethodPS256,
		SigAlgPS384: jwt.SigningMethodPS384,
		SigAlgPS512: jwt.SigningMethodPS512,
	}
	if alg, ok := mapping[sa]; ok {
		return alg, nil
	}
	return nil, fmt.Errorf("unknown alg: %s", sa)
}

// ---------- OAuth2 / JOSE <-> SigAlg ----------

func FromOAuth(s string) (SigAlg, error) {
	mapping := map[string]SigAlg{
		"RS256": SigAlgRS256,
		"RS384": SigAlgRS384,
		"RS512": SigAlgRS512,
		"ES256": SigAlgES256,
		"ES384": SigAlgES384,
		"ES512": SigAlgES512,
		"PS256": SigAlgPS256,
		"PS384": SigAlgPS384,
		"PS512": SigAlgPS512,
	}
	if alg, ok := mapping[s]; ok {
		return alg, nil
	}
	return SigAlgUnknown, fmt.Errorf("unknown alg: %s", s)
}

func (sa SigAlg) ToOAuth() (string, error) {
	mapping := map[SigAlg]string{
		SigAlgRS256: "RS256",
		SigAlgRS384: "RS384",
		SigAlgRS512: "RS512",
		SigAlgES256: "ES256",
		SigAlgES384: "ES384",
		SigAlgES512: "ES512",
		SigAlgPS256: "PS256",
		SigAlgPS384: "PS384",
		SigAlgPS512: "PS512",
	}
	if alg, ok := mapping[sa]; ok {
		return alg, nil
	}
	return "unknown", fmt.Errorf("unknown alg: %s", sa)
}
