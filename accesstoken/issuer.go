package accesstoken

import (
	"context"
	"fmt"
	"time"

	"github.com/axent-pl/clientauth/common"
	"github.com/axent-pl/clientauth/common/sig"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// headerTyp explicitly types issued tokens as OAuth2 access tokens per
// RFC 9068.
const headerTyp = "at+jwt"

// Issuer constructs certificate-bound access tokens for authenticated
// clients. Tokens are stateless once issued; the issuer retains no record of
// them.
type Issuer struct {
	Material SigningMaterial
	// BaseURL becomes the "iss" claim.
	BaseURL string
	// Audience is the register's own identifier, fixed for every token.
	Audience string
}

// Issue signs an access token bound to the client's TLS certificate via the
// cnf/x5t#S256 confirmation claim. The jti is freshly generated on every
// call and distinct from the assertion jti the client authenticated with.
func (iss *Issuer) Issue(ctx context.Context, client common.ClientIdentity, expirySeconds int, scope string, certificateThumbprint string) (string, error) {
	if iss.Material.Key == nil {
		return "", fmt.Errorf("%w: signing key not loaded", common.ErrSigningMaterial)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"client_id": client.ID,
		"jti":       uuid.NewString(),
		"scope":     scope,
		"cnf":       map[string]any{"x5t#S256": certificateThumbprint},
		"iss":       iss.BaseURL,
		"aud":       iss.Audience,
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       now.Add(time.Duration(expirySeconds) * time.Second).Unix(),
	}

	signingMethod, err := sig.SigAlgPS256.ToGoJWT()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSigningMaterial, err)
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	token.Header["typ"] = headerTyp
	if iss.Material.Kid != "" {
		token.Header["kid"] = iss.Material.Kid
	}

	signed, err := token.SignedString(iss.Material.Key)
	if err != nil {
		return "", fmt.Errorf("%w: could not sign access token: %v", common.ErrSigningMaterial, err)
	}
	return signed, nil
}
