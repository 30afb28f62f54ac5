package accesstoken

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/axent-pl/clientauth/common"
	"golang.org/x/crypto/pkcs12"
)

// SigningMaterial is the service's own certificate and private key, loaded
// once at boot and treated as config. It is not re-validated per request.
type SigningMaterial struct {
	Certificate *x509.Certificate
	Key         *rsa.PrivateKey
	// Kid is placed in the header of every issued token. Defaults to the
	// certificate's SHA-256 thumbprint.
	Kid string
}

// LoadSigningMaterial reads a PKCS#12 archive (the format the signing
// certificate is provisioned in) protected by password. Any failure here
// means the deployment is broken, so errors wrap common.ErrSigningMaterial
// and are expected to abort startup or the issuance call loudly.
func LoadSigningMaterial(path, password string) (SigningMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SigningMaterial{}, fmt.Errorf("%w: could not read archive: %v", common.ErrSigningMaterial, err)
	}

	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return SigningMaterial{}, fmt.Errorf("%w: could not decode archive: %v", common.ErrSigningMaterial, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return SigningMaterial{}, fmt.Errorf("%w: archive key is %T, want *rsa.PrivateKey", common.ErrSigningMaterial, key)
	}
	if cert == nil {
		return SigningMaterial{}, fmt.Errorf("%w: archive contains no certificate", common.ErrSigningMaterial)
	}

	return SigningMaterial{
		Certificate: cert,
		Key:         rsaKey,
		Kid:         Thumbprint(cert),
	}, nil
}

// Thumbprint returns the base64url SHA-256 digest of the certificate's DER
// encoding, the x5t#S256 value per RFC 8705. Callers also use it to derive
// the confirmation thumbprint from an mTLS peer certificate.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
