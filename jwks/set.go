package jwks

import (
	"encoding/json"
	"fmt"

	"github.com/axent-pl/clientauth/common/sig"
)

type setPayload struct {
	Keys []sig.JSONWebKey `json:"keys"`
}

// EncodeSet serializes the public parts of the given signing keys as a JWKS
// document. Hosts use it to publish their own key set; tests use it to stand
// up client JWKS endpoints.
func EncodeSet(keys ...sig.SignatureKeyer) ([]byte, error) {
	payload := setPayload{Keys: make([]sig.JSONWebKey, 0, len(keys))}
	for _, key := range keys {
		jwk, err := key.GetJWK()
		if err != nil {
			return nil, fmt.Errorf("could not generate JWK from key: %w", err)
		}
		payload.Keys = append(payload.Keys, jwk)
	}
	return json.Marshal(payload)
}
