package sig

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// byteBuffer carries raw key material serialized as base64url without
// padding, per RFC 7517.
type byteBuffer struct {
	data []byte
}

func (b *byteBuffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.RawURLEncoding.EncodeToString(b.data))
}

func (b *byteBuffer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return errors.New("empty base64url value")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	b.data = decoded
	return nil
}

func (b *byteBuffer) Bytes() []byte { return b.data }

// JSONWebKey is the subset of RFC 7517 needed to publish RSA and EC
// verification keys.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	// RSA
	N *byteBuffer `json:"n,omitempty"`
	E *byteBuffer `json:"e,omitempty"`
	// EC
	Crv string      `json:"crv,omitempty"`
	X   *byteBuffer `json:"x,omitempty"`
	Y   *byteBuffer `json:"y,omitempty"`
}
