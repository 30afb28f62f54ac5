package common

// ClientIdentity describes a registered OAuth2 client as supplied by the
// external client registry. The authentication core only reads it.
type ClientIdentity struct {
	// Opaque client identifier (the value clients present as client_id
	// and assert as both "iss" and "sub" in their client assertion).
	ID string
	// URL of the JWKS document publishing the client's signing keys.
	JWKSURI string
}
