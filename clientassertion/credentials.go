package clientassertion

// Common URN per RFC 7523 / OAuth 2.0 JWT bearer assertions.
const URNClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// Credentials carries the protocol-level fields of a private_key_jwt
// authentication attempt. The assertion itself is never stored; it is
// consumed once per validation attempt.
type Credentials struct {
	ClientID            string
	ClientAssertionType string
	ClientAssertion     string
}
