package common

import "errors"

var ErrInvalidInput = errors.New("bad input")

// Client-facing rejection reasons for client assertion validation.
//
// ErrAssertionInvalid deliberately carries a single generic message: it
// covers signature, structure, expiry, audience and key-resolution failures,
// and the concrete cause is logged internally only, so an attacker cannot
// fingerprint the validator check by check. The remaining reasons are
// specific on purpose: they describe conditions a legitimate client can fix
// on its own (missing jti, wrong sub/iss, reused assertion).
var (
	ErrAssertionInvalid      = errors.New("Invalid client_assertion")
	ErrMissingJTI            = errors.New("Invalid client_assertion - 'jti' is required")
	ErrSubjectIssuerMismatch = errors.New("Invalid client_assertion - 'sub' and 'iss' must be set to the client_id")
	ErrReplayedAssertion     = errors.New("Invalid client_assertion - 'jti' has already been used")
)

// ErrSigningMaterial marks broken deployment configuration on the issuance
// side (missing or unusable signing certificate). It is not a per-request
// recoverable condition and propagates out of Issue.
var ErrSigningMaterial = errors.New("signing material unavailable")
