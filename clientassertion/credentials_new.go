package clientassertion

import (
	"fmt"
	"net/http"

	"github.com/axent-pl/clientauth/common"
)

// NewCredentialsFromRequest binds the token-endpoint form fields onto
// Credentials so an HTTP handler can hand them straight to the Validator.
func NewCredentialsFromRequest(r *http.Request) (Credentials, error) {
	if r == nil {
		return Credentials{}, fmt.Errorf("%w: request is nil", common.ErrInvalidInput)
	}

	if err := r.ParseForm(); err != nil {
		return Credentials{}, fmt.Errorf("%w: could not parse form: %v", common.ErrInvalidInput, err)
	}

	creds := Credentials{
		ClientID:            r.FormValue("client_id"),
		ClientAssertionType: r.FormValue("client_assertion_type"),
		ClientAssertion:     r.FormValue("client_assertion"),
	}
	if creds.ClientAssertionType != URNClientAssertionType {
		return Credentials{}, fmt.Errorf("%w: invalid client_assertion_type", common.ErrInvalidInput)
	}
	if creds.ClientAssertion == "" {
		return Credentials{}, fmt.Errorf("%w: missing client_assertion", common.ErrInvalidInput)
	}

	return creds, nil
}
