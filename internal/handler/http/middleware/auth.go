package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
)

var errInvalidToken = errors.New("invalid or missing token")

// Identity is the caller as described by the access token. Tokens are minted
// by the identity subsystem; this service only verifies and reads them.
type Identity struct {
	EmployeeID string
	CompanyID  string
	Role       string
}

// AuthRequired rejects requests whose token failed verification or carries no
// usable identity claims.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, errInvalidToken.Error())
				return
			}
			if _, err := IdentityFromRequest(r); err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// IdentityFromRequest reads the verified claims off the request context.
func IdentityFromRequest(r *http.Request) (Identity, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return Identity{}, errInvalidToken
	}

	employeeID, _ := claims["sub"].(string)
	companyID, _ := claims["company_id"].(string)
	role, _ := claims["role"].(string)

	if employeeID == "" || companyID == "" {
		return Identity{}, errInvalidToken
	}

	return Identity{EmployeeID: employeeID, CompanyID: companyID, Role: role}, nil
}
