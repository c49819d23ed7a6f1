package middleware

import (
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
)

// RequireManagement limits a route to HR and admin tokens. Payroll operations
// and company-wide attendance views go through here.
func RequireManagement(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromRequest(r)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		switch identity.Role {
		case "hr", "admin":
			next.ServeHTTP(w, r)
		default:
			response.Forbidden(w, "HR or admin access required")
		}
	})
}
