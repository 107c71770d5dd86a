package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/auth"
)

// AccessPolicy lists the routes reachable without credentials and the routes
// an unconfirmed account may use. Routes are keyed by method and the gin
// route pattern, e.g. "POST /api/v1/confirm/:token".
type AccessPolicy struct {
	anonymous   map[string]struct{}
	unconfirmed map[string]struct{}
}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{
		anonymous:   map[string]struct{}{},
		unconfirmed: map[string]struct{}{},
	}
}

func (p *AccessPolicy) AllowAnonymous(method, route string) *AccessPolicy {
	p.anonymous[method+" "+route] = struct{}{}
	return p
}

func (p *AccessPolicy) AllowUnconfirmed(method, route string) *AccessPolicy {
	p.unconfirmed[method+" "+route] = struct{}{}
	return p
}

func (p *AccessPolicy) allows(set map[string]struct{}, c *gin.Context) bool {
	_, ok := set[c.Request.Method+" "+c.FullPath()]
	return ok
}

// Authenticate resolves the Authorization header into an auth.Identity
// stored in the request context. Basic credentials carry either
// email:password or token: and a Bearer header carries a token.
func Authenticate(gate *auth.Gate, policy *AccessPolicy, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, ok := credentials(c.Request)
		if !ok {
			unauthorized(c, "Malformed Authorization header")
			return
		}

		id, err := gate.Resolve(c.Request.Context(), creds)
		if err == nil {
			err = auth.Admit(id, policy.allows(policy.anonymous, c), policy.allows(policy.unconfirmed, c))
		}

		switch {
		case err == nil:
		case errors.Is(err, auth.ErrUnauthorized):
			unauthorized(c, "Invalid credentials")
			return
		case errors.Is(err, auth.ErrBlocked):
			Abort(c, http.StatusForbidden, "Account has been blocked. Contact the site administrator.")
			return
		case errors.Is(err, auth.ErrUnconfirmed):
			Abort(c, http.StatusForbidden, "Email not confirmed")
			return
		default:
			log.Error().Err(err).Str("request_id", c.Writer.Header().Get(requestIDHeader)).Msg("authentication failed")
			Abort(c, http.StatusInternalServerError, "")
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// CurrentIdentity returns the identity bound by Authenticate.
func CurrentIdentity(c *gin.Context) auth.Identity {
	return auth.FromContext(c.Request.Context())
}

func credentials(r *http.Request) (auth.Credentials, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Credentials{}, true
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		token = strings.TrimSpace(token)
		return auth.Credentials{Username: token}, token != ""
	}
	username, password, ok := r.BasicAuth()
	if !ok {
		return auth.Credentials{}, false
	}
	return auth.Credentials{Username: username, Password: password}, true
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Basic realm="Authentication Required"`)
	Abort(c, http.StatusUnauthorized, message)
}
