package apiv1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fideliza/internal/domain"
	"fideliza/internal/infra/logging"
)

// ===== Session/JWT primitives =====

var errMissingToken = errors.New("missing token")

// SessionClaims is the payload of a session token issued by the identity
// service. The subject is the user id.
type SessionClaims struct {
	Email   string  `json:"email,omitempty"`
	Role    string  `json:"role"`
	OwnerID *string `json:"owner_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthManager struct {
	secret     []byte
	cookieName string
	issuer     string
}

func NewAuthManager(secret, cookieName, issuer string) *AuthManager {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthManager{secret: []byte(secret), cookieName: cookieName, issuer: issuer}
}

// Mint signs a session token for actor. Used by tooling and tests.
func (a *AuthManager) Mint(actor domain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:   actor.Email,
		Role:    string(actor.Role),
		OwnerID: actor.OwnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseFromRequest reads the bearer header first, then the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (domain.Actor, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if len(hdr) > 7 && strings.EqualFold(hdr[:7], "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	// Cookie
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return a.parse(c.Value)
	}
	return domain.Actor{}, errMissingToken
}

func (a *AuthManager) parse(tok string) (domain.Actor, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	role := domain.Role(strings.ToUpper(claims.Role))
	switch role {
	case domain.RoleCustomer, domain.RoleOwner, domain.RoleStaff, domain.RoleAdmin:
	case "":
		role = domain.RoleCustomer
	default:
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return domain.Actor{
		UserID:  claims.Subject,
		Email:   claims.Email,
		Role:    role,
		OwnerID: claims.OwnerID,
	}, nil
}

type actorKey struct{}

// ActorFrom returns the session actor, or the zero Actor for anonymous requests.
func ActorFrom(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(actorKey{}).(domain.Actor)
	return a
}

func withActor(ctx context.Context, a domain.Actor) context.Context {
	ctx = logging.WithUserID(ctx, a.UserID)
	ctx = logging.WithRole(ctx, string(a.Role))
	return context.WithValue(ctx, actorKey{}, a)
}

// Authenticate attaches the session actor to the request. Anonymous requests
// pass through with a zero Actor and the use cases decide; a present but
// invalid token is rejected here.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := s.auth.ParseFromRequest(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		case errors.Is(err, errMissingToken):
			next.ServeHTTP(w, r)
		default:
			s.writeError(w, r, domain.ErrUnauthenticated)
		}
	})
}
