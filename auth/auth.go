package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

const defaultKeyCacheTTL = 15 * time.Minute

// GuestEmail is the preset account used by the guest login flow. Guests get
// no personalized greeting and no "(you)" labeling.
const GuestEmail = "guest@example.com"

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("malformed authorization header")
)

// User is the identity extracted from a validated token.
type User struct {
	ID    string
	Email string
	Name  string
}

// Guest reports whether the user is the shared guest account.
func (u User) Guest() bool {
	return strings.EqualFold(u.Email, GuestEmail)
}

// Auth validates incoming JWT tokens.
type Auth struct {
	jwks       *keyfunc.JWKS
	audience   string
	issuer     string
	testSecret []byte

	parser      *jwt.Parser
	keyCache    sync.Map
	keyCacheTTL time.Duration
}

type cachedKey struct {
	key       any
	expiresAt time.Time
}

// New creates an Auth validating RS256 tokens against the given JWKS.
func New(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	return &Auth{
		jwks:        jwks,
		audience:    audience,
		issuer:      issuer,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		keyCacheTTL: defaultKeyCacheTTL,
	}
}

// NewTestAuth creates an Auth validating HS256 tokens with a shared secret,
// for local runs and tests.
func NewTestAuth(secret []byte) *Auth {
	return &Auth{
		testSecret: secret,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// UserFromAuthHeader extracts the identity from an Authorization header.
func (a *Auth) UserFromAuthHeader(h string) (User, error) {
	if h == "" {
		return User{}, errMissingAuthorization
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return User{}, errBadAuthorization
	}
	return a.UserFromBearer(parts[1])
}

// UserFromBearer extracts the identity from a raw bearer token.
func (a *Auth) UserFromBearer(token string) (User, error) {
	var parsed *jwt.Token
	var err error
	if a.testSecret != nil {
		parsed, err = a.parser.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return a.testSecret, nil
		})
	} else {
		parsed, err = a.parser.Parse(token, a.keyForToken)
	}
	if err != nil {
		return User{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return User{}, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return User{}, errors.New("token not valid yet")
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, false) {
		return User{}, errors.New("invalid audience")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, false) {
		return User{}, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return User{}, errors.New("missing sub")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return User{ID: sub, Email: email, Name: name}, nil
}

func (a *Auth) keyForToken(token *jwt.Token) (any, error) {
	if a.jwks == nil {
		return nil, errors.New("jwks not configured")
	}

	kid, _ := token.Header["kid"].(string)
	if kid != "" && a.keyCacheTTL > 0 {
		if cached, ok := a.keyCache.Load(kid); ok {
			entry := cached.(cachedKey)
			if time.Now().Before(entry.expiresAt) {
				return entry.key, nil
			}
			a.keyCache.Delete(kid)
		}
	}

	key, err := a.jwks.Keyfunc(token)
	if err != nil {
		return nil, err
	}

	if kid != "" && a.keyCacheTTL > 0 {
		a.keyCache.Store(kid, cachedKey{key: key, expiresAt: time.Now().Add(a.keyCacheTTL)})
	}
	return key, nil
}
