package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = 30 * time.Minute

// Claims carries the flattened authority list next to the registered JWT
// claims. Authorities travel as a single comma-joined string, matching the
// wire format consumed by downstream services.
type Claims struct {
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// Codec issues and validates self-contained HS256 bearer tokens. It holds no
// state beyond the immutable secret and is safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec. An empty secret is the one fatal
// misconfiguration: the codec refuses to exist rather than sign with it.
func NewCodec(secret, issuer string, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the subject carrying the given authorities.
// Issued-at and not-before are both the current instant; expiry is the
// configured TTL later. Every token gets a fresh random id for traceability.
func (c *Codec) Issue(subject string, authorities []string) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		Authorities: JoinAuthorities(authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies signature and temporal claims, returning the subject and
// the authority set embedded at issuance. Failures map onto the token error
// taxonomy; nothing is looked up server-side.
func (c *Codec) Validate(token string) (string, []string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, ErrTokenMalformed
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", nil, mapTokenError(err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", nil, ErrTokenMalformed
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" || claims.IssuedAt == nil {
		return "", nil, ErrTokenMalformed
	}
	return subject, SplitAuthorities(claims.Authorities), nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return ErrTokenMalformed
	}
}
