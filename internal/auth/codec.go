// codec.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// Credential is the identity snapshot carried by a signed session token.
// The role list is a snapshot taken at issuance; authorization decisions use
// the live roles resolved per request, never this copy.
type Credential struct {
	UserID    string
	Phone     string
	Name      string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Verifier checks a session token and returns the credential it carries.
// Two interchangeable implementations exist: Codec (full jwx stack) and
// EdgeVerifier (minimal crypto surface for restricted execution tiers).
// Both must accept exactly the tokens Issue produces and reject anything
// tampered or expired with core.ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Credential, error)
}

// Codec issues and verifies session credentials with the process-wide
// signing secret. The secret is injected once at startup and never mutated.
type Codec struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
}

func NewCodec(cfg config.SessionConfig) (*Codec, error) {
	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing secret: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &Codec{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    cfg.TokenExpire,
	}, nil
}

// Issue signs a credential for the given snapshot, valid for the configured
// window (24h by default) from now.
func (c *Codec) Issue(snapshot Credential) (string, error) {
	now := time.Now()

	// An empty role list is issued as [] rather than null so that every
	// verifier strategy sees the claim as present.
	roles := snapshot.Roles
	if roles == nil {
		roles = []string{}
	}

	builder := jwt.NewBuilder().
		Issuer(c.issuer).
		Subject(snapshot.UserID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(c.ttl)).
		Claim("phone", snapshot.Phone).
		Claim("roles", roles)

	if snapshot.Name != "" {
		builder = builder.Claim("name", snapshot.Name)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build credential: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), c.key))
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}

	return string(signed), nil
}

func (c *Codec) Verify(
	ctx context.Context,
	tokenString string,
) (*Credential, error) {
	// Absent claims are skipped during validation, so expiry must be
	// demanded explicitly or a token without exp would never expire.
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), c.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(c.issuer),
		jwt.WithRequiredClaim("exp"),
	)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", core.ErrUnauthenticated)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify credential: missing subject: %w",
			core.ErrUnauthenticated,
		)
	}

	var phone string
	if err := token.Get("phone", &phone); err != nil || phone == "" {
		return nil, fmt.Errorf(
			"verify credential: missing phone claim: %w",
			core.ErrUnauthenticated,
		)
	}

	var rawRoles []any
	if err := token.Get("roles", &rawRoles); err != nil {
		return nil, fmt.Errorf(
			"verify credential: missing roles claim: %w",
			core.ErrUnauthenticated,
		)
	}

	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		code, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf(
				"verify credential: malformed roles claim: %w",
				core.ErrUnauthenticated,
			)
		}
		roles = append(roles, code)
	}

	var name string
	//nolint:errcheck // name is optional
	_ = token.Get("name", &name)

	issuedAt, _ := token.IssuedAt()
	expiresAt, _ := token.Expiration()

	return &Credential{
		UserID:    subject,
		Phone:     phone,
		Name:      name,
		Roles:     roles,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

var _ Verifier = (*Codec)(nil)
