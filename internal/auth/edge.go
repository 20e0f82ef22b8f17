// edge.go

package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

// EdgeVerifier is the restricted verifier strategy: it carries no issuing
// capability and depends only on a small HMAC implementation, so it can run
// in execution tiers where the full codec stack is unavailable. It must
// stay acceptance-equivalent with Codec.Verify; any divergence is a defect.
type EdgeVerifier struct {
	secret []byte
	issuer string
}

func NewEdgeVerifier(cfg config.SessionConfig) *EdgeVerifier {
	return &EdgeVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

type edgeClaims struct {
	Phone string   `json:"phone"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (v *EdgeVerifier) Verify(
	ctx context.Context,
	tokenString string,
) (*Credential, error) {
	claims := &edgeClaims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("verify credential: %w", core.ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf(
			"verify credential: missing subject: %w",
			core.ErrUnauthenticated,
		)
	}

	if claims.Phone == "" {
		return nil, fmt.Errorf(
			"verify credential: missing phone claim: %w",
			core.ErrUnauthenticated,
		)
	}

	if claims.Roles == nil {
		return nil, fmt.Errorf(
			"verify credential: missing roles claim: %w",
			core.ErrUnauthenticated,
		)
	}

	cred := &Credential{
		UserID: claims.Subject,
		Phone:  claims.Phone,
		Name:   claims.Name,
		Roles:  claims.Roles,
	}

	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}

	return cred, nil
}

var _ Verifier = (*EdgeVerifier)(nil)
