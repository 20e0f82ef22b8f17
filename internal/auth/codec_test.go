// codec_test.go

package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:      strings.Repeat("0123456789abcdef", 2),
		TokenExpire: 24 * time.Hour,
		Issuer:      "pmp-exam-assistant",
		CookieName:  "token",
	}
}

// Every test runs against both verifier strategies; they must agree on
// every accept/reject decision.
func testVerifiers(t *testing.T, cfg config.SessionConfig) map[string]Verifier {
	t.Helper()

	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	return map[string]Verifier{
		"codec": codec,
		"edge":  NewEdgeVerifier(cfg),
	}
}

func issueToken(t *testing.T, cfg config.SessionConfig, cred Credential) string {
	t.Helper()

	codec, err := NewCodec(cfg)
	require.NoError(t, err)

	token, err := codec.Issue(cred)
	require.NoError(t, err)
	return token
}

func TestVerifiersAcceptValidToken(t *testing.T) {
	cfg := testSessionConfig()
	token := issueToken(t, cfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Name:   "Alice",
		Roles:  []string{"ADMIN", "USER"},
	})

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			cred, err := verifier.Verify(context.Background(), token)
			require.NoError(t, err)

			assert.Equal(t, "user-1", cred.UserID)
			assert.Equal(t, "13800138000", cred.Phone)
			assert.Equal(t, "Alice", cred.Name)
			assert.Equal(t, []string{"ADMIN", "USER"}, cred.Roles)
			assert.WithinDuration(
				t,
				time.Now().Add(cfg.TokenExpire),
				cred.ExpiresAt,
				time.Minute,
			)
		})
	}
}

func TestVerifiersAcceptEmptyRoleList(t *testing.T) {
	cfg := testSessionConfig()

	// A nil role list must be issued as an empty claim, not an absent one.
	token := issueToken(t, cfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  nil,
	})

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			cred, err := verifier.Verify(context.Background(), token)
			require.NoError(t, err)
			require.NotNil(t, cred.Roles)
			assert.Empty(t, cred.Roles)
			assert.Empty(t, cred.Name)
		})
	}
}

func TestVerifiersRejectTamperedToken(t *testing.T) {
	cfg := testSessionConfig()
	alice := issueToken(t, cfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})
	bob := issueToken(t, cfg, Credential{
		UserID: "user-2",
		Phone:  "13900139000",
		Roles:  []string{"ADMIN"},
	})

	aliceParts := strings.Split(alice, ".")
	bobParts := strings.Split(bob, ".")
	require.Len(t, aliceParts, 3)
	require.Len(t, bobParts, 3)

	tampered := []string{
		// bob's payload under alice's signature
		strings.Join(
			[]string{aliceParts[0], bobParts[1], aliceParts[2]},
			".",
		),
		// corrupted signature
		alice + "x",
	}

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			for _, token := range tampered {
				_, err := verifier.Verify(context.Background(), token)
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrUnauthenticated)
			}
		})
	}
}

func TestVerifiersRejectWrongSecret(t *testing.T) {
	cfg := testSessionConfig()

	otherCfg := cfg
	otherCfg.Secret = strings.Repeat("fedcba9876543210", 2)
	token := issueToken(t, otherCfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			assert.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestVerifiersRejectExpiredToken(t *testing.T) {
	cfg := testSessionConfig()

	expiredCfg := cfg
	expiredCfg.TokenExpire = -time.Hour
	token := issueToken(t, expiredCfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			assert.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestVerifiersRejectMissingExpiry(t *testing.T) {
	cfg := testSessionConfig()

	// Correctly signed but carrying no exp claim. A credential that never
	// expires must be rejected by both strategies.
	token, err := jwt.NewBuilder().
		Issuer(cfg.Issuer).
		Subject("user-1").
		IssuedAt(time.Now()).
		Claim("phone", "13800138000").
		Claim("roles", []string{"USER"}).
		Build()
	require.NoError(t, err)

	key, err := jwk.Import([]byte(cfg.Secret))
	require.NoError(t, err)

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), key))
	require.NoError(t, err)

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), string(signed))
			assert.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestVerifiersRejectWrongIssuer(t *testing.T) {
	cfg := testSessionConfig()

	otherCfg := cfg
	otherCfg.Issuer = "someone-else"
	token := issueToken(t, otherCfg, Credential{
		UserID: "user-1",
		Phone:  "13800138000",
		Roles:  []string{"USER"},
	})

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			assert.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestVerifiersRejectGarbage(t *testing.T) {
	cfg := testSessionConfig()

	garbage := []string{
		"",
		"not-a-token",
		"a.b.c",
		"eyJhbGciOiJub25lIn0..",
	}

	for name, verifier := range testVerifiers(t, cfg) {
		t.Run(name, func(t *testing.T) {
			for _, token := range garbage {
				_, err := verifier.Verify(context.Background(), token)
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrUnauthenticated)
			}
		})
	}
}
