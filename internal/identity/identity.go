package identity

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
)

// Identity is the authenticated caller as established by the identity
// platform. A zero UserID means unauthenticated.
type Identity struct {
	UserID string
	Email  string
}

// Authenticated reports whether the identity names a real user.
func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.UserID) != ""
}

// Verifier checks a bearer token and resolves the caller behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// FirebaseVerifier validates Firebase ID tokens through the Admin SDK.
type FirebaseVerifier struct {
	auth *fbauth.Client
}

func NewFirebaseVerifier(auth *fbauth.Client) (*FirebaseVerifier, error) {
	if auth == nil {
		return nil, errors.New("firebase auth client is required")
	}
	return &FirebaseVerifier{auth: auth}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing id token")
	}

	decoded, err := v.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "verify id token")
	}

	ident := Identity{UserID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		ident.Email = email
	}
	return ident, nil
}

type contextKey struct{}

// WithIdentity attaches the authenticated caller to the context.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// FromContext returns the caller set by the auth middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(contextKey{}).(Identity)
	return ident, ok && ident.Authenticated()
}
