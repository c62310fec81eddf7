// Package identity verifies bearer tokens with Firebase Authentication and manages auth users.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/shared"
)

// Identity is the verified subject of a bearer token
type Identity struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Verifier exchanges bearer tokens for identities
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
	// DeleteUser removes the auth user. A user already gone is not an error.
	DeleteUser(ctx context.Context, uid string) error
}

// AuthClient is the subset of *auth.Client used by the verifier
type AuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	DeleteUser(ctx context.Context, uid string) error
}

var _ AuthClient = (*auth.Client)(nil)

type FirebaseVerifier struct {
	client     AuthClient
	logger     *slog.Logger
	isNotFound func(error) bool
}

// NewFirebaseVerifier initializes the Firebase app once. The returned verifier is shared by all requests.
func NewFirebaseVerifier(ctx context.Context, logger *slog.Logger, cfg *config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	logger.Info("Initialized Firebase auth client", "project_id", cfg.ProjectID)
	return NewVerifierWithClient(logger, client), nil
}

func NewVerifierWithClient(logger *slog.Logger, client AuthClient) *FirebaseVerifier {
	return &FirebaseVerifier{
		client:     client,
		logger:     logger,
		isNotFound: auth.IsUserNotFound,
	}
}

// Verify fails with shared.ErrUnauthorized for empty or rejected tokens. It never retries.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", shared.ErrUnauthorized)
	}

	verified, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		v.logger.Debug("Rejected bearer token", "error", err)
		return nil, fmt.Errorf("%w: invalid or expired token", shared.ErrUnauthorized)
	}
	if verified.UID == "" {
		return nil, fmt.Errorf("%w: token has no subject", shared.ErrUnauthorized)
	}

	id := &Identity{
		UID:    verified.UID,
		Claims: verified.Claims,
	}
	if email, ok := verified.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

func (v *FirebaseVerifier) DeleteUser(ctx context.Context, uid string) error {
	if err := v.client.DeleteUser(ctx, uid); err != nil {
		if v.isNotFound(err) {
			v.logger.Warn("Auth user already deleted", "user_id", uid)
			return nil
		}
		v.logger.Error("Failed to delete auth user", "user_id", uid, "error", err)
		return &shared.UpstreamError{Provider: "identity", Message: err.Error(), Err: shared.ErrUpstreamUnavailable}
	}
	return nil
}

// ErrNoIdentity is returned by FromContext helpers when no identity was attached
var ErrNoIdentity = errors.New("no identity in context")

type contextKey struct{}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached by WithIdentity
func FromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	if !ok || id == nil {
		return nil, ErrNoIdentity
	}
	return id, nil
}
