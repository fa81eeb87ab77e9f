package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/dissmar/storefront-backend/pkg/config"
)

// Client owns the Firebase app plus the Auth and Firestore handles the
// service consumes. One instance per process.
type Client struct {
	App       *fb.App
	Auth      *fbauth.Client
	Firestore *firestore.Client

	projectID string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps the Firebase app with the configured project. An empty
// credentials file falls back to Application Default Credentials.
func New(ctx context.Context, cfg config.FirebaseConfig) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}

	return &Client{
		App:       app,
		Auth:      authClient,
		Firestore: fsClient,
		projectID: cfg.ProjectID,
	}, nil
}

// Ping verifies Firestore connectivity. Firestore has no ping API, so a
// cheap collection listing stands in.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.Firestore == nil {
		return fmt.Errorf("firestore client is nil")
	}
	if _, err := c.Firestore.Collections(ctx).GetAll(); err != nil {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// ProjectID returns the configured GCP project.
func (c *Client) ProjectID() string {
	if c == nil {
		return ""
	}
	return c.projectID
}

// Close releases the Firestore connection.
func (c *Client) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
