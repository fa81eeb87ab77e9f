package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// Service reads and edits the account document behind the auth identity.
type Service struct {
	gateway gateway.PersistenceGateway
}

func NewService(gw gateway.PersistenceGateway) (*Service, error) {
	if gw == nil {
		return nil, errors.New("persistence gateway is required")
	}
	return &Service{gateway: gw}, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "profile requires an active session")
	}
	return s.gateway.GetProfile(ctx, userID)
}

// Update replaces the editable fields. All three are required; the email
// and user id belong to the identity platform and never change here.
func (s *Service) Update(ctx context.Context, userID string, update models.ProfileUpdate) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "profile requires an active session")
	}

	update.FullName = strings.TrimSpace(update.FullName)
	update.Phone = strings.TrimSpace(update.Phone)
	update.Address = strings.TrimSpace(update.Address)

	missing := make([]string, 0, 3)
	if update.FullName == "" {
		missing = append(missing, "full_name")
	}
	if update.Phone == "" {
		missing = append(missing, "phone")
	}
	if update.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required profile fields").
			WithDetails(map[string]any{"missing": missing})
	}

	return s.gateway.UpdateProfile(ctx, userID, update)
}
