package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/identity"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users    user.Repository
	verifier identity.Verifier
	logger   *slog.Logger
}

func NewUserService(logger *slog.Logger, users user.Repository, verifier identity.Verifier) UserService {
	return &UserServiceImpl{
		users:    users,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *UserServiceImpl) UpsertProfile(ctx context.Context, id *identity.Identity, displayName string) (*user.Profile, error) {
	if id == nil || id.UID == "" {
		return nil, fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}

	profile := &user.Profile{
		ID:          id.UID,
		Email:       id.Email,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.users.Upsert(ctx, profile); err != nil {
		logger.FromContext(ctx, s.logger).Error("Failed to upsert profile", "user_id", id.UID, "error", err)
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

func (s *UserServiceImpl) IsAdmin(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, nil
	}
	profile, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up role: %w", err)
	}
	return profile.IsAdmin(), nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, callerID, targetID string) error {
	log := logger.FromContext(ctx, s.logger).With("caller_id", callerID, "target_id", targetID)

	if callerID == "" {
		return fmt.Errorf("%w: missing caller identity", shared.ErrUnauthorized)
	}
	admin, err := s.IsAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if !admin {
		log.Warn("Non-admin attempted user deletion")
		return fmt.Errorf("%w: admin role required", shared.ErrForbidden)
	}
	if strings.TrimSpace(targetID) == "" {
		return fmt.Errorf("%w: userId is required", shared.ErrInvalidInput)
	}

	if err := s.verifier.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("Auth user deleted, no profile stored")
			return nil
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	log.Info("User deleted")
	return nil
}
