package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/internal/types/profile"
)

type ProfileService struct {
	store           Store
	defaultTimezone string
}

func NewProfileService(store Store, defaultTimezone string) *ProfileService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &ProfileService{store: store, defaultTimezone: defaultTimezone}
}

// GetOrCreate returns the profile for a Clerk user, creating an all-zero one
// on first sight so a missed webhook never locks a user out.
func (s *ProfileService) GetOrCreate(ctx context.Context, clerkID string) (*profile.Profile, error) {
	if clerkID == "" {
		return nil, ErrNotAuthenticated
	}
	p, err := s.store.GetProfileByClerkID(ctx, clerkID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, readFailure("get profile by clerk id", err)
	}
	return s.Create(ctx, clerkID, "")
}

// Create stores a new profile. An empty or unknown timezone falls back to the
// service default.
func (s *ProfileService) Create(ctx context.Context, clerkID, timezone string) (*profile.Profile, error) {
	if clerkID == "" {
		return nil, ErrNotAuthenticated
	}
	if _, err := time.LoadLocation(timezone); timezone == "" || err != nil {
		timezone = s.defaultTimezone
	}
	p, err := s.store.CreateProfile(ctx, clerkID, timezone)
	if err != nil {
		return nil, writeFailure("create profile", err)
	}
	log.WithFields(log.Fields{"clerk_id": clerkID, "user_id": p.ID}).Info("profile ready")
	return p, nil
}

func (s *ProfileService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	err := s.store.DeleteProfileByClerkID(ctx, clerkID)
	if errors.Is(err, ErrUserNotFound) {
		return err
	}
	if err != nil {
		return writeFailure("delete profile", err)
	}
	log.WithField("clerk_id", clerkID).Info("profile deleted")
	return nil
}

// UpdateTimezone changes the zone used to decide which calendar day a
// workout belongs to. Only IANA names are accepted.
func (s *ProfileService) UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) (*profile.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if timezone == "" {
		return nil, fmt.Errorf("%w: empty timezone", ErrInvalidRequest)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRequest, timezone)
	}
	if err := s.store.UpdateTimezone(ctx, userID, timezone); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, writeFailure("update timezone", err)
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, readFailure("get profile", err)
	}
	return p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, readFailure("get profile", err)
	}
	return p, nil
}

// ResolveUserID maps a verified Clerk subject to the profile id.
func (s *ProfileService) ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	p, err := s.GetOrCreate(ctx, clerkID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}
