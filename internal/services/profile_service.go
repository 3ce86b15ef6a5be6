package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/talentpool/internal/models"
	pgrepo "github.com/yoockh/talentpool/internal/repositories/postgres"
	"github.com/yoockh/talentpool/internal/utils"
)

// Landing paths returned to clients after login.
const (
	LandingRoleSelection = "/me/role"
	LandingRecruiter     = "/recruiter/applications"
	LandingCandidate     = "/candidates/me"
)

type ProfileService interface {
	// EnsureProfile returns the caller's profile, creating the default
	// candidate profile on first sight of the identity.
	EnsureProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SelectRole(ctx context.Context, userID string, role models.Role) (*models.UserProfile, error)
}

type profileService struct {
	profiles   pgrepo.ProfileRepository
	candidates pgrepo.CandidateRepository
}

func NewProfileService(profiles pgrepo.ProfileRepository, candidates pgrepo.CandidateRepository) ProfileService {
	return &profileService{profiles: profiles, candidates: candidates}
}

func (s *profileService) EnsureProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	const op = "ProfileService.EnsureProfile"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	now := time.Now().UTC()
	fresh := &models.UserProfile{
		UserID:                 userID,
		Role:                   models.RoleCandidate,
		RoleSelectionCompleted: false,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.profiles.CreateIfMissing(ctx, fresh); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create profile", err)
	}

	// re-read: a concurrent first request may have won the insert
	p, err = s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) SelectRole(ctx context.Context, userID string, role models.Role) (*models.UserProfile, error) {
	const op = "ProfileService.SelectRole"

	if !role.Selectable() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role must be candidate or recruiter", nil)
	}

	p, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.RoleSelectionCompleted {
		return nil, utils.E(utils.CodeConflict, op, "role has already been selected", nil)
	}

	p.Role = role
	p.RoleSelectionCompleted = true
	p.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}

	if role != models.RoleCandidate {
		if err := s.candidates.Delete(ctx, userID); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to remove candidate profile", err)
		}
	}
	return p, nil
}

// Landing returns where the client should route p next.
func Landing(p *models.UserProfile) string {
	switch {
	case p == nil:
		return LandingRoleSelection
	case p.Role == models.RoleAdmin:
		return LandingRecruiter
	case !p.RoleSelectionCompleted:
		return LandingRoleSelection
	case p.Role == models.RoleRecruiter:
		return LandingRecruiter
	default:
		return LandingCandidate
	}
}
