// Package member covers registration, login and profile management.
package member

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/validator"
)

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// TokenIssuer signs session tokens for members
type TokenIssuer interface {
	Issue(member *domain.Member) (string, error)
}

// ReviewCache drops cached review lists that show a member's name
type ReviewCache interface {
	InvalidateAuthor(ctx context.Context, authorID uuid.UUID) error
}

// Registration is the input of Register and CreateAdmin
type Registration struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	YOB      *int   `json:"yob" validate:"omitempty,min=1900,max=2100"`
	Gender   *bool  `json:"gender"`
}

// ProfilePatch is a partial profile update; nil fields keep their value
type ProfilePatch struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email  *string `json:"email" validate:"omitempty,email"`
	YOB    *int    `json:"yob" validate:"omitempty,min=1900,max=2100"`
	Gender *bool   `json:"gender"`
}

// PasswordChange is the input of ChangePassword
type PasswordChange struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=6,max=72"`
	Confirm string `json:"confirm_password" validate:"required"`
}

// Session is a member together with a freshly signed token
type Session struct {
	Member *domain.Member `json:"member"`
	Token  string         `json:"token"`
}

// Service handles member business logic
type Service struct {
	repo    domain.MemberRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	reviews ReviewCache
	logger  *logger.Logger
}

// NewService creates a new member service
func NewService(
	repo domain.MemberRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	reviews ReviewCache,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		reviews: reviews,
		logger:  log,
	}
}

// Register creates an ordinary member and signs them in
func (s *Service) Register(ctx context.Context, reg Registration) (*Session, error) {
	return s.create(ctx, reg, false)
}

// CreateAdmin creates an administrator account
func (s *Service) CreateAdmin(ctx context.Context, reg Registration) (*domain.Member, error) {
	session, err := s.create(ctx, reg, true)
	if err != nil {
		return nil, err
	}
	return session.Member, nil
}

func (s *Service) create(ctx context.Context, reg Registration, isAdmin bool) (*Session, error) {
	reg.Email = normalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validator.Validate(reg); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", err)
		return nil, domain.Internal("hash password", err)
	}

	member := &domain.Member{
		Email:        reg.Email,
		PasswordHash: hash,
		Name:         reg.Name,
		YOB:          reg.YOB,
		Gender:       reg.Gender,
		IsAdmin:      isAdmin,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.logger.Error("Failed to create member", err)
		}
		return nil, domain.StorageError("create member", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"member_id": member.ID,
		"is_admin":  isAdmin,
	}).Info("Member registered")

	return s.session(member)
}

// Login checks credentials and signs the member in
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	member, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("Failed to load member for login", err)
		return nil, domain.StorageError("find member", err)
	}

	ok, err := s.hasher.Compare(member.PasswordHash, password)
	if err != nil {
		s.logger.Error("Failed to compare password", err)
		return nil, domain.Internal("compare password", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.session(member)
}

// Profile returns a live member
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get member", err)
		}
		return nil, domain.StorageError("get member", err)
	}
	return member, nil
}

// UpdateProfile applies a partial profile change
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*domain.Member, error) {
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := validator.Validate(patch); err != nil {
		return nil, err
	}

	member, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := patch.Name != nil && *patch.Name != member.Name
	if patch.Name != nil {
		member.Name = *patch.Name
	}
	if patch.Email != nil {
		member.Email = *patch.Email
	}
	if patch.YOB != nil {
		member.YOB = patch.YOB
	}
	if patch.Gender != nil {
		member.Gender = patch.Gender
	}

	if err := s.repo.Update(ctx, member); err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to update member", err)
		}
		return nil, domain.StorageError("update member", err)
	}

	if renamed {
		if err := s.reviews.InvalidateAuthor(ctx, member.ID); err != nil {
			s.logger.Warnf("Failed to refresh cached reviews of member %s: %v", member.ID, err)
		}
	}

	return member, nil
}

// ChangePassword replaces the member's password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, change PasswordChange) error {
	if err := validator.Validate(change); err != nil {
		return err
	}
	if change.New != change.Confirm {
		return domain.ErrPasswordMismatch
	}

	member, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Compare(member.PasswordHash, change.Current)
	if err != nil {
		s.logger.Error("Failed to compare password", err)
		return domain.Internal("compare password", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(change.New)
	if err != nil {
		s.logger.Error("Failed to hash password", err)
		return domain.Internal("hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.Error("Failed to update password", err)
		return domain.StorageError("update password", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"member_id": id,
	}).Info("Password changed")

	return nil
}

// List returns every member, deleted ones included
func (s *Service) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list members", err)
		return nil, domain.StorageError("list members", err)
	}
	return members, nil
}

// Delete soft-deletes a member. Administrators cannot delete their own account.
func (s *Service) Delete(ctx context.Context, actor domain.Identity, id uuid.UUID) error {
	if actor.MemberID == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to delete member", err)
		}
		return domain.StorageError("delete member", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"member_id":  id,
		"deleted_by": actor.MemberID,
	}).Info("Member deleted")

	return nil
}

func (s *Service) session(member *domain.Member) (*Session, error) {
	token, err := s.tokens.Issue(member)
	if err != nil {
		s.logger.Error("Failed to issue token", err)
		return nil, domain.Internal("issue token", err)
	}
	return &Session{Member: member, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
