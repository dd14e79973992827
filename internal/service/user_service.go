package service

import (
	"strings"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles user account business logic
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput holds the input for creating a user account
type CreateUserInput struct {
	Username string
	Email    string
}

// ReplaceUserInput holds the full replacement payload for a user account.
// Any identifier the client supplied is ignored; the pre-existing one wins.
type ReplaceUserInput struct {
	Username       string
	Email          string
	JobDocumentIDs []primitive.ObjectID
}

// CreateUser validates the input, runs the advisory uniqueness pre-check and
// inserts the account. The check is advisory only: two concurrent creations
// can still race past it because the store enforces no unique constraint.
func (s *UserService) CreateUser(input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if err := validateIdentity(username, email); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.Exists(username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateUser
	}

	return s.userRepo.Create(&domain.User{
		Username:       username,
		Email:          email,
		JobDocumentIDs: []primitive.ObjectID{},
	})
}

// GetUsers retrieves all user accounts
func (s *UserService) GetUsers() ([]*domain.User, error) {
	return s.userRepo.GetAll()
}

// GetUser resolves a user by the supplied lookup key. LookupNone is rejected
// before any store access.
func (s *UserService) GetUser(lookup domain.UserLookup) (*domain.User, error) {
	switch lookup.Kind {
	case domain.LookupByID:
		return s.userRepo.GetByID(lookup.ID)
	case domain.LookupByUsername:
		return s.userRepo.GetByUsername(lookup.Username)
	case domain.LookupByEmail:
		return s.userRepo.GetByEmail(lookup.Email)
	case domain.LookupByUsernameAndEmail:
		return s.userRepo.GetByUsernameAndEmail(lookup.Username, lookup.Email)
	case domain.LookupByIDAndUsername:
		user, err := s.userRepo.GetByID(lookup.ID)
		if err != nil {
			return nil, err
		}
		if user.Username != lookup.Username {
			return nil, domain.ErrUserNotFound
		}
		return user, nil
	default:
		return nil, domain.ErrNoLookupKey
	}
}

// UserExists reports whether username OR email is already bound to an account
func (s *UserService) UserExists(username, email string) (bool, error) {
	return s.userRepo.Exists(username, email)
}

// ReplaceUser performs a full-document replace keyed by id or username. The
// existing record is fetched first so its identifier and creation time are
// preserved regardless of the replacement payload.
func (s *UserService) ReplaceUser(lookup domain.UserLookup, input ReplaceUserInput) error {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if err := validateIdentity(username, email); err != nil {
		return err
	}

	existing, err := s.GetUser(lookup)
	if err != nil {
		return err
	}

	replacement := &domain.User{
		ID:             existing.ID,
		Username:       username,
		Email:          email,
		JobDocumentIDs: input.JobDocumentIDs,
		CreatedAt:      existing.CreatedAt,
	}
	if replacement.JobDocumentIDs == nil {
		replacement.JobDocumentIDs = []primitive.ObjectID{}
	}

	switch lookup.Kind {
	case domain.LookupByID:
		return s.userRepo.ReplaceByID(existing.ID, replacement)
	case domain.LookupByUsername:
		return s.userRepo.ReplaceByUsername(lookup.Username, replacement)
	default:
		return domain.ErrNoLookupKey
	}
}

// PatchUser merges the non-nil patch fields into the record keyed by id or
// username. An empty patch still requires the user to exist.
func (s *UserService) PatchUser(lookup domain.UserLookup, patch domain.UserPatch) error {
	existing, err := s.GetUser(lookup)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		if trimmed == "" {
			return domain.ErrUsernameRequired
		}
		if len(trimmed) > domain.MaxUsernameLength {
			return domain.ErrUsernameTooLong
		}
		patch.Username = &trimmed
	}
	if patch.Email != nil {
		trimmed := strings.TrimSpace(*patch.Email)
		if trimmed == "" {
			return domain.ErrEmailRequired
		}
		if len(trimmed) > domain.MaxEmailLength {
			return domain.ErrEmailTooLong
		}
		patch.Email = &trimmed
	}
	return s.userRepo.UpdateFieldsByID(existing.ID, patch)
}

func validateIdentity(username, email string) error {
	if username == "" {
		return domain.ErrUsernameRequired
	}
	if len(username) > domain.MaxUsernameLength {
		return domain.ErrUsernameTooLong
	}
	if email == "" {
		return domain.ErrEmailRequired
	}
	if len(email) > domain.MaxEmailLength {
		return domain.ErrEmailTooLong
	}
	return nil
}

// DeleteUser removes the record matching the lookup key. The existence check
// happens here; the store-level delete itself is a no-op when nothing matches.
func (s *UserService) DeleteUser(lookup domain.UserLookup) error {
	if _, err := s.GetUser(lookup); err != nil {
		return err
	}

	switch lookup.Kind {
	case domain.LookupByID:
		return s.userRepo.DeleteByID(lookup.ID)
	case domain.LookupByUsername:
		return s.userRepo.DeleteByUsername(lookup.Username)
	case domain.LookupByIDAndUsername:
		return s.userRepo.DeleteByIDAndUsername(lookup.ID, lookup.Username)
	case domain.LookupByEmail:
		user, err := s.userRepo.GetByEmail(lookup.Email)
		if err != nil {
			return err
		}
		return s.userRepo.DeleteByID(user.ID)
	default:
		return domain.ErrNoLookupKey
	}
}
