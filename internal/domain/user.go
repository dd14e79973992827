package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account in the system. JobDocumentIDs is the forward
// reference list linking the user to its JobData documents; it carries set
// semantics (no duplicate ids), enforced at the point of association rather
// than by a store-level constraint.
type User struct {
	ID             primitive.ObjectID   `json:"id"`
	Username       string               `json:"username"`
	Email          string               `json:"email"`
	JobDocumentIDs []primitive.ObjectID `json:"jobDocumentIds"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// UserPatch holds the optional fields of a partial user update. Nil fields are
// left untouched.
type UserPatch struct {
	Username *string
	Email    *string
}

// IsEmpty reports whether the patch carries no fields.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetAll() ([]*User, error)
	GetByID(id primitive.ObjectID) (*User, error)
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByUsernameAndEmail(username, email string) (*User, error)
	// Exists reports whether any record matches username OR email. It backs the
	// advisory uniqueness pre-check; the store itself enforces nothing.
	Exists(username, email string) (bool, error)
	Create(user *User) (*User, error)
	ReplaceByID(id primitive.ObjectID, user *User) error
	ReplaceByUsername(username string, user *User) error
	UpdateFieldsByID(id primitive.ObjectID, patch UserPatch) error
	DeleteByID(id primitive.ObjectID) error
	DeleteByUsername(username string) error
	DeleteByIDAndUsername(id primitive.ObjectID, username string) error
	// AddJobReference appends jobID to the user's JobDocumentIDs only if absent.
	// Returns ErrUserNotFound when no user matches and ErrJobAlreadyLinked when
	// the id is already present.
	AddJobReference(userID, jobID primitive.ObjectID) error
	RemoveJobReference(userID, jobID primitive.ObjectID) error
}
