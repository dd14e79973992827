package mongo

import (
	"context"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDoc is the BSON shape of a user document in the users collection
type userDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Username       string               `bson:"username"`
	Email          string               `bson:"email"`
	JobDocumentIDs []primitive.ObjectID `bson:"jobDocumentIds"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

// UserRepository implements domain.UserRepository using MongoDB
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	return &UserRepository{users: db.Collection(collection)}
}

// GetAll retrieves all users in the store's natural order
func (r *UserRepository) GetAll() ([]*domain.User, error) {
	ctx := context.Background()
	cur, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]*domain.User, len(docs))
	for i, d := range docs {
		result[i] = userDocToDomain(d)
	}
	return result, nil
}

// GetByID retrieves a user by its unique identifier
func (r *UserRepository) GetByID(id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(bson.M{"_id": id})
}

// GetByUsername retrieves a user by username. With advisory-only uniqueness
// this is a first-match lookup with no ordering guarantee.
func (r *UserRepository) GetByUsername(username string) (*domain.User, error) {
	return r.findOne(bson.M{"username": username})
}

// GetByEmail retrieves a user by email (first match)
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	return r.findOne(bson.M{"email": email})
}

// GetByUsernameAndEmail retrieves the user matching both fields at once
func (r *UserRepository) GetByUsernameAndEmail(username, email string) (*domain.User, error) {
	return r.findOne(bson.M{"username": username, "email": email})
}

// Exists reports whether any user matches username OR email. This backs the
// advisory uniqueness pre-check before account creation.
func (r *UserRepository) Exists(username, email string) (bool, error) {
	ctx := context.Background()
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	n, err := r.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new user; the store assigns the identifier
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	doc := userDocFromDomain(user)
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.JobDocumentIDs == nil {
		doc.JobDocumentIDs = []primitive.ObjectID{}
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return userDocToDomain(doc), nil
}

// ReplaceByID replaces the whole document matching id. The replacement's _id
// is forced to id, so a client-supplied identifier can never take effect.
func (r *UserRepository) ReplaceByID(id primitive.ObjectID, user *domain.User) error {
	doc := userDocFromDomain(user)
	doc.ID = id
	return r.replace(bson.M{"_id": id}, doc)
}

// ReplaceByUsername replaces the whole document matching username. The caller
// must have set user.ID to the pre-existing identifier.
func (r *UserRepository) ReplaceByUsername(username string, user *domain.User) error {
	doc := userDocFromDomain(user)
	return r.replace(bson.M{"username": username}, doc)
}

// UpdateFieldsByID merges the non-nil patch fields into the document
func (r *UserRepository) UpdateFieldsByID(id primitive.ObjectID, patch domain.UserPatch) error {
	ctx := context.Background()
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteByID removes the user matching id; no-op when nothing matches
func (r *UserRepository) DeleteByID(id primitive.ObjectID) error {
	return r.delete(bson.M{"_id": id})
}

// DeleteByUsername removes the user matching username; no-op when nothing matches
func (r *UserRepository) DeleteByUsername(username string) error {
	return r.delete(bson.M{"username": username})
}

// DeleteByIDAndUsername removes the user matching both keys; no-op when nothing matches
func (r *UserRepository) DeleteByIDAndUsername(id primitive.ObjectID, username string) error {
	return r.delete(bson.M{"_id": id, "username": username})
}

// AddJobReference appends jobID to the user's reference list only if absent.
// The update is a bare $addToSet so MatchedCount/ModifiedCount keep "user not
// found" and "already linked" distinguishable.
func (r *UserRepository) AddJobReference(userID, jobID primitive.ObjectID) error {
	ctx := context.Background()
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"jobDocumentIds": jobID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	if res.ModifiedCount == 0 {
		return domain.ErrJobAlreadyLinked
	}
	return nil
}

// RemoveJobReference pulls jobID from the user's reference list; no-op when
// the user or the reference is absent
func (r *UserRepository) RemoveJobReference(userID, jobID primitive.ObjectID) error {
	ctx := context.Background()
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"jobDocumentIds": jobID}},
	)
	return err
}

func (r *UserRepository) findOne(filter bson.M) (*domain.User, error) {
	ctx := context.Background()
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userDocToDomain(doc), nil
}

func (r *UserRepository) replace(filter bson.M, doc userDoc) error {
	ctx := context.Background()
	doc.UpdatedAt = time.Now().UTC()
	if doc.JobDocumentIDs == nil {
		doc.JobDocumentIDs = []primitive.ObjectID{}
	}
	res, err := r.users.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) delete(filter bson.M) error {
	ctx := context.Background()
	_, err := r.users.DeleteOne(ctx, filter)
	return err
}

func userDocToDomain(d userDoc) *domain.User {
	return &domain.User{
		ID:             d.ID,
		Username:       d.Username,
		Email:          d.Email,
		JobDocumentIDs: d.JobDocumentIDs,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func userDocFromDomain(u *domain.User) userDoc {
	return userDoc{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		JobDocumentIDs: u.JobDocumentIDs,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
