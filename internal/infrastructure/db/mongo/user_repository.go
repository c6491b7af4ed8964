package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecsetu/portal/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Role           string             `bson:"role"`
	Location       string             `bson:"location,omitempty"`
	Phone          string             `bson:"phone,omitempty"`
	Description    string             `bson:"description,omitempty"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
	PasswordHash   string             `bson:"password_hash"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(account)
	doc.ID = primitive.NilObjectID

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return toDomain(doc), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := patchToSet(patch)
	set["updated_at"] = time.Now().UTC().Unix()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mu)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return toDomain(mu), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(mu), nil
}

// patchToSet maps the supplied fields of p to their document keys. The
// identifier is never written.
func patchToSet(p domain.UserPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Role != nil && p.Role.Valid() {
		set["role"] = string(*p.Role)
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ProfilePicture != nil {
		set["profile_picture"] = *p.ProfilePicture
	}
	return set
}

func fromDomain(a *domain.Account) mongoUser {
	mu := mongoUser{
		Name:           a.Name,
		Email:          a.Email,
		Role:           string(domain.ResolveRole(a.Role)),
		Location:       a.Location,
		Phone:          a.Phone,
		Description:    a.Description,
		ProfilePicture: a.ProfilePicture,
		PasswordHash:   a.PasswordHash,
		CreatedAt:      a.CreatedAt.Unix(),
		UpdatedAt:      a.UpdatedAt.Unix(),
	}
	if oid, err := primitive.ObjectIDFromHex(a.ID); err == nil {
		mu.ID = oid
	}
	return mu
}

func toDomain(mu mongoUser) *domain.Account {
	return &domain.Account{
		User: domain.User{
			ID:             mu.ID.Hex(),
			Name:           mu.Name,
			Email:          mu.Email,
			Role:           domain.ResolveRole(domain.Role(mu.Role)),
			Location:       mu.Location,
			Phone:          mu.Phone,
			Description:    mu.Description,
			ProfilePicture: mu.ProfilePicture,
		},
		PasswordHash: mu.PasswordHash,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
