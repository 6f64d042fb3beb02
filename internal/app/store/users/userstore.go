// internal/app/store/users/userstore.go
package users

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/chathub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateEmail is returned when registering an email that already has
// an account.
var ErrDuplicateEmail = errors.New("an account with this email already exists")

// ErrBadCredentials is returned by Authenticate for an unknown email or a
// wrong password; callers cannot tell which.
var ErrBadCredentials = errors.New("invalid email or password")

// Store persists user accounts in "users". Passwords are bcrypt-hashed on
// the way in and verified here; the hash never leaves this package's callers
// (the json tag on PasswordHash drops it from responses).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create registers a user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, username, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate verifies email+password and returns the account.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetAvatar replaces the user's profile image.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, image string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"profile_image": image,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetManyByID loads the users for a set of ids, for example a group's
// member roster. Missing ids are skipped rather than reported.
func (s *Store) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns all users for the directory view.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetOnline flips the presence flag; used by the realtime hub on
// connect/disconnect.
func (s *Store) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_online":  online,
		"updated_at": time.Now().UTC(),
	}})
	return err
}
