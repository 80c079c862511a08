package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vendorx/marketplace/internal/domain"
)

// userDocument is the JSON document stored per user.
type userDocument struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	Location     string      `json:"location,omitempty"`
	PasswordHash string      `json:"password_hash"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Role:         d.Role,
		Location:     d.Location,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type redisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository returns a document-store implementation keeping one
// JSON document per user plus an email index key.
func NewRedisUserRepository(client *redis.Client) UserRepository {
	return &redisUserRepository{client: client}
}

func userDocKey(id string) string       { return "users:doc:" + id }
func userEmailKey(email string) string { return "users:email:" + email }

func (r *redisUserRepository) FindByEmail(ctx context.Context, email string, role *domain.Role) (*domain.User, error) {
	id, err := r.client.Get(ctx, userEmailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != nil && user.Role != *role {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *redisUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Exists(ctx, userEmailKey(email)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisUserRepository) Insert(ctx context.Context, user *domain.User) error {
	id := uuid.NewString()
	claimed, err := r.client.SetNX(ctx, userEmailKey(user.Email), id, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicate
	}

	doc := userDocument{
		ID:           id,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Location:     user.Location,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := r.save(ctx, doc); err != nil {
		_ = r.client.Del(ctx, userEmailKey(user.Email)).Err()
		return err
	}

	user.ID = doc.ID
	user.CreatedAt = doc.CreatedAt
	return nil
}

func (r *redisUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *redisUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	doc, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	doc.PasswordHash = passwordHash
	return r.save(ctx, doc)
}

func (r *redisUserRepository) load(ctx context.Context, id string) (userDocument, error) {
	raw, err := r.client.Get(ctx, userDocKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return userDocument{}, ErrNotFound
	}
	if err != nil {
		return userDocument{}, err
	}
	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return userDocument{}, fmt.Errorf("decode user %s: %w", id, err)
	}
	return doc, nil
}

func (r *redisUserRepository) save(ctx context.Context, doc userDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, userDocKey(doc.ID), raw, 0).Err()
}
