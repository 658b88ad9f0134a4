package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lc_stat/internal/common"
	"lc_stat/internal/domain/model"
	"lc_stat/internal/platform/docstore"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	fieldEmail            = "email"
	fieldLeetcodeUsername = "leetcodeUsername"
	fieldFriends          = "friends"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByLeetcodeUsername(ctx context.Context, username string) (*model.User, error)
	// Upsert writes the set fields of fields to the user document,
	// merging with what is stored.
	Upsert(ctx context.Context, id string, fields UserFields) error
	AddFriend(ctx context.Context, id, leetcodeUsername string) error
	RemoveFriend(ctx context.Context, id, leetcodeUsername string) error
}

// UserFields is a partial user document. Nil fields are left untouched.
type UserFields struct {
	Email            *string
	DisplayName      *string
	LeetcodeUsername *string
	Friends          []string
	SetFriends       bool
	HashedPassword   *string
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
}

func (f UserFields) toDocument() map[string]any {
	doc := map[string]any{}
	if f.Email != nil {
		doc[fieldEmail] = *f.Email
	}
	if f.DisplayName != nil {
		doc["displayName"] = *f.DisplayName
	}
	if f.LeetcodeUsername != nil {
		doc[fieldLeetcodeUsername] = *f.LeetcodeUsername
	}
	if f.SetFriends {
		friends := f.Friends
		if friends == nil {
			friends = []string{}
		}
		doc[fieldFriends] = friends
	}
	if f.HashedPassword != nil {
		doc["hashedPassword"] = *f.HashedPassword
	}
	if f.CreatedAt != nil {
		doc["createdAt"] = f.CreatedAt.UTC()
	}
	if f.UpdatedAt != nil {
		doc["updatedAt"] = f.UpdatedAt.UTC()
	}
	return doc
}

type docUserRepository struct {
	store      docstore.Store
	collection string
}

func NewDocUserRepository(store docstore.Store, collection string) UserRepository {
	return &docUserRepository{store: store, collection: collection}
}

// userDocument mirrors the stored shape, including the password hash that
// model.User hides from JSON.
type userDocument struct {
	Email            string     `json:"email"`
	DisplayName      string     `json:"displayName"`
	LeetcodeUsername string     `json:"leetcodeUsername"`
	Friends          []string   `json:"friends"`
	HashedPassword   string     `json:"hashedPassword"`
	CreatedAt        *time.Time `json:"createdAt"`
	UpdatedAt        *time.Time `json:"updatedAt"`
}

func toUser(doc docstore.Document) (*model.User, error) {
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("encode user %s: %w", doc.ID, err)
	}
	var d userDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	return &model.User{
		ID:               doc.ID,
		Email:            d.Email,
		DisplayName:      d.DisplayName,
		LeetcodeUsername: d.LeetcodeUsername,
		Friends:          d.Friends,
		HashedPassword:   d.HashedPassword,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func (r *docUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("docUserRepository.FindByID: %w", err)
	}
	return toUser(*doc)
}

func (r *docUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findFirst(ctx, fieldEmail, email)
}

func (r *docUserRepository) FindByLeetcodeUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findFirst(ctx, fieldLeetcodeUsername, username)
}

// findFirst returns the first match by document id when several users share
// the value.
func (r *docUserRepository) findFirst(ctx context.Context, field, value string) (*model.User, error) {
	docs, err := r.store.FindBy(ctx, r.collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("docUserRepository.findFirst(%s): %w", field, err)
	}
	if len(docs) == 0 {
		return nil, common.ErrNotFound
	}
	return toUser(docs[0])
}

func (r *docUserRepository) Upsert(ctx context.Context, id string, fields UserFields) error {
	if err := r.store.Set(ctx, r.collection, id, fields.toDocument(), true); err != nil {
		return fmt.Errorf("docUserRepository.Upsert: %w", err)
	}
	return nil
}

func (r *docUserRepository) AddFriend(ctx context.Context, id, leetcodeUsername string) error {
	err := r.store.ArrayUnion(ctx, r.collection, id, fieldFriends, leetcodeUsername)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docUserRepository.AddFriend: %w", err)
	}
	return nil
}

func (r *docUserRepository) RemoveFriend(ctx context.Context, id, leetcodeUsername string) error {
	err := r.store.ArrayRemove(ctx, r.collection, id, fieldFriends, leetcodeUsername)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("docUserRepository.RemoveFriend: %w", err)
	}
	return nil
}
