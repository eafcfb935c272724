package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/siteassist/siteassist/internal/models"
)

// userRecord is the wire shape of a user row.
type userRecord struct {
	ID        surrealmodels.RecordID `json:"id"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	FeedURL   string                 `json:"feed_url"`
	APIKey    string                 `json:"api_key"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (r userRecord) toModel() models.User {
	return models.User{
		ID:        fmt.Sprintf("%v", r.ID.ID),
		Name:      r.Name,
		Email:     r.Email,
		FeedURL:   r.FeedURL,
		APIKey:    r.APIKey,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// CreateUser inserts a new user record with a generated UUID id.
// A duplicate email surfaces as ErrUserAlreadyExists.
func (c *Client) CreateUser(ctx context.Context, input models.UserInput) (*models.User, error) {
	id := uuid.NewString()

	results, err := surrealdb.Query[[]userRecord](ctx, c.db, `
		CREATE type::thing("user", $id) CONTENT {
			name: $name,
			email: $email,
			feed_url: $feed_url,
			api_key: $api_key
		}
	`, map[string]any{
		"id":       id,
		"name":     input.Name,
		"email":    input.Email,
		"feed_url": input.FeedURL,
		"api_key":  input.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create user: no record returned")
	}

	user := (*results)[0].Result[0].toModel()
	return &user, nil
}

// GetUser retrieves a user by id. Returns ErrNotFound if absent.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	results, err := surrealdb.Query[[]userRecord](ctx, c.db, `
		SELECT * FROM type::record("user", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	user := (*results)[0].Result[0].toModel()
	return &user, nil
}

// UpdateFeedURL changes a user's feed URL and bumps updated_at.
func (c *Client) UpdateFeedURL(ctx context.Context, id, feedURL string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("user", $id) SET
			feed_url = $feed_url,
			updated_at = time::now()
	`, map[string]any{"id": id, "feed_url": feedURL})
	if err != nil {
		return fmt.Errorf("update feed url: %w", err)
	}
	return nil
}

// DeleteUser removes a user record. Deleting a missing user is a no-op.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("user", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
