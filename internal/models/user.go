package models

import "time"

// User is a registered feed owner. Each user owns one vector collection,
// one blob prefix and one relational record.
type User struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	FeedURL   string    `json:"feed_url"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInput is the input structure for creating a user.
type UserInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	FeedURL string `json:"feed_url"`
	APIKey  string `json:"api_key"`
}
