package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxNameLength bounds the client display name
const MaxNameLength = 100

// Client represents a registered client who owns a favorites list
type Client struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate assigns the identifier before the row is inserted
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

var (
	// ErrClientNotFound means no client exists with the given identifier
	ErrClientNotFound = errors.New("client not found")

	// ErrEmailAlreadyRegistered means another client already owns the email
	ErrEmailAlreadyRegistered = errors.New("email already registered")
)

// ClientRepository defines the contract for client data access
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByEmail(ctx context.Context, email string) (*Client, error)
	FindAll(ctx context.Context, limit, offset int) ([]Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
