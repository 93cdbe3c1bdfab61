package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	clientdomain "github.com/tair/client-favorites/internal/client/domain"
)

// ProductRef anchors an externally assigned product identifier locally.
// It carries no data of its own and is created lazily the first time any
// client favorites that identifier.
type ProductRef struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement:false"`
}

// TableName specifies the table name
func (ProductRef) TableName() string {
	return "product_refs"
}

// ClientFavorite is one row of the client/product association. The composite
// primary key makes the no-duplicates invariant structural.
type ClientFavorite struct {
	ClientID  uuid.UUID           `json:"client_id" gorm:"type:uuid;primaryKey"`
	ProductID int64               `json:"product_id" gorm:"primaryKey"`
	Client    clientdomain.Client `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Product   ProductRef          `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (ClientFavorite) TableName() string {
	return "client_favorites"
}

var (
	// ErrAlreadyFavorited means the (client, product) pair already exists
	ErrAlreadyFavorited = errors.New("product already in favorites")

	// ErrNotFavorited means the (client, product) pair does not exist
	ErrNotFavorited = errors.New("product not in client's favorites")
)

// FavoriteDisplay is a display-ready favorite entry composed from live
// catalog data. Review fields are nil when the product has no rating.
type FavoriteDisplay struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image,omitempty"`
	Price       float64  `json:"price"`
	Review      *float64 `json:"review"`
	ReviewCount *int     `json:"review_count"`
}

// FavoriteRepository maintains the client/product association set
type FavoriteRepository interface {
	Add(ctx context.Context, clientID uuid.UUID, productID int64) error
	Remove(ctx context.Context, clientID uuid.UUID, productID int64) error
	ListIDs(ctx context.Context, clientID uuid.UUID) ([]int64, error)
}
