package kafka

import "time"

// ClientEvent describes a client lifecycle change
type ClientEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ClientID  string    `json:"client_id"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FavoriteEvent describes a favorites association change
type FavoriteEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ClientID  string    `json:"client_id"`
	ProductID int64     `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeClientCreated   = "client.created"
	EventTypeClientDeleted   = "client.deleted"
	EventTypeFavoriteAdded   = "favorite.added"
	EventTypeFavoriteRemoved = "favorite.removed"
)

// Kafka topics
const (
	TopicClientEvents   = "client-events"
	TopicFavoriteEvents = "favorite-events"
)
