package media

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionView is the shape the gallery pages consume for a single vertical.
type CollectionView struct {
	ID                primitive.ObjectID `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Media             []Item             `json:"media"`
	MarketingVertical string             `json:"marketingVertical,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// VerticalView groups every collection under one service category.
type VerticalView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	MediaItems  []CollectionView `json:"mediaItems"`
}

// Preview collapses a collection to its first asset for the homepage feed.
type Preview struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Kind        string             `json:"type"`
	Thumbnail   *string            `json:"thumbnail"`
	Category    string             `json:"category"`
	CreatedAt   time.Time          `json:"createdAt"`
}
