package media

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	KindImage = "image"
	KindVideo = "video"
)

// Item is one uploaded asset as reported by the media host. Duration and
// Thumbnail are only ever set for videos; images persist both as null.
type Item struct {
	URL       string   `bson:"url" json:"url"`
	Kind      string   `bson:"type" json:"type"`
	Format    string   `bson:"format" json:"format"`
	Duration  *float64 `bson:"duration" json:"duration"`
	Thumbnail *string  `bson:"thumbnail" json:"thumbnail"`
}

// Collection is one admin-submitted gallery entry. The media sequence keeps
// submission order and is owned exclusively by the collection.
type Collection struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	MarketingVertical string             `bson:"marketing_vertical" json:"marketingVertical"`
	Media             []Item             `bson:"media" json:"media"`
	OwnerID           string             `bson:"user_id" json:"userId"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
}
