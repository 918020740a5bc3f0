package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sitesync-media/internal/media"
)

// CatalogRepo persists media collections. Collections are immutable once
// created; the only operations are create and the three read shapes.
type CatalogRepo struct {
	col *mongo.Collection
}

func NewCatalogRepo(col *mongo.Collection) *CatalogRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "marketing_vertical", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("vertical_created_idx"),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &CatalogRepo{col: col}
}

func (r *CatalogRepo) Create(ctx context.Context, c *media.Collection) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *CatalogRepo) DistinctVerticals(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "marketing_vertical", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *CatalogRepo) FindByVertical(ctx context.Context, vertical string) ([]*media.Collection, error) {
	return r.find(ctx, bson.M{"marketing_vertical": vertical})
}

func (r *CatalogRepo) FindAll(ctx context.Context) ([]*media.Collection, error) {
	return r.find(ctx, bson.M{})
}

func (r *CatalogRepo) find(ctx context.Context, filter bson.M) ([]*media.Collection, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*media.Collection
	for cur.Next(ctx) {
		var c media.Collection
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
