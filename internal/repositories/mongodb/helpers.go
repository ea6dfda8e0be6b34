package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// translateError maps driver failures onto the application's error kinds.
func translateError(err error, notFoundMsg, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError(notFoundMsg).Wrap(err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewConflictError("Duplicate value. Please use another value.").Wrap(err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// findPage runs a count and a paginated find with the same filter.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, params *utils.PaginationParams) ([]*T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}

	cursor, err := coll.Find(ctx, filter, params.FindOptions(sort))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}

	return items, total, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return items, nil
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func regexpQuote(s string) string {
	return regexp.QuoteMeta(s)
}

// addImagePipeline appends image in one update so it never rewrites fields
// other writers own. A primary image demotes the others.
func addImagePipeline(image models.Image) mongo.Pipeline {
	var existing interface{} = bson.M{"$ifNull": bson.A{"$images", bson.A{}}}
	var primary interface{} = bson.M{"$ifNull": bson.A{"$primary_image", bson.M{"$literal": image.URL}}}
	if image.IsPrimary {
		existing = bson.M{"$map": bson.M{
			"input": existing,
			"as":    "img",
			"in":    bson.M{"$mergeObjects": bson.A{"$$img", bson.M{"is_primary": false}}},
		}}
		primary = bson.M{"$literal": image.URL}
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"images":        bson.M{"$concatArrays": bson.A{existing, bson.A{bson.M{"$literal": image}}}},
			"primary_image": primary,
			"updated_at":    time.Now(),
		}}},
	}
}

// setFields encodes doc for a $set, dropping the keys owned by atomic
// counters or fixed at insert.
func setFields(doc interface{}, skip ...string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}
	delete(fields, "_id")
	delete(fields, "created_at")
	for _, key := range skip {
		delete(fields, key)
	}
	return fields, nil
}
