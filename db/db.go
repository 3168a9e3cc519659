package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	RestaurantsCollection *mongo.Collection
	ItemsCollection       *mongo.Collection
	CategoriesCollection  *mongo.Collection
	CartsCollection       *mongo.Collection
	UserCollection        *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Connect opens the MongoDB client and binds the collections.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	Client = client
	d := client.Database(database)
	RestaurantsCollection = d.Collection("restaurants")
	ItemsCollection = d.Collection("items")
	CategoriesCollection = d.Collection("categories")
	CartsCollection = d.Collection("carts")
	UserCollection = d.Collection("users")
	IdempotencyCollection = d.Collection("idempotency")

	log.Info().Str("database", database).Msg("connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the indexes the handlers rely on. The unique
// (userId, restaurantId) index keeps one cart per user and restaurant.
func EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll *mongo.Collection
		idx  []mongo.IndexModel
	}{
		{CartsCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "restaurantId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_user_restaurant"),
		}}},
		{ItemsCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "restaurantId", Value: 1}, {Key: "categoryId", Value: 1}},
			Options: options.Index().SetName("restaurant_category"),
		}}},
		{CategoriesCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "restaurantId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_restaurant_name"),
		}}},
		{UserCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_username"),
		}}},
		{RestaurantsCollection, []mongo.IndexModel{{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		}}},
	}

	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}

// FindAndDecode runs filter against coll and decodes every document.
func FindAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
