package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fresh/apperr"
	"fresh/models"
	"fresh/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps carts in a collection with a unique
// (userId, restaurantId) index.
type MongoStore struct {
	carts *mongo.Collection
}

func NewMongoStore(carts *mongo.Collection) *MongoStore {
	return &MongoStore{carts: carts}
}

func (s *MongoStore) FindOrCreate(ctx context.Context, userID, restaurantID string) (*models.Cart, bool, error) {
	filter := bson.M{"userId": userID, "restaurantId": restaurantID}
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        utils.GetUUID(),
		"items":      bson.A{},
		"totalPrice": 0.0,
		"revision":   int64(0),
		"createdAt":  now,
		"updatedAt":  now,
	}}

	// Two concurrent upserts can both miss and one then hits the unique
	// index; the retry finds the winner's document.
	var res *mongo.UpdateResult
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.carts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert cart: %w", err)
	}

	var c models.Cart
	if err := s.carts.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, false, fmt.Errorf("load cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, res.UpsertedCount > 0, nil
}

func (s *MongoStore) Find(ctx context.Context, userID, restaurantID string) (*models.Cart, error) {
	var c models.Cart
	err := s.carts.FindOne(ctx, bson.M{"userId": userID, "restaurantId": restaurantID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (s *MongoStore) FindByUser(ctx context.Context, userID string) ([]models.Cart, error) {
	cursor, err := s.carts.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("find carts: %w", err)
	}
	defer cursor.Close(ctx)

	carts := []models.Cart{}
	if err := cursor.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("decode carts: %w", err)
	}
	return carts, nil
}

func (s *MongoStore) Replace(ctx context.Context, c *models.Cart, expected int64) error {
	next := *c
	next.Revision = expected + 1

	res, err := s.carts.ReplaceOne(ctx, bson.M{"_id": c.ID, "revision": expected}, next)
	if err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrRevisionConflict
	}
	c.Revision = next.Revision
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, restaurantID string) error {
	res, err := s.carts.DeleteOne(ctx, bson.M{"userId": userID, "restaurantId": restaurantID})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrCartNotFound
	}
	return nil
}

// MongoCatalog reads restaurants, items and users for the cart service.
type MongoCatalog struct {
	Restaurants *mongo.Collection
	Items       *mongo.Collection
	Users       *mongo.Collection
}

func (m *MongoCatalog) Restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := m.Restaurants.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant: %w", err)
	}
	return &r, nil
}

func (m *MongoCatalog) Item(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	err := m.Items.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &it, nil
}

func (m *MongoCatalog) UserExists(ctx context.Context, id string) (bool, error) {
	n, err := m.Users.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (m *MongoCatalog) AttachCart(ctx context.Context, userID, cartID string) error {
	_, err := m.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"carts": cartID}})
	if err != nil {
		return fmt.Errorf("attach cart: %w", err)
	}
	return nil
}
