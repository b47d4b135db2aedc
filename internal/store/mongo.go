package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arjun/wishhub/internal/models"
)

// ErrNotFound is returned when a targeted update matched the wishlist but
// modified nothing, i.e. the product to remove was not there.
var ErrNotFound = errors.New("not found")

// MongoStore handles user and wishlist CRUD in MongoDB. Collaborators and
// products are embedded arrays; every mutation is a single update-operator
// write, so concurrent appends to the same wishlist cannot lose updates.
type MongoStore struct {
	users     *mongo.Collection
	wishlists *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:     db.Collection("users"),
		wishlists: db.Collection("wishlists"),
	}
}

// EnsureIndexes creates the unique email index on users.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// ── Users ────────────────────────────────────────────────

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	res, err := s.users.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user by email: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var u models.User
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user by id: %w", err)
	}
	return &u, nil
}

// ── Wishlists ────────────────────────────────────────────

func (s *MongoStore) InsertWishlist(ctx context.Context, w *models.Wishlist) error {
	res, err := s.wishlists.InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("mongo insert wishlist: %w", err)
	}
	w.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListWishlistsForUser returns every wishlist where userID is the creator
// or a collaborator, newest-created first.
func (s *MongoStore) ListWishlistsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Wishlist, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"createdBy._id": userID},
		bson.M{"collaborators._id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.wishlists.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find wishlists: %w", err)
	}
	defer cur.Close(ctx)

	var lists []models.Wishlist
	if err := cur.All(ctx, &lists); err != nil {
		return nil, fmt.Errorf("mongo decode wishlists: %w", err)
	}
	return lists, nil
}

func (s *MongoStore) GetWishlistByID(ctx context.Context, id primitive.ObjectID) (*models.Wishlist, error) {
	var w models.Wishlist
	err := s.wishlists.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find wishlist: %w", err)
	}
	return &w, nil
}

// AddCollaborator appends c to the collaborators array and touches the
// update timestamp. The append happens server-side.
func (s *MongoStore) AddCollaborator(ctx context.Context, wishlistID primitive.ObjectID, c models.Collaborator) error {
	_, err := s.wishlists.UpdateOne(ctx,
		bson.M{"_id": wishlistID},
		bson.M{
			"$push": bson.M{"collaborators": c},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo add collaborator: %w", err)
	}
	return nil
}

// AddProduct appends p to the products array and touches the update
// timestamp.
func (s *MongoStore) AddProduct(ctx context.Context, wishlistID primitive.ObjectID, p models.Product) error {
	_, err := s.wishlists.UpdateOne(ctx,
		bson.M{"_id": wishlistID},
		bson.M{
			"$push": bson.M{"products": p},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo add product: %w", err)
	}
	return nil
}

// RemoveProduct pulls the product with productID out of the array. The
// filter requires the product to be present so a miss returns ErrNotFound
// and leaves the document untouched, timestamp included.
func (s *MongoStore) RemoveProduct(ctx context.Context, wishlistID, productID primitive.ObjectID) error {
	res, err := s.wishlists.UpdateOne(ctx,
		bson.M{"_id": wishlistID, "products._id": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"_id": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo remove product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
