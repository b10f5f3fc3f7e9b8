package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtue/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the MongoDB repositories.
const (
	UsersCollection  = "users"
	HotelsCollection = "hotels"
	CartsCollection  = "carts"
	OrdersCollection = "orders"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		HotelsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "city", Value: 1}}},
		},
		CartsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "items.hotel_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with %s: %w", what, err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email "+email)
}

// GetByIDs retrieves all users whose ID is in ids.
func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// MongoHotelRepository is a MongoDB implementation of HotelRepository. Dishes
// are embedded in the hotel document.
type MongoHotelRepository struct {
	coll *mongo.Collection
}

// NewMongoHotelRepository creates a new instance of MongoHotelRepository.
func NewMongoHotelRepository(db *mongo.Database) *MongoHotelRepository {
	return &MongoHotelRepository{coll: db.Collection(HotelsCollection)}
}

// Create inserts a new hotel document.
func (r *MongoHotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID == "" {
		hotel.ID = uuid.New().String()
	}
	if hotel.Dishes == nil {
		hotel.Dishes = models.Dishes{}
	}
	hotel.CreatedAt = time.Now().UTC()
	hotel.UpdatedAt = hotel.CreatedAt
	if _, err := r.coll.InsertOne(ctx, hotel); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("hotel with email %s: %w", hotel.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (r *MongoHotelRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := r.coll.FindOne(ctx, filter).Decode(&hotel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("hotel with %s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get hotel with %s: %w", what, err)
	}
	return &hotel, nil
}

// GetByID retrieves a hotel by ID.
func (r *MongoHotelRepository) GetByID(ctx context.Context, id string) (*models.Hotel, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

// GetByEmail retrieves a hotel by its owner email.
func (r *MongoHotelRepository) GetByEmail(ctx context.Context, email string) (*models.Hotel, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email "+email)
}

// List returns hotels in creation order, optionally filtered by city.
func (r *MongoHotelRepository) List(ctx context.Context, city string) ([]models.Hotel, error) {
	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	hotels := []models.Hotel{}
	if err := cur.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}
	return hotels, nil
}

// Update writes back the hotel's profile and dish list.
func (r *MongoHotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	hotel.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": hotel.ID}, bson.M{"$set": bson.M{
		"name":       hotel.Name,
		"city":       hotel.City,
		"area":       hotel.Area,
		"image":      hotel.Image,
		"dishes":     hotel.Dishes,
		"updated_at": hotel.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("hotel with ID %s: %w", hotel.ID, ErrNotFound)
	}
	return nil
}

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	coll *mongo.Collection
}

// NewMongoCartRepository creates a new instance of MongoCartRepository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection(CartsCollection)}
}

// GetByUserID retrieves the cart of a user.
func (r *MongoCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Save inserts a new cart or compare-and-swaps an existing one on its version.
func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}

	if cart.Version == 0 {
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		cart.Version = 1
		cart.CreatedAt = now
		cart.UpdatedAt = now
		if _, err := r.coll.InsertOne(ctx, cart); err != nil {
			cart.Version = 0
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("cart for user %s: %w", cart.UserID, ErrConflict)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{"$set": bson.M{"items": cart.Items, "version": cart.Version + 1, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update cart %s: %w", cart.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrConflict)
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	carts  *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		client: db.Client(),
		orders: db.Collection(OrdersCollection),
		carts:  db.Collection(CartsCollection),
	}
}

// PlaceFromCart clears the cart and inserts the order in a multi-document
// transaction. MongoDB only supports this on a replica set or sharded cluster.
func (r *MongoOrderRepository) PlaceFromCart(ctx context.Context, order *models.Order, cartID string, cartVersion int) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.carts.UpdateOne(sc,
			bson.M{"_id": cartID, "version": cartVersion},
			bson.M{"$set": bson.M{"items": models.CartItems{}, "version": cartVersion + 1, "updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to clear cart %s: %w", cartID, err)
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("cart %s at version %d: %w", cartID, cartVersion, ErrConflict)
		}
		if _, err := r.orders.InsertOne(sc, order); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, fmt.Errorf("order with idempotency key %q: %w", order.IdempotencyKey, ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		return nil, nil
	})
	return err
}

// GetByID retrieves an order by ID.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByIdempotencyKey retrieves the order a user placed with key.
func (r *MongoOrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"user_id": userID, "idempotency_key": key}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with idempotency key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by idempotency key: %w", err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.orders.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser retrieves the orders of a user, newest first.
func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := r.find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListByHotel retrieves the orders containing an item of hotelID, newest first.
func (r *MongoOrderRepository) ListByHotel(ctx context.Context, hotelID string) ([]models.Order, error) {
	orders, err := r.find(ctx, bson.M{"items.hotel_id": hotelID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for hotel %s: %w", hotelID, err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another.
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.orders.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("order %s is no longer %s: %w", id, from, ErrConflict)
}

// NewMongoRepositories wires every MongoDB repository around one database.
func NewMongoRepositories(db *mongo.Database) Set {
	return Set{
		Users:  NewMongoUserRepository(db),
		Hotels: NewMongoHotelRepository(db),
		Carts:  NewMongoCartRepository(db),
		Orders: NewMongoOrderRepository(db),
	}
}
