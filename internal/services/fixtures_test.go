package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodtue/internal/events"
	"foodtue/internal/models"
	"foodtue/internal/repositories"
	"foodtue/internal/services"
	"foodtue/pkg/idempotency"
)

type fixture struct {
	repos  repositories.Set
	idem   *idempotency.MemoryStore
	carts  *services.CartService
	orders *services.OrderService
	hotels *services.HotelService
	hotel  *models.Hotel // Sagar, owner sagar@example.com, dishes d1 (100) and d2 (50)
}

func newFixture(t *testing.T, publisher events.Publisher) *fixture {
	t.Helper()
	repos := repositories.NewMockRepositories()
	idem := idempotency.NewMemoryStore(time.Hour)

	f := &fixture{
		repos:  repos,
		idem:   idem,
		carts:  services.NewCartService(repos.Carts, repos.Hotels),
		orders: services.NewOrderService(repos, idem, publisher, services.DefaultQRGenerator{BaseURL: "http://localhost:5000"}),
		hotels: services.NewHotelService(repos.Hotels, "hotel_secret", time.Hour),
	}
	f.hotel = f.addHotel(t, "Sagar", "sagar@example.com",
		models.Dish{ID: "d1", Name: "Thali", Price: 100},
		models.Dish{ID: "d2", Name: "Lassi", Price: 50},
	)
	return f
}

func (f *fixture) addHotel(t *testing.T, name, email string, dishes ...models.Dish) *models.Hotel {
	t.Helper()
	hotel := &models.Hotel{Name: name, Email: email, City: "Pune", Dishes: dishes}
	require.NoError(t, f.repos.Hotels.Create(context.Background(), hotel))
	return hotel
}

func (f *fixture) addUser(t *testing.T, id, username string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: username + "@example.com", Username: username, Mobile: "9999999999"}
	require.NoError(t, f.repos.Users.Create(context.Background(), user))
	return user
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

// mockCartRepo is a testify mock of repositories.CartRepository.
type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart).Clone(), args.Error(1)
}

func (m *mockCartRepo) Save(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

// mockOrderRepo is a testify mock of repositories.OrderRepository.
type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) PlaceFromCart(ctx context.Context, order *models.Order, cartID string, cartVersion int) error {
	args := m.Called(ctx, order, cartID, cartVersion)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order).Clone(), args.Error(1)
}

func (m *mockOrderRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByHotel(ctx context.Context, hotelID string) ([]models.Order, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// mockUserRepo is a testify mock of repositories.UserRepository.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// mockIdempotencyStore is a testify mock of idempotency.Store.
type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockIdempotencyStore) Complete(ctx context.Context, key, result string) error {
	return m.Called(ctx, key, result).Error(0)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
