package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"foodtue/internal/database"
	"foodtue/internal/models"
	"foodtue/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setFactory func(t *testing.T) repositories.Set

func backends() map[string]setFactory {
	b := map[string]setFactory{
		"memory": func(t *testing.T) repositories.Set {
			return repositories.NewMockRepositories()
		},
		"sqlite": func(t *testing.T) repositories.Set {
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			db, err := database.OpenGORM("sqlite", dsn)
			require.NoError(t, err)
			sqlDB, err := db.DB()
			require.NoError(t, err)
			t.Cleanup(func() { sqlDB.Close() })
			return repositories.NewGORMRepositories(db)
		},
	}
	// MongoDB transactions need a replica set, so these only run when one is provided.
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		b["mongo"] = func(t *testing.T) repositories.Set {
			ctx := context.Background()
			db, err := database.OpenMongo(ctx, uri, "foodtue_test_"+uuid.NewString()[:8])
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = db.Drop(context.Background())
				_ = db.Client().Disconnect(context.Background())
			})
			return repositories.NewMongoRepositories(db)
		}
	}
	return b
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repos repositories.Set)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestUsers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		user := &models.User{Email: "asha@example.com", Username: "asha", Password: "hash", Mobile: "9999999999"}
		require.NoError(t, repos.Users.Create(ctx, user))
		assert.NotEmpty(t, user.ID)

		err := repos.Users.Create(ctx, &models.User{Email: "asha@example.com", Username: "other"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)

		byEmail, err := repos.Users.GetByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = repos.Users.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		users, err := repos.Users.GetByIDs(ctx, []string{user.ID, "missing"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "9999999999", users[0].Mobile)
	})
}

func TestHotels(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		h1 := &models.Hotel{Name: "Sagar", Email: "sagar@example.com", City: "Pune"}
		h2 := &models.Hotel{Name: "Annapurna", Email: "anna@example.com", City: "Mumbai"}
		require.NoError(t, repos.Hotels.Create(ctx, h1))
		require.NoError(t, repos.Hotels.Create(ctx, h2))

		assert.ErrorIs(t, repos.Hotels.Create(ctx, &models.Hotel{Email: "sagar@example.com"}), repositories.ErrDuplicate)

		all, err := repos.Hotels.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pune, err := repos.Hotels.List(ctx, "Pune")
		require.NoError(t, err)
		require.Len(t, pune, 1)
		assert.Equal(t, h1.ID, pune[0].ID)

		h1.Dishes = append(h1.Dishes, models.Dish{ID: "d1", Name: "Misal", Price: 80})
		require.NoError(t, repos.Hotels.Update(ctx, h1))

		got, err := repos.Hotels.GetByEmail(ctx, "sagar@example.com")
		require.NoError(t, err)
		dish, ok := got.FindDish("d1")
		require.True(t, ok)
		assert.Equal(t, 80.0, dish.Price)

		err = repos.Hotels.Update(ctx, &models.Hotel{ID: "missing"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCarts_CompareAndSwap(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		_, err := repos.Carts.GetByUserID(ctx, "u1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		cart := &models.Cart{UserID: "u1"}
		cart.Add("h1", "d1", 2)
		require.NoError(t, repos.Carts.Save(ctx, cart))
		assert.Equal(t, 1, cart.Version)

		// A second cart for the same user loses.
		err = repos.Carts.Save(ctx, &models.Cart{UserID: "u1"})
		assert.ErrorIs(t, err, repositories.ErrConflict)

		first, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		second, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)

		first.Increment("h1", "d1")
		require.NoError(t, repos.Carts.Save(ctx, first))
		assert.Equal(t, 2, first.Version)

		second.Remove("h1", "d1")
		assert.ErrorIs(t, repos.Carts.Save(ctx, second), repositories.ErrConflict)

		stored, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.CartItems{{HotelID: "h1", DishID: "d1", Quantity: 3}}, stored.Items)
	})
}

func placeOrder(t *testing.T, repos repositories.Set, userID string, createdAt time.Time, hotelIDs ...string) *models.Order {
	t.Helper()
	ctx := context.Background()
	cart, err := repos.Carts.GetByUserID(ctx, userID)
	if err != nil {
		cart = &models.Cart{UserID: userID}
	}
	order := &models.Order{UserID: userID, Status: models.StatusPending, CreatedAt: createdAt}
	for i, h := range hotelIDs {
		cart.Add(h, fmt.Sprintf("d%d", i), 1)
		order.Items = append(order.Items, models.OrderItem{HotelID: h, DishID: fmt.Sprintf("d%d", i), Name: "dish", Price: 10, Quantity: 1})
		order.TotalPrice += 10
	}
	require.NoError(t, repos.Carts.Save(ctx, cart))
	require.NoError(t, repos.Orders.PlaceFromCart(ctx, order, cart.ID, cart.Version))
	return order
}

func TestOrders_PlaceFromCart(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		order := placeOrder(t, repos, "u1", time.Now().UTC().Truncate(time.Millisecond), "h1", "h2")
		assert.NotEmpty(t, order.ID)

		cart, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items, "cart is cleared, not deleted")

		got, err := repos.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.Items, got.Items)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, 20.0, got.TotalPrice)

		_, err = repos.Orders.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestOrders_PlaceFromCartStaleVersionWritesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		cart := &models.Cart{UserID: "u1"}
		cart.Add("h1", "d1", 1)
		require.NoError(t, repos.Carts.Save(ctx, cart))
		staleVersion := cart.Version

		cart.Add("h1", "d1", 1)
		require.NoError(t, repos.Carts.Save(ctx, cart))

		order := &models.Order{UserID: "u1", Status: models.StatusPending,
			Items: models.OrderItems{{HotelID: "h1", DishID: "d1", Name: "x", Price: 1, Quantity: 1}}}
		err := repos.Orders.PlaceFromCart(ctx, order, cart.ID, staleVersion)
		assert.ErrorIs(t, err, repositories.ErrConflict)

		orders, err := repos.Orders.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, orders)

		stored, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Items[0].Quantity)
	})
}

func TestOrders_ListNewestFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Millisecond)
		o1 := placeOrder(t, repos, "u1", base.Add(-2*time.Hour), "h1")
		o2 := placeOrder(t, repos, "u2", base.Add(-1*time.Hour), "h1", "h2")
		o3 := placeOrder(t, repos, "u1", base, "h2")

		mine, err := repos.Orders.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, o3.ID, mine[0].ID)
		assert.Equal(t, o1.ID, mine[1].ID)

		h1Orders, err := repos.Orders.ListByHotel(ctx, "h1")
		require.NoError(t, err)
		require.Len(t, h1Orders, 2)
		assert.Equal(t, o2.ID, h1Orders[0].ID)
		assert.Equal(t, o1.ID, h1Orders[1].ID)

		none, err := repos.Orders.ListByHotel(ctx, "h9")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestOrders_UpdateStatus(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		order := placeOrder(t, repos, "u1", time.Now().UTC(), "h1")

		require.NoError(t, repos.Orders.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusPreparing))

		err := repos.Orders.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCancelled)
		assert.ErrorIs(t, err, repositories.ErrConflict)

		err = repos.Orders.UpdateStatus(ctx, "missing", models.StatusPending, models.StatusCancelled)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		got, err := repos.Orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPreparing, got.Status)
	})
}

func TestOrders_IdempotencyKeyUniquePerUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repos repositories.Set) {
		ctx := context.Background()
		place := func(userID string) error {
			cart, err := repos.Carts.GetByUserID(ctx, userID)
			if err != nil {
				cart = &models.Cart{UserID: userID}
			}
			require.NoError(t, cart.Add("h1", "d1", 1))
			require.NoError(t, repos.Carts.Save(ctx, cart))
			order := &models.Order{UserID: userID, Status: models.StatusPending, IdempotencyKey: "k1",
				Items: models.OrderItems{{HotelID: "h1", DishID: "d1", Name: "x", Price: 1, Quantity: 1}}}
			return repos.Orders.PlaceFromCart(ctx, order, cart.ID, cart.Version)
		}

		require.NoError(t, place("u1"))
		first, err := repos.Orders.GetByIdempotencyKey(ctx, "u1", "k1")
		require.NoError(t, err)

		assert.ErrorIs(t, place("u1"), repositories.ErrDuplicate)
		cart, err := repos.Carts.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1, "a rejected duplicate leaves the cart alone")

		mine, err := repos.Orders.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, first.ID, mine[0].ID)

		require.NoError(t, place("u2"), "keys are scoped per user")

		_, err = repos.Orders.GetByIdempotencyKey(ctx, "u1", "other")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
