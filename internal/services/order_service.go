package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"foodtue/internal/events"
	"foodtue/internal/models"
	"foodtue/internal/repositories"
	"foodtue/pkg/idempotency"
)

const publishTimeout = 5 * time.Second

// OrderService handles business logic related to orders.
type OrderService struct {
	users     repositories.UserRepository
	hotels    repositories.HotelRepository
	carts     repositories.CartRepository
	orders    repositories.OrderRepository
	idem      idempotency.Store
	publisher events.Publisher
	qr        QRGenerator
}

// NewOrderService creates a new OrderService. A nil idempotency store leaves
// duplicate checkouts to the key stored on the order; a nil publisher drops
// events.
func NewOrderService(repos repositories.Set, idem idempotency.Store, publisher events.Publisher, qr QRGenerator) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		users:     repos.Users,
		hotels:    repos.Hotels,
		carts:     repos.Carts,
		orders:    repos.Orders,
		idem:      idem,
		publisher: publisher,
		qr:        qr,
	}
}

// PlaceOrder turns the user's cart into an order and empties the cart.
//
// When key is set, a repeated call with the same key returns the order
// created by the first one instead of placing another.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, key string) (*models.PlacedOrder, error) {
	if key == "" {
		return s.placeOrder(ctx, userID, "")
	}
	if s.idem == nil {
		return s.placeKeyed(ctx, userID, key)
	}

	idemKey := idempotency.Key(userID, key)
	orderID, acquired, err := s.idem.Reserve(ctx, idemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if !acquired {
		if orderID == "" {
			return nil, ErrRequestInProgress
		}
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order %s for replay: %w", orderID, err)
		}
		return &models.PlacedOrder{Order: order, Replayed: true}, nil
	}

	// The reservation must be settled even if the client has gone away.
	settle := context.WithoutCancel(ctx)
	placed, err := s.placeKeyed(ctx, userID, key)
	if err != nil {
		if relErr := s.idem.Release(settle, idemKey); relErr != nil {
			log.Warn().Err(relErr).Str("key", idemKey).Msg("failed to release idempotency key")
		}
		return nil, err
	}
	if err := s.idem.Complete(settle, idemKey, placed.Order.ID); err != nil {
		log.Warn().Err(err).Str("key", idemKey).Msg("failed to complete idempotency key")
	}
	return placed, nil
}

// placeKeyed places the order unless the user already has one stored under
// key. The stored key outlives the idempotency store, e.g. across restarts.
func (s *OrderService) placeKeyed(ctx context.Context, userID, key string) (*models.PlacedOrder, error) {
	prior, err := s.storedOrder(ctx, userID, key)
	if err != nil || prior != nil {
		return prior, err
	}

	placed, err := s.placeOrder(ctx, userID, key)
	// A concurrent request with the same key either hit the unique index or
	// cleared the cart first.
	if errors.Is(err, repositories.ErrDuplicate) || errors.Is(err, ErrCartConflict) {
		if prior, lookupErr := s.storedOrder(ctx, userID, key); lookupErr == nil && prior != nil {
			return prior, nil
		}
	}
	return placed, err
}

func (s *OrderService) storedOrder(ctx context.Context, userID, key string) (*models.PlacedOrder, error) {
	order, err := s.orders.GetByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order by idempotency key: %w", err)
	}
	return &models.PlacedOrder{Order: order, Replayed: true}, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID, key string) (*models.PlacedOrder, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Prices come from the catalog as it is now, not from when the dish was
	// added to the cart.
	lookup := newCatalogLookup(s.hotels)
	items := make(models.OrderItems, 0, len(cart.Items))
	var skipped []models.SkippedItem
	total := decimal.Zero
	for _, item := range cart.Items {
		hotel, dish, reason, err := lookup.resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			skipped = append(skipped, skippedItem(item, reason))
			continue
		}
		items = append(items, models.OrderItem{
			HotelID:  hotel.ID,
			DishID:   dish.ID,
			Name:     dish.Name,
			Price:    dish.Price,
			Quantity: item.Quantity,
		})
		total = total.Add(lineTotal(dish.Price, item.Quantity))
	}
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Items:          items,
		TotalPrice:     total.InexactFloat64(),
		Status:         models.StatusPending,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.orders.PlaceFromCart(ctx, order, cart.ID, cart.Version)
	if errors.Is(err, repositories.ErrConflict) {
		return nil, ErrCartConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Int("items", len(items)).
		Int("skipped", len(skipped)).
		Float64("total", order.TotalPrice).
		Msg("order placed")

	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order, ""))
	return &models.PlacedOrder{Order: order, Skipped: skipped}, nil
}

// GetUserOrders returns the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// OrderQRCode renders the pickup QR code of one of the user's orders as PNG.
func (s *OrderService) OrderQRCode(ctx context.Context, userID, orderID string) ([]byte, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.Generate(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// GetHotelOrders returns the orders containing at least one dish of the hotel
// owned by ownerEmail, newest first, with the ordering customer attached.
func (s *OrderService) GetHotelOrders(ctx context.Context, ownerEmail string) ([]models.HotelOrder, error) {
	hotel, err := s.ownedHotel(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListByHotel(ctx, hotel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel orders: %w", err)
	}

	seen := make(map[string]bool)
	userIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		if !seen[o.UserID] {
			seen[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	customers := make(map[string]*models.Customer, len(users))
	for i := range users {
		customers[users[i].ID] = users[i].Customer()
	}

	result := make([]models.HotelOrder, 0, len(orders))
	for i := range orders {
		result = append(result, models.HotelOrder{
			Order:    &orders[i],
			Customer: customers[orders[i].UserID],
		})
	}
	return result, nil
}

// UpdateStatus moves an order to status on behalf of the owner of a hotel
// that has dishes in it.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerEmail, orderID, status string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	hotel, err := s.ownedHotel(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !order.HasHotel(hotel.ID) {
		return nil, ErrForbidden
	}

	prev := order.Status
	if !models.CanTransition(prev, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}

	err = s.orders.UpdateStatus(ctx, order.ID, prev, next)
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return nil, ErrOrderConflict
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrOrderNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = next
	order.UpdatedAt = time.Now().UTC()

	log.Info().Str("order_id", order.ID).Str("from", prev.String()).Str("to", next.String()).Msg("order status changed")
	s.publish(ctx, events.NewOrderEvent(events.OrderStatusChanged, order, prev))
	return order, nil
}

func (s *OrderService) ownedHotel(ctx context.Context, ownerEmail string) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByEmail(ctx, ownerEmail)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	return hotel, nil
}

// publish sends event without failing the caller; the order is already
// committed when it runs.
func (s *OrderService) publish(ctx context.Context, event events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Str("order_id", event.OrderID).Msg("failed to publish order event")
	}
}
