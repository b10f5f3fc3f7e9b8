package models_test

import (
	"testing"

	"foodtue/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOrder_HotelIDs(t *testing.T) {
	order := &models.Order{Items: models.OrderItems{
		{HotelID: "h2", DishID: "d1"},
		{HotelID: "h1", DishID: "d1"},
		{HotelID: "h2", DishID: "d3"},
	}}

	assert.Equal(t, []string{"h2", "h1"}, order.HotelIDs())
	assert.True(t, order.HasHotel("h1"))
	assert.False(t, order.HasHotel("h3"))
}

func TestHotel_FindAndRemoveDish(t *testing.T) {
	hotel := &models.Hotel{Dishes: models.Dishes{
		{ID: "d1", Name: "Dosa", Price: 60},
		{ID: "d2", Name: "Idli", Price: 40},
	}}

	dish, ok := hotel.FindDish("d2")
	assert.True(t, ok)
	assert.Equal(t, "Idli", dish.Name)

	_, ok = hotel.FindDish("d3")
	assert.False(t, ok)

	assert.True(t, hotel.RemoveDish("d1"))
	assert.False(t, hotel.RemoveDish("d1"))
	assert.Len(t, hotel.Dishes, 1)
}
