package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodtue/internal/config"
)

func testConfig(t *testing.T, overrides map[string]interface{}) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("HOTEL_JWT_SECRET", "test_hotel_secret")
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func newTestApplication(t *testing.T, overrides map[string]interface{}) *application {
	t.Helper()
	a, err := newApplication(context.Background(), testConfig(t, overrides))
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestHealthAndRoot(t *testing.T) {
	a := newTestApplication(t, nil)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["storage"])

	resp, err = a.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	a := newTestApplication(t, nil)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["message"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	a := newTestApplication(t, nil)

	for _, path := range []string{"/api/cart/getcart", "/api/orders/myorders", "/api/hotelorders/orders"} {
		resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestSeedDemoData(t *testing.T) {
	a := newTestApplication(t, map[string]interface{}{"SEED_DEMO_DATA": true})

	hotels, err := a.repos.Hotels.List(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Len(t, hotels[0].Dishes, 3)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/api/hotels/gethotel?city=Pune", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
