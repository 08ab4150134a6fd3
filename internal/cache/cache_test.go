package cache

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSubscribeStoresLastPricePerSide(t *testing.T) {
	c, mr := newTestCache(t)
	bus := event.NewBus()
	c.Subscribe(bus)

	publish := func(name, price string) {
		bus.Publish(name, &event.Payload{Name: name, Asset: "USDT", Price: price})
	}
	for _, p := range []string{"100", "104", "107"} {
		publish(event.EventBuyPriceChanged, p)
	}
	publish(event.EventSellPriceChanged, "98")
	publish(event.EventInvestmentAdded, "1")
	bus.Close()

	buy, err := mr.Get("pool:price:USDT:buy")
	require.NoError(t, err)
	require.Equal(t, "107", buy)

	sell, err := mr.Get("pool:price:USDT:sell")
	require.NoError(t, err)
	require.Equal(t, "98", sell)

	require.Len(t, mr.Keys(), 2)
}

func TestPricesRoute(t *testing.T) {
	c, mr := newTestCache(t)
	app := fiber.New()
	RegisterRoutes(app, c)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/prices/USDT", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, mr.Set("pool:price:USDT:buy", "105"))
	require.NoError(t, mr.Set("pool:price:USDT:sell", "55"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/prices/USDT", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, map[string]string{"asset": "USDT", "buy": "105", "sell": "55"}, body)
}
