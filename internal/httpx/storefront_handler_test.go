package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashiruhammed/farmstarter/internal/auth"
	"github.com/ashiruhammed/farmstarter/internal/cart"
	"github.com/ashiruhammed/farmstarter/internal/catalog"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	st := store.NewMemory()
	cat := catalog.New([]catalog.Product{
		{ID: 7, Name: "Tomatoes", Price: 2.5, Unit: "kg", Stock: 40, Category: "Vegetables"},
		{ID: 9, Name: "Free Range Eggs", Price: 4.0, Unit: "dozen", Stock: 12, Category: "Dairy & Eggs"},
	})

	cm := cart.NewManager(st, log)
	cm.Load(context.Background())
	t.Cleanup(cm.Close)

	am := auth.NewManager(st, auth.PlaintextVerifier{}, []auth.User{{ID: 1, Username: "alice", Password: "pw1"}}, log)
	am.Restore(context.Background())

	h := &StorefrontHandler{Catalog: cat, Cart: cm, Auth: am, Service: "test"}
	r := NewRouter()
	h.Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	out := map[string]json.RawMessage{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestCartEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":7}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":7}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `5.0`, string(body["total"]))

	var items []cart.LineItem
	require.NoError(t, json.Unmarshal(body["items"], &items))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	t.Run("unknown product", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":99}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("update quantity", func(t *testing.T) {
		resp, body := do(t, http.MethodPut, srv.URL+"/cart/items/7", `{"quantity":4}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `10.0`, string(body["total"]))
	})

	t.Run("remove item", func(t *testing.T) {
		resp, body := do(t, http.MethodDelete, srv.URL+"/cart/items/7", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `0`, string(body["total"]))
	})

	t.Run("clear cart", func(t *testing.T) {
		_, _ = do(t, http.MethodPost, srv.URL+"/cart/items", `{"product_id":9}`)
		resp, body := do(t, http.MethodDelete, srv.URL+"/cart", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `0`, string(body["total"]))
	})
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("login rejects bad credentials", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/auth/login", `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = do(t, http.MethodGet, srv.URL+"/auth/session", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("login accepts seeded user", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, srv.URL+"/auth/login", `{"username":"alice","password":"pw1"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `"alice"`, string(body["username"]))

		resp, body = do(t, http.MethodGet, srv.URL+"/auth/session", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `"alice"`, string(body["username"]))
	})

	t.Run("signup rejects taken username", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/auth/signup", `{"username":"alice","password":"x"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("signup creates and logs in", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, srv.URL+"/auth/signup", `{"username":"bob","password":"hunter2"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `"bob"`, string(body["username"]))
	})

	t.Run("logout clears the session", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/auth/logout", "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = do(t, http.MethodGet, srv.URL+"/auth/session", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, srv.URL+"/auth/login", `{"username":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListProducts(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []catalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 2)
	assert.Equal(t, "Tomatoes", products[0].Name)
}
