package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ashiruhammed/farmstarter/internal/auth"
	"github.com/ashiruhammed/farmstarter/internal/cart"
	"github.com/ashiruhammed/farmstarter/internal/catalog"
	"github.com/ashiruhammed/farmstarter/internal/events"
	kafkax "github.com/ashiruhammed/farmstarter/internal/kafka"
)

// StorefrontHandler exposes the catalog, cart and auth managers over
// HTTP. It is the only caller of the managers' operations; event
// publishing happens here, after a mutation, never inside the core.
type StorefrontHandler struct {
	Catalog *catalog.Catalog
	Cart    *cart.Manager
	Auth    *auth.Manager

	// nil when no brokers are configured; publishing is then skipped
	CartEvents *kafkax.Producer
	UserEvents *kafkax.Producer

	Service string
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{id}", h.updateQuantity)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart", h.clearCart)

	r.Post("/auth/login", h.login)
	r.Post("/auth/signup", h.signup)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/session", h.session)
}

type cartResp struct {
	Items []cart.LineItem `json:"items"`
	Total float64         `json:"total"`
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResp struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.List())
}

func (h *StorefrontHandler) cartReady(w http.ResponseWriter) bool {
	if h.Cart.Loading() {
		writeError(w, http.StatusServiceUnavailable, "cart still loading")
		return false
	}
	return true
}

func (h *StorefrontHandler) authReady(w http.ResponseWriter) bool {
	if h.Auth.Loading() {
		writeError(w, http.StatusServiceUnavailable, "session still loading")
		return false
	}
	return true
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	if !h.cartReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, cartResp{Items: h.Cart.Items(), Total: h.Cart.Total()})
}

func (h *StorefrontHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, ok := h.Catalog.Find(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown product")
		return
	}
	if !h.cartReady(w) {
		return
	}

	h.Cart.AddToCart(p)
	h.publishCartEvent(r, "added", p.ID)
	writeJSON(w, http.StatusOK, cartResp{Items: h.Cart.Items(), Total: h.Cart.Total()})
}

func (h *StorefrontHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !h.cartReady(w) {
		return
	}

	h.Cart.UpdateQuantity(id, req.Quantity)
	h.publishCartEvent(r, "quantity", id)
	writeJSON(w, http.StatusOK, cartResp{Items: h.Cart.Items(), Total: h.Cart.Total()})
}

func (h *StorefrontHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if !h.cartReady(w) {
		return
	}

	h.Cart.RemoveFromCart(id)
	h.publishCartEvent(r, "removed", id)
	writeJSON(w, http.StatusOK, cartResp{Items: h.Cart.Items(), Total: h.Cart.Total()})
}

func (h *StorefrontHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	if !h.cartReady(w) {
		return
	}
	h.Cart.ClearCart()
	h.publishCartEvent(r, "cleared", 0)
	writeJSON(w, http.StatusOK, cartResp{Items: h.Cart.Items(), Total: 0})
}

func (h *StorefrontHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if !h.authReady(w) {
		return
	}

	if !h.Auth.Login(r.Context(), req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	u, _ := h.Auth.CurrentUser()
	h.publishUserEvent(r, events.EventUserLoggedIn, u)
	writeJSON(w, http.StatusOK, userResp{ID: u.ID, Username: u.Username})
}

func (h *StorefrontHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if !h.authReady(w) {
		return
	}

	if !h.Auth.Signup(r.Context(), req.Username, req.Password) {
		writeError(w, http.StatusConflict, "username taken")
		return
	}
	u, _ := h.Auth.CurrentUser()
	h.publishUserEvent(r, events.EventUserSignedUp, u)
	writeJSON(w, http.StatusCreated, userResp{ID: u.ID, Username: u.Username})
}

func (h *StorefrontHandler) logout(w http.ResponseWriter, r *http.Request) {
	if !h.authReady(w) {
		return
	}
	u, ok := h.Auth.CurrentUser()
	h.Auth.Logout(r.Context())
	if ok {
		h.publishUserEvent(r, events.EventUserLoggedOut, u)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorefrontHandler) session(w http.ResponseWriter, r *http.Request) {
	if !h.authReady(w) {
		return
	}
	u, ok := h.Auth.CurrentUser()
	if !ok {
		writeError(w, http.StatusNotFound, "no session")
		return
	}
	writeJSON(w, http.StatusOK, userResp{ID: u.ID, Username: u.Username})
}

func (h *StorefrontHandler) publishCartEvent(r *http.Request, action string, productID int) {
	if h.CartEvents == nil {
		return
	}
	payload := events.CartUpdatedPayload{
		Action:    action,
		ProductID: productID,
		Items:     len(h.Cart.Items()),
		Total:     h.Cart.Total(),
	}
	username := ""
	if u, ok := h.Auth.CurrentUser(); ok {
		username = u.Username
	}
	h.publish(h.CartEvents, r, events.EventCartUpdated, username, kafkax.MustMarshal(payload))
}

func (h *StorefrontHandler) publishUserEvent(r *http.Request, eventType string, u auth.User) {
	if h.UserEvents == nil {
		return
	}
	payload := events.UserActivityPayload{UserID: u.ID, Username: u.Username}
	h.publish(h.UserEvents, r, eventType, u.Username, kafkax.MustMarshal(payload))
}

func (h *StorefrontHandler) publish(p *kafkax.Producer, r *http.Request, eventType, key string, payload []byte) {
	ev := events.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.Service,
		TraceID:      r.Header.Get("X-Request-Id"),
		Payload:      payload,
	}
	p.Publish(events.PartitionKey(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
