package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/service"
)

// Handler handles HTTP requests for the storefront API.
type Handler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
}

func NewHandler(catalog *service.CatalogService, carts *service.CartService, orders *service.OrderService) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
	}
}

// Router assembles the full route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(EnableCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Get("/cart", h.handleGetCart)
			r.Post("/cart/items", h.handleAddCartItem)
			r.Put("/cart/items", h.handleUpdateCartItem)
			r.Delete("/cart/items", h.handleRemoveCartItem)
			r.Delete("/cart", h.handleClearCart)

			r.Post("/orders", h.handleCreateOrder)
			r.Get("/orders", h.handleListOrders)
			r.Get("/orders/{id}", h.handleGetOrder)
			r.Put("/orders/{id}/cancel", h.handleCancelOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth, RequireAdmin)

			r.Get("/admin/orders", h.handleAdminListOrders)
			r.Put("/admin/orders/{id}/status", h.handleAdminUpdateStatus)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Catalog ---

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// --- Cart ---

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variant_id"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	cart, err := h.carts.Get(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	cart, err := h.carts.Add(r.Context(), identity.UserID, req.ProductID, req.Quantity, req.VariantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	cart, err := h.carts.Update(r.Context(), identity.UserID, req.ProductID, req.Quantity, req.VariantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	cart, err := h.carts.Remove(r.Context(), identity.UserID, req.ProductID, req.VariantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	if err := h.carts.Clear(r.Context(), identity.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// --- Orders ---

type createOrderRequest struct {
	ContactInfo     entity.ContactInfo     `json:"contact_info"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	PaymentMethod   entity.PaymentMethod   `json:"payment_method"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	result, err := h.orders.CreateOrder(r.Context(), identity.UserID, service.CheckoutInput{
		ContactInfo:     req.ContactInfo,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	orders, err := h.orders.ListUserOrders(r.Context(), identity.UserID, 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	order, err := h.orders.GetOrder(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var req cancelOrderRequest
	if r.Body != nil {
		// body is optional; a bare cancel is fine
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := h.orders.Cancel(r.Context(), identity.UserID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// --- Admin ---

func (h *Handler) handleAdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListRecent(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type adminStatusRequest struct {
	Status           *entity.OrderStatus   `json:"status"`
	PaymentStatus    *entity.PaymentStatus `json:"payment_status"`
	PaymentReference *string               `json:"payment_reference"`
	TrackingNumber   *string               `json:"tracking_number"`
}

func (h *Handler) handleAdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req adminStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), service.AdminStatusUpdate{
		Status:           req.Status,
		PaymentStatus:    req.PaymentStatus,
		PaymentReference: req.PaymentReference,
		TrackingNumber:   req.TrackingNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
