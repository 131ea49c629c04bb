package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/cart"
	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/order"
	"github.com/kdiomande/rewards-platform/internal/workflow"
)

// Handler exposes the redemption workflow over HTTP. Authentication happens
// in middleware; authorization happens inside the services, per operation.
type Handler struct {
	catalog       *workflow.CatalogService
	carts         *workflow.CartService
	orders        *workflow.OrderWorkflow
	stock         *workflow.StockService
	notifications *workflow.NotificationService
}

func NewHandler(
	catalog *workflow.CatalogService,
	carts *workflow.CartService,
	orders *workflow.OrderWorkflow,
	stock *workflow.StockService,
	notifications *workflow.NotificationService,
) *Handler {
	return &Handler{
		catalog:       catalog,
		carts:         carts,
		orders:        orders,
		stock:         stock,
		notifications: notifications,
	}
}

// ListRewards returns the catalog, optionally filtered by ?category=.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	rewards, err := h.catalog.ListRewards(r.Context(), p, r.URL.Query().Get("category"))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out := make([]RewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		out = append(out, RewardResponse{
			ID:             rw.ID,
			Title:          rw.Label,
			TokensRequired: rw.TokenCost,
			Category:       rw.Category(),
			ImageURL:       rw.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ToggleFavorite pins or unpins a reward for the caller.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	rewardID, err := pathID(r, "id")
	if err != nil {
		writeFault(w, r, err)
		return
	}

	favorited, err := h.catalog.ToggleFavorite(r.Context(), principal(r), rewardID)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteResponse{RewardID: rewardID, Favorited: favorited})
}

// ListFavorites returns the caller's pinned rewards.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.catalog.ListFavorites(r.Context(), principal(r))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out := make([]RewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		out = append(out, RewardResponse{
			ID:             rw.ID,
			Title:          rw.Label,
			TokensRequired: rw.TokenCost,
			Category:       rw.Category(),
			ImageURL:       rw.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// AddToCart stages a reward selection, reserving stock per the configured
// policy.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	line, err := h.carts.AddItem(r.Context(), principal(r), req.RewardID, req.Quantity)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLine(*line))
}

// ViewCart returns the cart snapshot with balance and purchasable flag.
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), principal(r))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	resp := CartResponse{
		AvailableTokens: view.AvailableTokens,
		RequiredTokens:  view.RequiredTokens,
		Purchasable:     view.Purchasable,
		Lines:           make([]CartLineResponse, 0, len(view.Lines)),
	}
	for _, line := range view.Lines {
		resp.Lines = append(resp.Lines, mapCartLine(line))
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveFromCart deletes one cart line.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	rewardID, err := pathID(r, "rewardID")
	if err != nil {
		writeFault(w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), principal(r), rewardID); err != nil {
		writeFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaceOrder converts the caller's cart into a pending order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	placed, err := h.orders.Place(r.Context(), p)
	if err != nil {
		writeFault(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "order placed",
		"order_id", placed.ID, "account_id", p.AccountID, "amount", placed.Amount)
	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		OrderID: placed.ID,
		Amount:  placed.Amount,
		Status:  string(placed.Status),
	})
}

// ListOrders returns all orders for back-office review.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), principal(r))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrder(&o))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOrder returns one order with its item snapshot.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// ValidateOrder runs the validation workflow; the response status is either
// validated or cancelled (stock shortfall).
func (h *Handler) ValidateOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Validate(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// CancelOrder cancels a pending order.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// DeleteOrder hard-deletes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStock returns every stock entry.
func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stock.List(r.Context(), principal(r))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out := make([]StockResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, StockResponse{
			ID:                e.ID,
			RewardID:          e.RewardID,
			QuantityAvailable: e.QuantityAvailable,
			LastUpdated:       e.LastUpdated.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Restock sets the absolute available quantity for a reward.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	entry, created, err := h.stock.Restock(r.Context(), principal(r), req.RewardID, req.QuantityAvailable)
	if err != nil {
		writeFault(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, StockResponse{
		ID:                entry.ID,
		RewardID:          entry.RewardID,
		QuantityAvailable: entry.QuantityAvailable,
		LastUpdated:       entry.LastUpdated.UTC().Format(time.RFC3339),
	})
}

// DeleteStock removes a stock entry.
func (h *Handler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeFault(w, r, err)
		return
	}
	if err := h.stock.Delete(r.Context(), principal(r), id); err != nil {
		writeFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotifications returns the caller's message log, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifs, err := h.notifications.List(r.Context(), principal(r))
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out := make([]NotificationResponse, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// principal returns the principal attached by the auth middleware, or nil
// for unauthenticated requests (the services reject nil with Forbidden).
func principal(r *http.Request) *auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fault.Errorf(fault.InvalidArgument, "invalid %s", name)
	}
	return id, nil
}

func mapCartLine(line cart.Line) CartLineResponse {
	return CartLineResponse{
		RewardID:      line.Reward.ID,
		Title:         line.Reward.Label,
		Quantity:      line.Item.Quantity,
		TokensPerItem: line.Reward.TokenCost,
		TotalTokens:   line.Tokens,
		ImageURL:      line.Reward.ImageURL,
	}
}

func mapOrder(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			RewardID:  it.RewardID,
			Title:     it.Label,
			TokenCost: it.TokenCost,
			Quantity:  it.Quantity,
		})
	}
	return OrderResponse{
		ID:         o.ID,
		AccountID:  o.AccountID,
		CustomerID: o.CustomerID,
		Amount:     o.Amount,
		Status:     string(o.Status),
		Contact:    o.Contact,
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
		Items:      items,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeFault maps the failure taxonomy onto HTTP status codes.
func writeFault(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)

	var status int
	switch kind {
	case fault.NotFound:
		status = http.StatusNotFound
	case fault.InvalidArgument, fault.EmptyCart:
		status = http.StatusBadRequest
	case fault.InsufficientStock, fault.InsufficientBalance, fault.InvalidState:
		status = http.StatusConflict
	case fault.Forbidden:
		status = http.StatusForbidden
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, kind.Code(), "internal error")
		return
	}

	var fe *fault.Error
	msg := err.Error()
	if errors.As(err, &fe) {
		msg = fe.Msg
	}
	writeError(w, status, kind.Code(), msg)
}
