package httpx

type AddToCartRequest struct {
	RewardID int64 `json:"reward_id"`
	Quantity int64 `json:"quantity"`
}

type CartLineResponse struct {
	RewardID      int64  `json:"reward_id"`
	Title         string `json:"title"`
	Quantity      int64  `json:"quantity"`
	TokensPerItem int64  `json:"tokens_required_per_item"`
	TotalTokens   int64  `json:"total_tokens"`
	ImageURL      string `json:"image_url,omitempty"`
}

type CartResponse struct {
	AvailableTokens int64              `json:"available_tokens"`
	RequiredTokens  int64              `json:"required_tokens"`
	Purchasable     bool               `json:"purchasable"`
	Lines           []CartLineResponse `json:"lines"`
}

type PlaceOrderResponse struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type OrderItemResponse struct {
	RewardID  int64  `json:"reward_id"`
	Title     string `json:"title"`
	TokenCost int64  `json:"token_cost"`
	Quantity  int64  `json:"quantity"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	AccountID  int64               `json:"account_id"`
	CustomerID int64               `json:"customer_id"`
	Amount     int64               `json:"amount"`
	Status     string              `json:"status"`
	Contact    string              `json:"contact"`
	CreatedAt  string              `json:"created_at"`
	Items      []OrderItemResponse `json:"items"`
}

type RewardResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	TokensRequired int64  `json:"tokens_required"`
	Category       string `json:"category"`
	ImageURL       string `json:"image_url,omitempty"`
}

type FavoriteResponse struct {
	RewardID  int64 `json:"reward_id"`
	Favorited bool  `json:"favorited"`
}

type RestockRequest struct {
	RewardID          int64 `json:"reward_id"`
	QuantityAvailable int64 `json:"quantity_available"`
}

type StockResponse struct {
	ID                int64  `json:"id"`
	RewardID          int64  `json:"reward_id"`
	QuantityAvailable int64  `json:"quantity_available"`
	LastUpdated       string `json:"last_updated"`
}

type NotificationResponse struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
