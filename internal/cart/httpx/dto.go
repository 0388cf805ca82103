package httpx

// DeltaRequest is the body of pending and quantity updates. Delta is a
// pointer so a missing field can be told apart from zero.
type DeltaRequest struct {
	Delta *int `json:"delta"`
}

type ProductResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type CatalogEntryResponse struct {
	ProductResponse
	Pending int `json:"pending"`
}

type LineItemResponse struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
	Label     string `json:"label"`
	Controls  bool   `json:"controls"`
}

type CartResponse struct {
	SessionID    string                 `json:"session_id"`
	Catalog      []CatalogEntryResponse `json:"catalog"`
	Items        []LineItemResponse     `json:"items"`
	Subtotal     int64                  `json:"subtotal"`
	Threshold    int64                  `json:"threshold"`
	ThresholdMet bool                   `json:"threshold_met"`
	GiftAdded    bool                   `json:"gift_added"`
	Progress     float64                `json:"progress"`
	Remaining    int64                  `json:"remaining"`
	Message      string                 `json:"message"`
	Banner       string                 `json:"banner,omitempty"`
	Total        string                 `json:"total"`
	Empty        bool                   `json:"empty"`
}

type JournalEntryResponse struct {
	Action      string `json:"action"`
	ProductID   int    `json:"product_id,omitempty"`
	Delta       int    `json:"delta,omitempty"`
	Subtotal    int64  `json:"subtotal"`
	GiftPresent bool   `json:"gift_present"`
	TraceID     string `json:"trace_id,omitempty"`
	SpanID      string `json:"span_id,omitempty"`
	RecordedAt  string `json:"recorded_at"`
}

type JournalResponse struct {
	SessionID string                 `json:"session_id"`
	Entries   []JournalEntryResponse `json:"entries"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
