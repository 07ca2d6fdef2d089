package gateway

import "time"

// Timestamp matches the seconds/nanos shape the gateway renders for
// timestamps.
type Timestamp struct {
	Seconds int64 `json:"seconds,omitempty"`
	Nanos   int32 `json:"nanos,omitempty"`
}

func (t *Timestamp) Time() time.Time {
	if t == nil {
		return time.Time{}
	}
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

type ProductPage struct {
	Data     []Product `json:"data"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ProductQuery holds the catalog filters understood by GET /products.
// Zero values are omitted from the request.
type ProductQuery struct {
	Categories  []string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	Search      string
	Sort        string
	Page        int
	PageSize    int
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Tax       float64     `json:"tax"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt *Timestamp  `json:"created_at,omitempty"`
	UpdatedAt *Timestamp  `json:"updated_at,omitempty"`
}

type OrderPage struct {
	Data     []Order `json:"data"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items []OrderItemInput `json:"items"`
	Total *float64         `json:"total,omitempty"`
}

// AdminOrderQuery drives the admin order dashboard listing.
type AdminOrderQuery struct {
	Search   string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

type Profile struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

type User struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile,omitempty"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
