package domain

// Money values are integers in the smallest currency unit.

type Product struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Category    string `db:"category" json:"category"`
	Price       int64  `db:"price" json:"price"`
	BasePrice   int64  `db:"base_price" json:"basePrice"`
	Image       string `db:"image" json:"image"`
	ImagesJSON  string `db:"images_json" json:"-"`
	SizesJSON   string `db:"sizes_json" json:"-"`
	ColorsJSON  string `db:"colors_json" json:"-"`
	Stock       int    `db:"stock" json:"stock"`
	Active      bool   `db:"is_active" json:"isActive"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt,omitempty"`
}

// ProductView is a Product with the serialized array fields decoded and the
// review aggregate attached. Every read path that returns a product to a
// client returns this shape, never the raw JSON strings.
type ProductView struct {
	Product
	Images        []string `json:"images"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
}

type Order struct {
	ID            string `db:"id" json:"id"`
	OrderNumber   string `db:"order_number" json:"orderNumber"`
	UserID        string `db:"user_id" json:"userId"`
	Subtotal      int64  `db:"subtotal" json:"subtotal"`
	Shipping      int64  `db:"shipping" json:"shipping"`
	Tax           int64  `db:"tax" json:"tax"`
	Total         int64  `db:"total" json:"total"`
	Status        string `db:"status" json:"status"`
	PaymentMethod string `db:"payment_method" json:"paymentMethod"`
	PaymentStatus string `db:"payment_status" json:"paymentStatus"`
	AddressJSON   string `db:"shipping_address_json" json:"-"`
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerEmail string `db:"customer_email" json:"customerEmail"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`
	Notes         string `db:"notes" json:"notes,omitempty"`
	CreatedAt     string `db:"created_at" json:"createdAt"`
}

// Order statuses. No transition graph is enforced; admins set these directly.
const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

type OrderItem struct {
	ID        string `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"orderId"`
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
	// Price is captured at order time. Historical orders must not reprice
	// when the catalog changes.
	Price int64 `db:"price" json:"price"`
}

// OrderTracking mirrors Order.status for the customer tracking page. It is a
// denormalized copy maintained on admin status writes; Order.status stays the
// source of truth.
type OrderTracking struct {
	OrderID   string `db:"order_id" json:"orderId"`
	Status    string `db:"status" json:"status"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	ProductID string `db:"product_id" json:"productId"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type ApiKey struct {
	ID          string `db:"id" json:"id"`
	Key         string `db:"key" json:"key"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"is_active" json:"isActive"`
	LastUsed    string `db:"last_used" json:"lastUsed,omitempty"`
}
