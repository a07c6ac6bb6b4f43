package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"shopkart/internal/domain"
	"shopkart/internal/repos"
)

var (
	ErrNoItems         = errors.New("order items are required")
	ErrAddressRequired = errors.New("shipping address is required")
	ErrPaymentRequired = errors.New("payment method is required")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// Pricing constants for the storefront policy, in the smallest currency unit.
const (
	freeShippingFloor = 1000
	flatShippingFee   = 50
	taxRate           = 0.18
)

type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price is only honored by the client-priced policy (v1 surface).
	Price int64 `json:"price"`
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

// OrderView is an order shaped for responses: the stored shipping address
// string is decoded back into an object, and line items carry their product
// snapshots.
type OrderView struct {
	domain.Order
	ShippingAddress json.RawMessage      `json:"shippingAddress"`
	Items           []repos.OrderItemRow `json:"items"`
}

type OrderService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
	Users  *repos.UserRepo
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo, users *repos.UserRepo) *OrderService {
	return &OrderService{Orders: orders, Prods: prods, Users: users}
}

// PlaceStorefront implements the storefront-priced policy: unit prices are
// re-read from the catalog (never trusted from the client), shipping is free
// above the floor, and tax is added on the subtotal. Stock is validated
// fail-fast up front, then re-checked atomically inside the insert
// transaction, so two racing orders for the last unit cannot both succeed.
func (s *OrderService) PlaceStorefront(userID string, items []ItemInput, address json.RawMessage, paymentMethod string, contact Contact, notes string) (OrderView, error) {
	if len(items) == 0 {
		return OrderView{}, ErrNoItems
	}
	if len(address) == 0 {
		return OrderView{}, ErrAddressRequired
	}
	if paymentMethod == "" {
		return OrderView{}, ErrPaymentRequired
	}

	var subtotal int64
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		p, err := s.Prods.Get(it.ProductID)
		if err == sql.ErrNoRows {
			return OrderView{}, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return OrderView{}, err
		}
		if !p.Active {
			return OrderView{}, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if p.Stock < it.Quantity {
			return OrderView{}, fmt.Errorf("%w for %s (available: %d)", repos.ErrInsufficientStock, p.Name, p.Stock)
		}
		subtotal += p.Price * int64(it.Quantity)
		lines = append(lines, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
	}

	shipping := int64(flatShippingFee)
	if subtotal >= freeShippingFloor {
		shipping = 0
	}
	tax := int64(math.Round(float64(subtotal) * taxRate))
	total := subtotal + shipping + tax

	if u, err := s.Users.ByID(userID); err == nil {
		if contact.Name == "" {
			contact.Name = u.Name
		}
		if contact.Email == "" {
			contact.Email = u.Email
		}
		if contact.Phone == "" {
			contact.Phone = u.Phone
		}
	}

	o := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(true),
		UserID:        userID,
		Subtotal:      subtotal,
		Shipping:      shipping,
		Tax:           tax,
		Total:         total,
		Status:        domain.StatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: paymentStatusFor(paymentMethod),
		AddressJSON:   string(address),
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		Notes:         notes,
	}

	if err := s.Orders.CreateWithItems(o, lines); err != nil {
		return OrderView{}, err
	}
	return s.viewOf(o.ID)
}

// PlaceClientPriced implements the v1 machine-client policy: per-item prices
// come from the caller and no shipping or tax is applied. The two policies
// produce different totals on purpose and must not be unified.
func (s *OrderService) PlaceClientPriced(userID string, items []ItemInput, address json.RawMessage, paymentMethod string, contact Contact) (OrderView, error) {
	if len(items) == 0 {
		return OrderView{}, ErrNoItems
	}
	if len(address) == 0 {
		return OrderView{}, ErrAddressRequired
	}
	if paymentMethod == "" {
		return OrderView{}, ErrPaymentRequired
	}

	// Resolve or create a guest user from the contact email.
	if userID == "" && contact.Email != "" {
		if u, err := s.Users.ByEmail(contact.Email); err == nil {
			userID = u.ID
		} else if err == sql.ErrNoRows {
			name := contact.Name
			if name == "" {
				name = "Guest"
			}
			guest := domain.User{ID: uuid.NewString(), Email: contact.Email, Name: name, Role: "USER"}
			if err := s.Users.Create(guest); err != nil {
				return OrderView{}, err
			}
			userID = guest.ID
		} else {
			return OrderView{}, err
		}
	}

	var total int64
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		p, err := s.Prods.Get(it.ProductID)
		if err == sql.ErrNoRows {
			return OrderView{}, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return OrderView{}, err
		}
		if p.Stock < it.Quantity {
			return OrderView{}, fmt.Errorf("%w for %s (available: %d)", repos.ErrInsufficientStock, p.Name, p.Stock)
		}
		total += it.Price * int64(it.Quantity)
		lines = append(lines, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	name := contact.Name
	if name == "" {
		name = "Guest"
	}

	o := domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(false),
		UserID:        userID,
		Subtotal:      total,
		Shipping:      0,
		Tax:           0,
		Total:         total,
		Status:        domain.StatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: paymentStatusFor(paymentMethod),
		AddressJSON:   string(address),
		CustomerName:  name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
	}

	if err := s.Orders.CreateWithItems(o, lines); err != nil {
		return OrderView{}, err
	}
	return s.viewOf(o.ID)
}

// Track looks an order up by its human-facing number first, then falls back
// to the raw identifier. Tracking is public: anyone holding the order number
// can view the order.
func (s *OrderService) Track(value string) (OrderView, error) {
	o, items, err := s.Orders.GetByNumber(value)
	if err == sql.ErrNoRows {
		o, items, err = s.Orders.GetByID(value)
	}
	if err == sql.ErrNoRows {
		return OrderView{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderView{}, err
	}
	return toView(o, items), nil
}

func (s *OrderService) MyOrders(userID string) ([]OrderView, error) {
	orders, err := s.Orders.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		items, err := s.Orders.Items(o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toView(o, items))
	}
	return out, nil
}

func (s *OrderService) viewOf(orderID string) (OrderView, error) {
	o, items, err := s.Orders.GetByID(orderID)
	if err != nil {
		return OrderView{}, err
	}
	return toView(o, items), nil
}

func toView(o domain.Order, items []repos.OrderItemRow) OrderView {
	addr := json.RawMessage(o.AddressJSON)
	if !json.Valid(addr) {
		addr = json.RawMessage("null")
	}
	return OrderView{Order: o, ShippingAddress: addr, Items: items}
}

func paymentStatusFor(method string) string {
	if method == "COD" {
		return "PENDING"
	}
	return "PAID"
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newOrderNumber builds a human-facing order number from the current
// timestamp, with a short random suffix on the storefront surface.
// Uniqueness is best-effort (probabilistic, not sequence-backed); the unique
// index on order_number turns a collision into an insert error rather than a
// silent duplicate.
func newOrderNumber(withSuffix bool) string {
	millis := time.Now().UnixMilli()
	if !withSuffix {
		return fmt.Sprintf("ORD-%d", millis)
	}
	b := make([]byte, 8)
	for i := range b {
		b[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%d-%s", millis, b)
}
