package services

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-storefront-client/users"
)

// Image is a stored product image. The backend sends either an object with
// a URL or a bare URL string.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

func (i *Image) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &i.URL)
	}
	if isJSONNull(data) {
		return nil
	}
	type plain Image
	return json.Unmarshal(data, (*plain)(i))
}

// Ref is a reference that arrives either as a bare id or as a populated
// document.
type Ref struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.ID)
	}
	if isJSONNull(data) {
		return nil
	}
	type plain Ref
	return json.Unmarshal(data, (*plain)(r))
}

type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    Ref       `json:"category"`
	Image       Image     `json:"image"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Cart struct {
	Items         []CartItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    float64    `json:"totalPrice"`
}

// OrderItem is one line of an order view.
type OrderItem struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
	Image    string
}

// Order is the client-side view of a backend order.
type Order struct {
	ID              string
	User            Ref
	OrderNumber     string
	Items           []OrderItem
	Total           float64
	Status          string
	PaymentMethod   string
	ShippingAddress users.Address
	CreatedAt       time.Time
}

// UnknownStatus is reported for orders without payment information.
const UnknownStatus = "unknown"

type backendOrder struct {
	ID          string `json:"_id"`
	User        Ref    `json:"user"`
	OrderNumber string `json:"orderNumber"`
	Items       []struct {
		Product *struct {
			ID    string  `json:"_id"`
			Name  string  `json:"name"`
			Price float64 `json:"price"`
			Image Image   `json:"image"`
		} `json:"product"`
		Quantity int `json:"quantity"`
	} `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
	Payment     *struct {
		Status string `json:"status"`
		Method string `json:"method"`
	} `json:"payment"`
	ShippingAddress *users.Address `json:"shippingAddress"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (o backendOrder) view() Order {
	v := Order{
		ID:            o.ID,
		User:          o.User,
		OrderNumber:   o.OrderNumber,
		Items:         make([]OrderItem, 0, len(o.Items)),
		Total:         o.TotalAmount,
		Status:        UnknownStatus,
		PaymentMethod: UnknownStatus,
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		item := OrderItem{Quantity: it.Quantity}
		if it.Product != nil {
			item.ID = it.Product.ID
			item.Name = it.Product.Name
			item.Price = it.Product.Price
			item.Image = it.Product.Image.URL
		}
		v.Items = append(v.Items, item)
	}
	if o.Payment != nil {
		if o.Payment.Status != "" {
			v.Status = o.Payment.Status
		}
		if o.Payment.Method != "" {
			v.PaymentMethod = o.Payment.Method
		}
	}
	if o.ShippingAddress != nil {
		v.ShippingAddress = *o.ShippingAddress
	}
	return v
}

func viewOrders(in []backendOrder) []Order {
	out := make([]Order, 0, len(in))
	for _, o := range in {
		out = append(out, o.view())
	}
	return out
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
