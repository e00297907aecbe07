package backendtest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront-client/users"
)

type image struct {
	URL string `json:"url"`
}

type product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
	Image    image   `json:"image"`
}

type orderItem struct {
	Product  product `json:"product"`
	Quantity int     `json:"quantity"`
}

type payment struct {
	Status string `json:"status"`
	Method string `json:"method"`
}

type order struct {
	ID              string         `json:"_id"`
	User            string         `json:"user"`
	OrderNumber     string         `json:"orderNumber"`
	Items           []orderItem    `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	Payment         payment        `json:"payment"`
	ShippingAddress *users.Address `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type cartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type cartView struct {
	Items         []cartItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    float64    `json:"totalPrice"`
}

func seedCatalog() []product {
	return []product{
		{ID: "p1", Name: "Laptop", Price: 999.5, Stock: 10, Category: "c1", Image: image{URL: "https://img.example/p1.png"}},
		{ID: "p2", Name: "Mouse", Price: 20, Stock: 100, Category: "c2", Image: image{URL: "https://img.example/p2.png"}},
		{ID: "p3", Name: "Monitor", Price: 180.25, Stock: 5, Category: "c1", Image: image{URL: "https://img.example/p3.png"}},
	}
}

// findProduct must be called with b.mu held.
func (b *Backend) findProduct(id string) (product, bool) {
	for _, p := range b.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return product{}, false
}

// cartOf must be called with b.mu held.
func (b *Backend) cartOf(userID string) cartView {
	view := cartView{Items: []cartItem{}}
	for _, p := range b.catalog {
		qty := b.carts[userID][p.ID]
		if qty == 0 {
			continue
		}
		view.Items = append(view.Items, cartItem{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty, Image: p.Image.URL})
		view.TotalQuantity += qty
		view.TotalPrice += p.Price * float64(qty)
	}
	return view
}

func (b *Backend) CartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := claimsFrom(r).UserID
		b.mu.Lock()
		view := b.cartOf(userID)
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "Cart fetched", view)
	}
}

func (b *Backend) AddToCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		if err := decodeBody(r, &in); err != nil || in.Quantity < 1 {
			writeEnvelope(w, http.StatusBadRequest, "Product and a positive quantity are required", nil)
			return
		}
		b.setCartQuantity(w, claimsFrom(r).UserID, in.ProductID, in.Quantity, true, "Added to cart")
	}
}

func (b *Backend) UpdateCartItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Quantity int `json:"quantity"`
		}
		if err := decodeBody(r, &in); err != nil || in.Quantity < 1 {
			writeEnvelope(w, http.StatusBadRequest, "Quantity must be at least 1", nil)
			return
		}
		b.setCartQuantity(w, claimsFrom(r).UserID, r.PathValue("productId"), in.Quantity, false, "Cart updated")
	}
}

func (b *Backend) RemoveCartItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.setCartQuantity(w, claimsFrom(r).UserID, r.PathValue("productId"), 0, false, "Item removed")
	}
}

func (b *Backend) ClearCartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delete(b.carts, claimsFrom(r).UserID)
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "Cart cleared", nil)
	}
}

func (b *Backend) setCartQuantity(w http.ResponseWriter, userID, productID string, qty int, add bool, message string) {
	b.mu.Lock()
	p, ok := b.findProduct(productID)
	if !ok {
		b.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	cart := b.carts[userID]
	if cart == nil {
		cart = make(map[string]int)
		b.carts[userID] = cart
	}
	if add {
		qty += cart[productID]
	}
	if qty > p.Stock {
		b.mu.Unlock()
		writeEnvelope(w, http.StatusConflict, "Not enough stock", nil)
		return
	}
	if qty == 0 {
		delete(cart, productID)
	} else {
		cart[productID] = qty
	}
	view := b.cartOf(userID)
	b.mu.Unlock()
	writeEnvelope(w, http.StatusOK, message, map[string]any{"cart": view})
}

func (b *Backend) ListOrdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		orders := append([]order{}, b.orders[claimsFrom(r).UserID]...)
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "Orders fetched", orders)
	}
}

func (b *Backend) CreateOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.currentUser(w, r)
		if !ok {
			return
		}
		var in struct {
			PaymentMethod   string         `json:"paymentMethod"`
			AddressID       string         `json:"addressId"`
			ShippingAddress *users.Address `json:"shippingAddress"`
		}
		if err := decodeBody(r, &in); err != nil || in.PaymentMethod != "cod" {
			writeEnvelope(w, http.StatusBadRequest, "Only cash on delivery is supported", nil)
			return
		}
		addr := in.ShippingAddress
		for i := range u.Addresses {
			if u.Addresses[i].ID == in.AddressID {
				addr = &u.Addresses[i]
			}
		}
		if addr == nil {
			writeEnvelope(w, http.StatusBadRequest, "Shipping address is required", nil)
			return
		}

		b.mu.Lock()
		view := b.cartOf(u.ID)
		if len(view.Items) == 0 {
			b.mu.Unlock()
			writeEnvelope(w, http.StatusBadRequest, "Cart is empty", nil)
			return
		}
		o := order{
			ID:              uuid.New().String(),
			User:            u.ID,
			OrderNumber:     fmt.Sprintf("ORD-%d", len(b.orders[u.ID])+1),
			TotalAmount:     view.TotalPrice,
			Payment:         payment{Status: "pending", Method: in.PaymentMethod},
			ShippingAddress: addr,
			CreatedAt:       NowTimeFunc().UTC(),
		}
		for _, it := range view.Items {
			p, _ := b.findProduct(it.ID)
			o.Items = append(o.Items, orderItem{Product: p, Quantity: it.Quantity})
		}
		b.orders[u.ID] = append(b.orders[u.ID], o)
		delete(b.carts, u.ID)
		b.mu.Unlock()

		writeEnvelope(w, http.StatusCreated, "Order placed", o)
	}
}

func (b *Backend) ListProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		search := strings.ToLower(r.URL.Query().Get("search"))
		category := r.URL.Query().Get("category")
		b.mu.Lock()
		out := make([]product, 0, len(b.catalog))
		for _, p := range b.catalog {
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			if category != "" && p.Category != category {
				continue
			}
			out = append(out, p)
		}
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "Products fetched", out)
	}
}

func (b *Backend) GetProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		p, ok := b.findProduct(r.PathValue("id"))
		b.mu.Unlock()
		if !ok {
			writeEnvelope(w, http.StatusNotFound, "Product not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Product fetched", p)
	}
}

func (b *Backend) CreateProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name     string  `json:"name"`
			Price    float64 `json:"price"`
			Stock    int     `json:"stock"`
			Category string  `json:"category"`
			Image    string  `json:"image"`
		}
		if err := decodeBody(r, &in); err != nil || in.Name == "" {
			writeEnvelope(w, http.StatusBadRequest, "Name is required", nil)
			return
		}
		p := product{ID: uuid.New().String(), Name: in.Name, Price: in.Price, Stock: in.Stock, Category: in.Category, Image: image{URL: in.Image}}
		b.mu.Lock()
		b.catalog = append(b.catalog, p)
		b.mu.Unlock()
		writeEnvelope(w, http.StatusCreated, "Product created", p)
	}
}

func (b *Backend) ListCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "Categories fetched", []map[string]string{
			{"_id": "c1", "name": "Computers"},
			{"_id": "c2", "name": "Accessories"},
		})
	}
}

func (b *Backend) DashboardStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		var orders int
		var revenue float64
		byStatus := map[string]int{}
		byMethod := map[string]int{}
		for _, list := range b.orders {
			for _, o := range list {
				orders++
				revenue += o.TotalAmount
				byStatus[o.Payment.Status]++
				byMethod[o.Payment.Method]++
			}
		}
		products := len(b.catalog)
		customers := len(b.orders)
		b.mu.Unlock()

		writeEnvelope(w, http.StatusOK, "Dashboard stats fetched", map[string]any{
			"totalOrders":    orders,
			"totalCustomers": customers,
			"totalProducts":  products,
			"totalRevenue":   revenue,
			"ordersByStatus": byStatus,
			"ordersByMethod": byMethod,
		})
	}
}
