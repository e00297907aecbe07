package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
)

const (
	cartPath      = "/cart/"
	clearCartPath = "/cart/clear_cart"
)

type CartService struct {
	api Requester
}

func NewCartService(api Requester) *CartService {
	return &CartService{api: api}
}

func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	return s.cartCall(ctx, &apiclient.Request{Method: http.MethodGet, Path: cartPath})
}

// Add puts quantity units of productID in the cart. A non-positive quantity
// adds one.
func (s *CartService) Add(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if err := requireID(productID, "product id"); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]any{"productId": productID, "quantity": quantity}
	return s.cartCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: cartPath, Body: body})
}

func (s *CartService) UpdateItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if err := requireID(productID, "product id"); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", errors.ErrInvalidInput)
	}
	body := map[string]any{"quantity": quantity}
	return s.cartCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(cartPath, productID), Body: body})
}

func (s *CartService) RemoveItem(ctx context.Context, productID string) (*Cart, error) {
	if err := requireID(productID, "product id"); err != nil {
		return nil, err
	}
	return s.cartCall(ctx, &apiclient.Request{Method: http.MethodDelete, Path: idPath(cartPath, productID)})
}

func (s *CartService) Clear(ctx context.Context) error {
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodDelete, Path: clearCartPath})
	return err
}

// cartCall decodes either {"cart": {...}} or a bare cart. An empty payload
// is an empty cart.
func (s *CartService) cartCall(ctx context.Context, req *apiclient.Request) (*Cart, error) {
	env, err := s.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Cart *Cart `json:"cart"`
	}
	if err := env.Decode(&wrapped); err != nil {
		return nil, err
	}
	if wrapped.Cart != nil {
		return normaliseCart(wrapped.Cart), nil
	}
	cart := &Cart{}
	if err := env.Decode(cart); err != nil {
		return nil, err
	}
	return normaliseCart(cart), nil
}

func normaliseCart(c *Cart) *Cart {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return c
}
