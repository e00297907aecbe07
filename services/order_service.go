package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
)

const ordersPath = "/order"

// PaymentCashOnDelivery is the only method the backend accepts at checkout.
const PaymentCashOnDelivery = "cod"

// CreateOrderInput places the current cart. Exactly one of AddressID and
// ShippingAddress is set.
type CreateOrderInput struct {
	PaymentMethod   string        `json:"paymentMethod" validate:"required,oneof=cod"`
	AddressID       string        `json:"addressId,omitempty"`
	ShippingAddress *AddressInput `json:"shippingAddress,omitempty"`
}

type OrderService struct {
	api Requester
}

func NewOrderService(api Requester) *OrderService {
	return &OrderService{api: api}
}

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCashOnDelivery
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if (in.AddressID == "") == (in.ShippingAddress == nil) {
		return nil, fmt.Errorf("%w: give either an address id or a shipping address", errors.ErrInvalidInput)
	}
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: ordersPath, Body: in})
	if err != nil {
		return nil, err
	}
	var o backendOrder
	if err := env.Decode(&o); err != nil {
		return nil, err
	}
	v := o.view()
	return &v, nil
}

// ListMine returns the signed-in user's orders.
func (s *OrderService) ListMine(ctx context.Context) ([]Order, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: ordersPath})
	if err != nil {
		return nil, err
	}
	var orders []backendOrder
	if err := env.Decode(&orders); err != nil {
		return nil, err
	}
	return viewOrders(orders), nil
}
