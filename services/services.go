// Package services wraps the storefront backend endpoints in typed calls.
//
// Each service takes a Requester, normally an *apiclient.Client, so session
// refresh and error normalisation apply to every call.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/sessions"
)

// Requester sends a backend call.
type Requester interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Envelope, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return nil
}

func requireID(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", errors.ErrInvalidInput, what)
	}
	return nil
}

func idPath(prefix, id string, suffix ...string) string {
	p := prefix + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// Services bundles every backend collaborator behind one client.
type Services struct {
	Users      *UserService
	Cart       *CartService
	Orders     *OrderService
	Products   *ProductService
	Categories *CategoryService
	Admin      *AdminService
}

// New wires all services to client and its session store.
func New(client *apiclient.Client) (*Services, error) {
	if client == nil {
		return nil, errors.New("[services.New] client is required")
	}
	userService, err := NewUserService(client, client.Session())
	if err != nil {
		return nil, err
	}
	return &Services{
		Users:      userService,
		Cart:       NewCartService(client),
		Orders:     NewOrderService(client),
		Products:   NewProductService(client),
		Categories: NewCategoryService(client),
		Admin:      NewAdminService(client),
	}, nil
}

// Session returns the store the user service keeps up to date.
func (s *Services) Session() *sessions.Store {
	return s.Users.session
}
