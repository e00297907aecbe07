package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
)

const productsPath = "/product/"

// ProductQuery filters the catalog listing. Zero values are not sent.
type ProductQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image,omitempty" validate:"omitempty,url"`
}

// ProductUpdate carries the fields to change; nil fields are left alone.
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty" validate:"omitempty,url"`
}

type ProductService struct {
	api Requester
}

func NewProductService(api Requester) *ProductService {
	return &ProductService{api: api}
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) ([]Product, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: productsPath, Query: q.values()})
	if err != nil {
		return nil, err
	}
	products := []Product{}
	if err := env.Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*Product, error) {
	if err := requireID(id, "product id"); err != nil {
		return nil, err
	}
	return s.productCall(ctx, &apiclient.Request{Method: http.MethodGet, Path: idPath(productsPath, id)})
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.productCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: productsPath, Body: in})
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductUpdate) (*Product, error) {
	if err := requireID(id, "product id"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.productCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(productsPath, id), Body: in})
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "product id"); err != nil {
		return err
	}
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodDelete, Path: idPath(productsPath, id)})
	return err
}

func (s *ProductService) productCall(ctx context.Context, req *apiclient.Request) (*Product, error) {
	env, err := s.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, fmt.Errorf("%w: product", errors.ErrNotFound)
	}
	p := &Product{}
	if err := env.Decode(p); err != nil {
		return nil, err
	}
	return p, nil
}
