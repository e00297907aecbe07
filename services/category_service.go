package services

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-storefront-client/apiclient"
)

const categoriesPath = "/category/"

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type CategoryService struct {
	api Requester
}

func NewCategoryService(api Requester) *CategoryService {
	return &CategoryService{api: api}
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: categoriesPath})
	if err != nil {
		return nil, err
	}
	categories := []Category{}
	if err := env.Decode(&categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.categoryCall(ctx, &apiclient.Request{Method: http.MethodPost, Path: categoriesPath, Body: in})
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	if err := requireID(id, "category id"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.categoryCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(categoriesPath, id), Body: in})
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := requireID(id, "category id"); err != nil {
		return err
	}
	_, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodDelete, Path: idPath(categoriesPath, id)})
	return err
}

func (s *CategoryService) categoryCall(ctx context.Context, req *apiclient.Request) (*Category, error) {
	env, err := s.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	c := &Category{}
	if err := env.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}
