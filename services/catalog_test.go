package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/internal/utils"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/stretchr/testify/require"
)

func TestProductService_ListSendsQueryAndDecodes(t *testing.T) {
	svc, rec, _ := newServices(t, map[string]reply{
		"GET /product/": {data: []map[string]any{
			{"_id": "p1", "name": "Laptop", "price": 999.5, "stock": 3, "category": "c1", "image": map[string]any{"url": "https://img/p1.png"}},
			{"_id": "p2", "name": "Mouse", "price": 20, "category": map[string]any{"_id": "c2", "name": "Accessories"}, "image": "https://img/p2.png"},
		}},
	})

	products, err := svc.Products.List(context.Background(), services.ProductQuery{Page: 2, Limit: 10, Search: "lap"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "c1", products[0].Category.ID)
	require.Equal(t, "https://img/p1.png", products[0].Image.URL)
	require.Equal(t, "Accessories", products[1].Category.Name)
	require.Equal(t, "https://img/p2.png", products[1].Image.URL)
	require.Equal(t, "limit=10&page=2&search=lap", rec.last(t).Query)
}

func TestProductService_EmptyListIsNotNil(t *testing.T) {
	svc, _, _ := newServices(t, map[string]reply{"GET /product/": {data: nil}})

	products, err := svc.Products.List(context.Background(), services.ProductQuery{})
	require.NoError(t, err)
	require.NotNil(t, products)
	require.Empty(t, products)
}

func TestProductService_CRUD(t *testing.T) {
	p1 := map[string]any{"_id": "p1", "name": "Laptop", "price": 999.5}
	svc, rec, _ := newServices(t, map[string]reply{
		"GET /product/p1":    {data: p1},
		"POST /product/":     {status: http.StatusCreated, data: p1},
		"PATCH /product/p1":  {data: p1},
		"DELETE /product/p1": {message: "Deleted"},
		"GET /product/p9":    {message: "Product fetched"},
	})
	ctx := context.Background()

	p, err := svc.Products.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Laptop", p.Name)

	_, err = svc.Products.Get(ctx, "p9")
	require.ErrorIs(t, err, errors.ErrNotFound)

	_, err = svc.Products.Create(ctx, services.ProductInput{Name: "Laptop", Price: 0, Category: "c1"})
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = svc.Products.Create(ctx, services.ProductInput{Name: "Laptop", Price: 999.5, Stock: 3, Category: "c1"})
	require.NoError(t, err)

	_, err = svc.Products.Update(ctx, "p1", services.ProductUpdate{Price: utils.Ptr(899.0)})
	require.NoError(t, err)
	require.JSONEq(t, `{"price":899}`, rec.last(t).Body)

	require.NoError(t, svc.Products.Delete(ctx, "p1"))
	require.ErrorIs(t, svc.Products.Delete(ctx, " "), errors.ErrInvalidInput)
}

func TestCategoryService(t *testing.T) {
	svc, rec, _ := newServices(t, map[string]reply{
		"GET /category/":      {data: []map[string]any{{"_id": "c1", "name": "Laptops"}}},
		"POST /category/":     {status: http.StatusCreated, data: map[string]any{"_id": "c2", "name": "Phones"}},
		"PATCH /category/c2":  {data: map[string]any{"_id": "c2", "name": "Mobiles"}},
		"DELETE /category/c2": {status: http.StatusConflict, message: "Category has products"},
	})
	ctx := context.Background()

	cats, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Laptops", cats[0].Name)

	_, err = svc.Categories.Create(ctx, services.CategoryInput{})
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	c, err := svc.Categories.Create(ctx, services.CategoryInput{Name: "Phones"})
	require.NoError(t, err)
	require.Equal(t, "c2", c.ID)

	c, err = svc.Categories.Update(ctx, "c2", services.CategoryInput{Name: "Mobiles"})
	require.NoError(t, err)
	require.Equal(t, "Mobiles", c.Name)
	require.Equal(t, http.MethodPatch, rec.last(t).Method)

	err = svc.Categories.Delete(ctx, "c2")
	require.Equal(t, http.StatusConflict, apiclient.StatusCode(err))
	require.Equal(t, "Category has products", apiclient.Message(err))
}

func TestCartService(t *testing.T) {
	cart := map[string]any{
		"items":         []map[string]any{{"id": "p1", "name": "Laptop", "price": 10.5, "quantity": 2}},
		"totalQuantity": 2,
		"totalPrice":    21.0,
	}
	svc, rec, _ := newServices(t, map[string]reply{
		"GET /cart/":              {data: cart},
		"POST /cart/":             {data: map[string]any{"cart": cart}},
		"PATCH /cart/p1":          {data: map[string]any{"cart": cart}},
		"DELETE /cart/p1":         {data: nil},
		"DELETE /cart/clear_cart": {message: "Cart cleared"},
	})
	ctx := context.Background()

	c, err := svc.Cart.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, c.TotalQuantity)
	require.Equal(t, 21.0, c.Items[0].Subtotal())

	_, err = svc.Cart.Add(ctx, "p1", 0)
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":"p1","quantity":1}`, rec.last(t).Body)

	_, err = svc.Cart.UpdateItem(ctx, "p1", 0)
	require.ErrorIs(t, err, errors.ErrInvalidInput)

	c, err = svc.Cart.UpdateItem(ctx, "p1", 3)
	require.NoError(t, err)
	require.JSONEq(t, `{"quantity":3}`, rec.last(t).Body)
	require.Len(t, c.Items, 1)

	c, err = svc.Cart.RemoveItem(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, c.Items)
	require.Empty(t, c.Items)

	require.NoError(t, svc.Cart.Clear(ctx))
	require.Equal(t, "/cart/clear_cart", rec.last(t).Path)
}
