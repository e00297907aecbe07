package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/internal/errors"
)

const (
	dashboardStatsPath = "/admin/dashboard/stats"
	recentOrdersPath   = "/admin/dashboard/recent_orders"
	topProductsPath    = "/admin/dashboard/top_products"
	allOrdersPath      = "/admin/order/all_orders"
	adminOrderPath     = "/admin/order/"
)

type DashboardStats struct {
	TotalOrders    int            `json:"totalOrders"`
	TotalCustomers int            `json:"totalCustomers"`
	TotalProducts  int            `json:"totalProducts"`
	TotalRevenue   float64        `json:"totalRevenue"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`
	OrdersByMethod map[string]int `json:"ordersByMethod"`
}

type TopProduct struct {
	Name          string  `json:"name"`
	Image         Image   `json:"image"`
	Category      Ref     `json:"category"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalQuantity int     `json:"totalQuantity"`
}

// OrderFilter narrows admin order listings. Empty fields are not sent.
type OrderFilter struct {
	Status string
	Method string
}

func (f OrderFilter) values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Method != "" {
		v.Set("method", f.Method)
	}
	return v
}

// AdminService reads the dashboard and manages orders. The backend rejects
// these calls for non-admin sessions.
type AdminService struct {
	api Requester
}

func NewAdminService(api Requester) *AdminService {
	return &AdminService{api: api}
}

func (s *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: dashboardStatsPath})
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{}
	if err := env.Decode(stats); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus == nil {
		stats.OrdersByStatus = map[string]int{}
	}
	if stats.OrdersByMethod == nil {
		stats.OrdersByMethod = map[string]int{}
	}
	return stats, nil
}

func (s *AdminService) RecentOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	return s.ordersCall(ctx, recentOrdersPath, f)
}

func (s *AdminService) AllOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	return s.ordersCall(ctx, allOrdersPath, f)
}

func (s *AdminService) TopProducts(ctx context.Context) ([]TopProduct, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: topProductsPath})
	if err != nil {
		return nil, err
	}
	products := []TopProduct{}
	if err := env.Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *AdminService) OrderByID(ctx context.Context, id string) (*Order, error) {
	if err := requireID(id, "order id"); err != nil {
		return nil, err
	}
	return s.orderCall(ctx, &apiclient.Request{Method: http.MethodGet, Path: idPath(adminOrderPath, id, "user")})
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	if err := requireID(id, "order id"); err != nil {
		return nil, err
	}
	if err := requireID(status, "status"); err != nil {
		return nil, err
	}
	body := map[string]string{"status": status}
	return s.orderCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(adminOrderPath, id, "status"), Body: body})
}

func (s *AdminService) CancelOrder(ctx context.Context, id string) (*Order, error) {
	if err := requireID(id, "order id"); err != nil {
		return nil, err
	}
	return s.orderCall(ctx, &apiclient.Request{Method: http.MethodPatch, Path: idPath(adminOrderPath, id, "cancel")})
}

func (s *AdminService) ordersCall(ctx context.Context, path string, f OrderFilter) ([]Order, error) {
	env, err := s.api.Do(ctx, &apiclient.Request{Method: http.MethodGet, Path: path, Query: f.values()})
	if err != nil {
		return nil, err
	}
	var orders []backendOrder
	if err := env.Decode(&orders); err != nil {
		return nil, err
	}
	return viewOrders(orders), nil
}

func (s *AdminService) orderCall(ctx context.Context, req *apiclient.Request) (*Order, error) {
	env, err := s.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, fmt.Errorf("%w: order", errors.ErrNotFound)
	}
	var o backendOrder
	if err := env.Decode(&o); err != nil {
		return nil, err
	}
	v := o.view()
	return &v, nil
}
