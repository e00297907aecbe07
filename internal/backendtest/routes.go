package backendtest

const (
	RouteLogin          = "/user/login_user"
	RouteRegister       = "/user/register_user"
	RouteVerify         = "/user/verify_user"
	RouteLogout         = "/user/logout_user"
	RouteRefresh        = "/user/refresh_access_token"
	RouteProfile        = "/user/user"
	RouteUpdateProfile  = "/user/update_userProfile"
	RouteChangePassword = "/user/change_password"
	RouteForgotPassword = "/user/forgot_password"
	RouteResetPassword  = "/user/reset_password"
	RouteAddAddress     = "/user/add_address"
	RouteUpdateAddress  = "/user/update_address/{id}"
	RouteDeleteAddress  = "/user/delete_address/{id}"
	RouteCart           = "/cart/"
	RouteCartItem       = "/cart/{productId}"
	RouteClearCart      = "/cart/clear_cart"
	RouteOrders         = "/order"
	RouteProducts       = "/product/"
	RouteProduct        = "/product/{id}"
	RouteCategories     = "/category/"
	RouteDashboardStats = "/admin/dashboard/stats"
)

func (b *Backend) initRoutes() {
	api := b.APIMiddleware()
	auth := b.APIMiddleware(b.RequireAccessToken)
	admin := b.APIMiddleware(b.RequireAccessToken, b.RequireAdmin)

	// SESSION
	b.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(b.LoginHandler(), api...))
	b.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(b.RegisterHandler(), api...))
	b.RegisterRouteFunc("POST "+RouteVerify, ChainMiddleware(b.VerifyHandler(), api...))
	b.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(b.LogoutHandler(), api...))
	b.RegisterRouteFunc("POST "+RouteRefresh, ChainMiddleware(b.RefreshHandler(), api...))
	b.RegisterRouteFunc("POST "+RouteForgotPassword, ChainMiddleware(b.ForgotPasswordHandler(), api...))
	b.RegisterRouteFunc("POST "+RouteResetPassword, ChainMiddleware(b.ResetPasswordHandler(), api...))

	// PROFILE
	b.RegisterRouteFunc("GET "+RouteProfile, ChainMiddleware(b.ProfileHandler(), auth...))
	b.RegisterRouteFunc("POST "+RouteUpdateProfile, ChainMiddleware(b.UpdateProfileHandler(), auth...))
	b.RegisterRouteFunc("POST "+RouteChangePassword, ChainMiddleware(b.ChangePasswordHandler(), auth...))
	b.RegisterRouteFunc("POST "+RouteAddAddress, ChainMiddleware(b.AddAddressHandler(), auth...))
	b.RegisterRouteFunc("PATCH "+RouteUpdateAddress, ChainMiddleware(b.UpdateAddressHandler(), auth...))
	b.RegisterRouteFunc("DELETE "+RouteDeleteAddress, ChainMiddleware(b.DeleteAddressHandler(), auth...))

	// CART AND ORDERS
	b.RegisterRouteFunc("GET "+RouteCart, ChainMiddleware(b.CartHandler(), auth...))
	b.RegisterRouteFunc("POST "+RouteCart, ChainMiddleware(b.AddToCartHandler(), auth...))
	b.RegisterRouteFunc("PATCH "+RouteCartItem, ChainMiddleware(b.UpdateCartItemHandler(), auth...))
	b.RegisterRouteFunc("DELETE "+RouteCartItem, ChainMiddleware(b.RemoveCartItemHandler(), auth...))
	b.RegisterRouteFunc("DELETE "+RouteClearCart, ChainMiddleware(b.ClearCartHandler(), auth...))
	b.RegisterRouteFunc("GET "+RouteOrders, ChainMiddleware(b.ListOrdersHandler(), auth...))
	b.RegisterRouteFunc("POST "+RouteOrders, ChainMiddleware(b.CreateOrderHandler(), auth...))

	// CATALOG
	b.RegisterRouteFunc("GET "+RouteProducts, ChainMiddleware(b.ListProductsHandler(), api...))
	b.RegisterRouteFunc("GET "+RouteProduct, ChainMiddleware(b.GetProductHandler(), api...))
	b.RegisterRouteFunc("GET "+RouteCategories, ChainMiddleware(b.ListCategoriesHandler(), api...))

	// ADMIN
	b.RegisterRouteFunc("POST "+RouteProducts, ChainMiddleware(b.CreateProductHandler(), admin...))
	b.RegisterRouteFunc("GET "+RouteDashboardStats, ChainMiddleware(b.DashboardStatsHandler(), admin...))
}
