package server

func (s *Server) initRoutes() {
	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAdminLogin, ChainMiddleware(s.AdminLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Admin console (requires a gateway session created by the real login
	// call; there is no bypass path)
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.APIMiddleware(s.RequireSessionAuth())...))

	// Subscription API
	s.RegisterRouteHandler("GET "+RouteAPIPlans, ChainMiddleware(s.PlansHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPICheckout, ChainMiddleware(s.CheckoutHandler(), s.APIMiddleware(s.RequireSessionAuth())...))

	// Checkout landing pages are reached by full-page redirects from the
	// payment provider, so they manage their own session cookie
	s.RegisterRouteHandler("GET "+RouteSubscriptionSuccess, ChainMiddleware(s.SubscriptionSuccessHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSubscriptionCancel, ChainMiddleware(s.SubscriptionCancelHandler(), s.HTMLMiddleWare()...))

	// Dinner API
	s.RegisterRouteHandler("POST "+RouteAPIDinnerOptIn, ChainMiddleware(s.DinnerOptInHandler(), s.APIMiddleware(s.RequireSessionAuth())...))

	// User API
	s.RegisterRouteHandler("GET "+RouteAPIUsersMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireSessionAuth())...))
}
