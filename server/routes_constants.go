package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAdminLogin = "/admin/login"
	RouteAuthLogout = "/auth/logout"

	// Admin Routes
	RouteAdminDashboard = "/admin/dashboard"

	// Subscription API Routes
	RouteAPIPlans    = "/api/subscription/plans"
	RouteAPICheckout = "/api/subscription/checkout"

	// Checkout landing pages (redirect targets handed to the payment provider)
	RouteSubscriptionSuccess = "/subscription/success"
	RouteSubscriptionCancel  = "/subscription/cancel"

	// Dinner API Routes
	RouteAPIDinnerOptIn = "/api/dinner/opt-in"

	// User API Routes
	RouteAPIUsersMe = "/api/users/me"

	// Operational Routes
	RouteHealth = "/healthz"
)
