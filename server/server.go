package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tablemate/tablemate-web/backend"
	"github.com/tablemate/tablemate-web/internal/config"
	"github.com/tablemate/tablemate-web/notify"
	"github.com/tablemate/tablemate-web/session"
	"github.com/tablemate/tablemate-web/subscription"
)

// BackendClient is everything the HTTP surface needs from the remote backend:
// the reconciler's slice plus the login/logout proxy calls.
type BackendClient interface {
	subscription.BackendAPI
	AdminLogin(ctx context.Context, email, password string) (backend.TokenPair, error)
	Logout(ctx context.Context, token string) error
}

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	store      session.Store
	client     BackendClient
	reconciler *subscription.Reconciler
	validate   *validator.Validate
}

func New(cfg config.Config, store session.Store, client BackendClient, notifier notify.Sender) (*Server, error) {
	reconciler, err := subscription.NewReconciler(store, client,
		subscription.WithNotifier(notifier),
		subscription.WithDevelopmentMode(cfg.GetCheckoutDevelopmentMode()),
		subscription.WithSessionTTL(cfg.GetSessionTTL()),
		subscription.WithRedirectBaseURL(cfg.GetBaseURL()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create reconciler: %w", err)
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		store:      store,
		client:     client,
		reconciler: reconciler,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
