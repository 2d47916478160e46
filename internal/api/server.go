// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/call-screener/internal/contacts"
	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/screening"
	"github.com/call-screener/internal/service"
)

// Service interfaces for dependency injection and testing

// ScreeningServiceInterface defines the interface for the call screening decision path
type ScreeningServiceInterface interface {
	Screen(ctx context.Context, rawNumber string, privateHint bool) screening.Result
}

// ListServiceInterface defines the interface for whitelist/blacklist management
type ListServiceInterface interface {
	AddToWhitelist(ctx context.Context, input *service.AddWhitelistInput) (*models.WhitelistEntry, error)
	UpdateWhitelistEntry(ctx context.Context, id string, input *service.UpdateWhitelistInput) (*models.WhitelistEntry, error)
	RemoveFromWhitelist(ctx context.Context, id string) error
	RemoveWhitelistNumber(ctx context.Context, number string) error
	ListWhitelist(ctx context.Context) ([]*models.WhitelistEntry, error)
	AddToBlacklist(ctx context.Context, input *service.AddBlacklistInput) (*models.BlacklistEntry, error)
	RemoveFromBlacklist(ctx context.Context, id string) error
	RemoveBlacklistNumber(ctx context.Context, number string) error
	ListBlacklist(ctx context.Context) ([]*models.BlacklistEntry, error)
	AddEventToWhitelist(ctx context.Context, eventID string) (*models.WhitelistEntry, error)
	AddEventToBlacklist(ctx context.Context, eventID, reason string) (*models.BlacklistEntry, error)
	ImportContactsToWhitelist(ctx context.Context, starredOnly bool) (*service.ImportContactsResult, error)
	SyncCheckpoint(ctx context.Context) (*service.SyncCheckpointResult, error)
}

// ActivityReaderInterface defines the interface for the call activity log
type ActivityReaderInterface interface {
	ListRecent(ctx context.Context, limit int) ([]*models.CallEvent, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.CallEvent, error)
	CountForDay(ctx context.Context, action models.CallAction, dayStart, dayEnd time.Time) (int, error)
}

// SettingsStoreInterface defines the interface for reading and writing settings
type SettingsStoreInterface interface {
	Snapshot(ctx context.Context) (models.SettingsSnapshot, error)
	Save(ctx context.Context, s models.SettingsSnapshot) error
}

// ContactsServiceInterface defines the interface for the contacts directory
type ContactsServiceInterface interface {
	ListAll(ctx context.Context) ([]*models.Contact, error)
	ListStarred(ctx context.Context) ([]*models.Contact, error)
	Import(ctx context.Context, imports []contacts.ContactImport) (int, error)
	RecordOutgoingCall(ctx context.Context, raw string) (*models.OutgoingCall, error)
}

// SubscriptionServiceInterface defines the interface for subscription state
type SubscriptionServiceInterface interface {
	IsActive(ctx context.Context) (bool, error)
	IsTrialActive(ctx context.Context) (bool, error)
	TrialDaysRemaining(ctx context.Context) (int, error)
	StartTrial(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	router        *mux.Router
	httpServer    *http.Server
	screening     ScreeningServiceInterface
	lists         ListServiceInterface
	activity      ActivityReaderInterface
	settings      SettingsStoreInterface
	contacts      ContactsServiceInterface
	subscriptions SubscriptionServiceInterface
	config        *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	screeningService ScreeningServiceInterface,
	listService ListServiceInterface,
	activityReader ActivityReaderInterface,
	settingsStore SettingsStoreInterface,
	contactsService ContactsServiceInterface,
	subscriptionService SubscriptionServiceInterface,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		screening:     screeningService,
		lists:         listService,
		activity:      activityReader,
		settings:      settingsStore,
		contacts:      contactsService,
		subscriptions: subscriptionService,
		config:        config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Middleware order matters: recovery outermost, rate limiting last
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Screening endpoint
	api.HandleFunc("/screen", s.handleScreen).Methods("POST")

	// Whitelist endpoints
	api.HandleFunc("/whitelist", s.handleListWhitelist).Methods("GET")
	api.HandleFunc("/whitelist", s.handleAddWhitelist).Methods("POST")
	api.HandleFunc("/whitelist/import-contacts", s.handleImportContactsToWhitelist).Methods("POST")
	api.HandleFunc("/whitelist/sync", s.handleWhitelistSync).Methods("POST")
	api.HandleFunc("/whitelist/number/{number}", s.handleRemoveWhitelistNumber).Methods("DELETE")
	api.HandleFunc("/whitelist/{id}", s.handleUpdateWhitelist).Methods("PUT")
	api.HandleFunc("/whitelist/{id}", s.handleRemoveWhitelist).Methods("DELETE")

	// Blacklist endpoints
	api.HandleFunc("/blacklist", s.handleListBlacklist).Methods("GET")
	api.HandleFunc("/blacklist", s.handleAddBlacklist).Methods("POST")
	api.HandleFunc("/blacklist/number/{number}", s.handleRemoveBlacklistNumber).Methods("DELETE")
	api.HandleFunc("/blacklist/{id}", s.handleRemoveBlacklist).Methods("DELETE")

	// Activity endpoints
	api.HandleFunc("/activity", s.handleListActivity).Methods("GET")
	api.HandleFunc("/activity/stats", s.handleActivityStats).Methods("GET")
	api.HandleFunc("/activity/{id}/whitelist", s.handleActivityToWhitelist).Methods("POST")
	api.HandleFunc("/activity/{id}/blacklist", s.handleActivityToBlacklist).Methods("POST")

	// Settings endpoints
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods("PUT")

	// Contacts endpoints
	api.HandleFunc("/contacts", s.handleListContacts).Methods("GET")
	api.HandleFunc("/contacts/import", s.handleImportContacts).Methods("POST")
	api.HandleFunc("/contacts/outgoing-call", s.handleRecordOutgoingCall).Methods("POST")

	// Subscription endpoints
	api.HandleFunc("/subscription", s.handleGetSubscription).Methods("GET")
	api.HandleFunc("/subscription/trial", s.handleStartTrial).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "call-screener",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
