package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/election"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host     string
	Port     int
	Election *election.Controller
}

// API type represents the API HTTP server exposing the voting core.
type API struct {
	router    *chi.Mux
	elections *election.Controller
}

// New creates a new API instance with the given configuration and starts
// the HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Election == nil {
		return nil, fmt.Errorf("missing election controller")
	}
	a := &API{
		elections: conf.Election,
	}

	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes.
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	a.router.Post(EventsEndpoint, a.createEvent)
	a.router.Get(EventEndpoint, a.event)
	a.router.Put(EventEndpoint, a.updateEvent)
	a.router.Delete(EventEndpoint, a.deleteEvent)
	a.router.Post(AdminAuthEndpoint, a.adminAuth)
	a.router.Post(InvitationsEndpoint, a.invite)
	a.router.Get(InvitationsEndpoint, a.invited)
	a.router.Get(TokenEndpoint, a.validateToken)
	a.router.Post(MembersEndpoint, a.registerMember)
	a.router.Get(MembersEndpoint, a.members)
	a.router.Delete(MemberEndpoint, a.removeMember)
	a.router.Post(VotesEndpoint, a.castVote)
	a.router.Get(ResultsEndpoint, a.results)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", AdminTokenHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.registerHandlers()
}
