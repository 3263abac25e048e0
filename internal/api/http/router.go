package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/springmeet/springmeet/internal/api/realtime"
	"github.com/springmeet/springmeet/internal/api/service"
	"github.com/springmeet/springmeet/internal/api/store"
	"github.com/springmeet/springmeet/pkg/httpx"
	"github.com/springmeet/springmeet/pkg/slogx"

	_ "github.com/springmeet/springmeet/api/docs" // Swagger docs
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	SessionService   *service.SessionService
	BootstrapService *service.BootstrapService
	Registry         *realtime.Registry
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerRealtime()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SpringMeet API
//	@version		0.1.0
//	@description	Authentication and realtime meetup chat for the SpringMeet hot-springs app.
//	@description
//	@description				Sessions use a signed access/refresh token pair; refresh tokens are single-use and rotated on every exchange.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential endpoints get strict per-IP limits; signup and login are
	// additionally keyed by email to slow single-account brute force.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(&SignupHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{SessionService: r.SessionService},
			httpx.RateLimitByIPAndBodyField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(&UserInfoHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/bootstrap-admin",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerRealtime() {
	gateway := &realtime.Gateway{Log: r.logger, Registry: r.Registry}
	r.Mux.Handle("GET /v1/meetups/{id}/ws", gateway)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
