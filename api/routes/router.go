package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adoptly/adoptly-backend/api/controllers"
	"github.com/adoptly/adoptly-backend/api/middleware"
	"github.com/adoptly/adoptly-backend/internal/adoptions"
	"github.com/adoptly/adoptly-backend/internal/auth"
	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/internal/wishlist"
	"github.com/adoptly/adoptly-backend/pkg/config"
	"github.com/adoptly/adoptly-backend/pkg/db"
	"github.com/adoptly/adoptly-backend/pkg/logger"
	pkgredis "github.com/adoptly/adoptly-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisClient *pkgredis.Client

	AuthService     auth.Service
	PetService      pets.Service
	WishlistService wishlist.Service
	AdoptionService adoptions.Service

	MetricsHandler http.Handler
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(p RouterParams) chi.Router {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(p.DBPinger, redisPinger(p.RedisClient), logg))

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			register := r.With()
			login := r.With()
			if p.RedisClient != nil {
				register = r.With(middleware.AuthRateLimit(p.RedisClient, middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), logg))
				login = r.With(middleware.AuthRateLimit(p.RedisClient, middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), logg))
			}
			register.Post("/register", controllers.Register(p.AuthService, logg))
			login.Post("/login", controllers.Login(p.AuthService, logg))
		})

		r.Route("/pets", func(r chi.Router) {
			r.Get("/", controllers.ListPets(p.PetService, logg))
			r.Get("/gallery", controllers.AdoptionGallery(p.PetService, logg))
			r.Get("/{petID}", controllers.GetPet(p.PetService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/profile", controllers.Profile(p.AuthService, logg))
			r.Put("/profile", controllers.UpdateProfile(p.AuthService, logg))

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.GetWishlist(p.WishlistService, logg))
				r.Get("/ids", controllers.GetWishlistIDs(p.WishlistService, logg))
				r.Post("/{petID}", controllers.AddWishlistItem(p.WishlistService, logg))
				r.Delete("/{petID}", controllers.RemoveWishlistItem(p.WishlistService, logg))
			})

			r.Route("/adoptions", func(r chi.Router) {
				r.Post("/", controllers.BeginAdoption(p.AdoptionService, logg))
				r.Post("/verify", controllers.CompleteAdoption(p.AdoptionService, logg))
			})

			r.Get("/orders", controllers.ListOrders(p.AdoptionService, logg))
		})
	})

	return r
}

// redisPinger avoids handing a typed nil pointer to the health check.
func redisPinger(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
