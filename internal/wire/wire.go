package wire

import (
	"net/http"

	"bus-booking/internal/adaptor"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/feed"
	"bus-booking/pkg/middleware"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router    *chi.Mux
	Reconcile usecase.ReconcileService
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, source feed.Source, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, source, config, logger)
	handler := adaptor.NewHandler(service, source, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router:    router,
		Reconcile: service.Reconcile,
	}
}

func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireBooking(r, handler.Booking)
	wireInventory(r, handler.Inventory)
	wireReward(r, handler.Reward)
	wireFeed(r, handler.Feed)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
