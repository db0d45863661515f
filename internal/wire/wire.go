package wire

import (
	"net/http"

	"artist-booking/internal/adaptor"
	"artist-booking/internal/data/repository"
	"artist-booking/internal/usecase"
	"artist-booking/pkg/lock"
	"artist-booking/pkg/middleware"
	"artist-booking/pkg/notification"
	"artist-booking/pkg/payment"
	"artist-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring assembles services and handlers over the shared dependencies.
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	gateway payment.Gateway,
	locker *lock.ArtistLocker,
	notifier notification.Notifier,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, gateway, locker, notifier, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireBooking(r, handler, repo, logger)
	wireWebhook(r, handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
