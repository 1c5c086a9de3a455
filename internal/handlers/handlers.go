package handlers

import (
	"DonationHub/internal/config"
	"DonationHub/internal/middleware"
	"DonationHub/internal/service"
	"DonationHub/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	donationService *service.DonationService,
	images storage.ObjectStore,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	donationHandler := NewDonationHandler(donationService, images, logger, config)

	r.Route("/api", func(r chi.Router) {
		r.Post("/donations", donationHandler.Create)
		r.Get("/donations", donationHandler.ListAvailable)
		r.Delete("/donations", donationHandler.DeleteAll)
		r.Get("/donations/all", donationHandler.ListAll)
		r.Get("/donations/user", donationHandler.ListMine)
		r.Put("/donations/user/{id}", donationHandler.Modify)
		r.Get("/donations/{id}", donationHandler.Get)
		r.Put("/donations/{id}", donationHandler.Toggle)
		r.Patch("/donations/{id}/availability", donationHandler.SetAvailability)
		r.Delete("/donations/{id}", donationHandler.Delete)

		// локальные файлы раздаются только при FileStore; S3 отдаёт URL сам
		if fs, ok := images.(*storage.FileStore); ok {
			r.Get("/uploads/{filename}", NewUploadHandler(fs, logger).Serve)
		}

		// сжатие делает WithGzip, иначе ответ сожмётся дважды
		r.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}))
	})

	return &Handler{Router: r}
}
