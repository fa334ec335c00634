package api

import (
	"net/http"

	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Items.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)

	routes.Register(mux, domain.Scorecards.Handler().Routes())
	routes.Register(mux, domain.Results.Handler().Routes())

	storage := newStorageHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.Storage.MaxListSize,
	)
	routes.Register(mux, storage.routes())
}
