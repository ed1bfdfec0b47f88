package layers

import (
	"log/slog"

	"mapview/internal/layers/catalog"
	"mapview/internal/layers/handler"
	"mapview/internal/layers/service"
)

// Service exposes viewer sessions and catalog browsing.
type Service = service.Service

// Handler wires HTTP endpoints to the layers service.
type Handler = handler.Handler

// LoadCatalog reads the layer catalog at path, or the embedded catalog when
// path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.FromFile(path)
}

// NewService constructs the layers service with required dependencies.
func NewService(c *catalog.Catalog, sessions service.SessionStore, opts ...service.Option) (*Service, error) {
	return service.New(c, sessions, opts...)
}

// NewHandler constructs an HTTP handler for the viewer routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
