package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/api"
	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

// drainTimeout bounds how long in-flight requests get to finish on shutdown.
const drainTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
// The caller runs ListenAndServe; the container only builds and stops it.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		User:  do.MustInvoke[*service.UserService](i),
		Freet: do.MustInvoke[*service.FreetService](i),
		Tag:   do.MustInvoke[*service.TagService](i),
		Flag:  do.MustInvoke[*service.FlagService](i),
		Feed:  do.MustInvoke[*service.FeedService](i),
	}

	handler := api.NewServer(cfg.Server, storeHandle.Store, services, log.Component("http"))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &HTTPServerHandle{Server: srv}, nil
}
