// Package di provides dependency injection configuration for the Fritter server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/di/providers"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments, without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Engine services
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideFreetService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideFlagService)
	do.Provide(injector, providers.ProvideFeedService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services so configuration and storage errors
// surface before the server starts listening.
func Bootstrap(injector *do.RootScope) error {
	steps := []struct {
		name   string
		invoke func() error
	}{
		{"config", invoke[*config.Config](injector)},
		{"logger", invoke[*logger.Logger](injector)},
		{"store", invoke[*providers.StoreHandle](injector)},
		{"user service", invoke[*service.UserService](injector)},
		{"freet service", invoke[*service.FreetService](injector)},
		{"tag service", invoke[*service.TagService](injector)},
		{"flag service", invoke[*service.FlagService](injector)},
		{"feed service", invoke[*service.FeedService](injector)},
		{"http server", invoke[*providers.HTTPServerHandle](injector)},
	}

	for _, step := range steps {
		if err := step.invoke(); err != nil {
			return fmt.Errorf("init %s: %w", step.name, err)
		}
	}
	return nil
}

func invoke[T any](injector do.Injector) func() error {
	return func() error {
		_, err := do.Invoke[T](injector)
		return err
	}
}
