package providers

import (
	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

// ProvideUserService provides the user directory.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Component("user_service")), nil
}

// ProvideFreetService provides the content store.
func ProvideFreetService(i do.Injector) (*service.FreetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFreetService(storeHandle.Store, log.Component("freet_service")), nil
}

// ProvideTagService provides the tag index.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Component("tag_service")), nil
}

// ProvideFlagService provides the flag registry.
func ProvideFlagService(i do.Injector) (*service.FlagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFlagService(storeHandle.Store, log.Component("flag_service")), nil
}

// ProvideFeedService provides the feed filter.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, log.Component("feed_service")), nil
}
