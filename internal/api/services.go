package api

import (
	"github.com/fritterapp/fritter-server/internal/service"
)

// Services groups the engine services used by the API server.
type Services struct {
	User  *service.UserService
	Freet *service.FreetService
	Tag   *service.TagService
	Flag  *service.FlagService
	Feed  *service.FeedService
}
