package auth

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/auth/repository"
	"github.com/sahayog-foundation/sahayog/internal/auth/service"
	"github.com/sahayog-foundation/sahayog/internal/auth/session"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
