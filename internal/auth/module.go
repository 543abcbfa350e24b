package auth

import (
	"github.com/sabi-web/sabi/internal/auth/providers"
	"go.uber.org/fx"
)

// Module provides the auth service dependencies
var Module = fx.Module("auth",
	fx.Provide(
		providers.NewRegistry,
		NewService,
	),
)
