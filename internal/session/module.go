package session

import "go.uber.org/fx"

// Module provides the session store dependencies
var Module = fx.Module("session",
	fx.Provide(
		NewRedisClient,
		fx.Annotate(
			NewRedisStore,
			fx.As(new(Store)),
		),
	),
)
