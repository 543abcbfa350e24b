package constants

const (
	// CookieName is the session cookie set on login and read on every request.
	CookieName = "SESSION"

	// LandingPath is where every auth outcome, success or failure, redirects.
	LandingPath = "/"

	// LoginPathPrefix prefixes the per-provider login routes.
	LoginPathPrefix = "/auth/"
)
