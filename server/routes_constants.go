package server

// Application routes. The sign-in endpoint and callback are served by the
// oidc middleware and have no route of their own. RouteHealth is served
// outside the session chain.
const (
	RouteIndex   = "/"
	RouteProfile = "/api/me"
	RouteHealth  = "/healthz"
	RouteFavicon = "/favicon.ico"
)
