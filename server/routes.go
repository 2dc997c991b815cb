package server

func (s *Server) initRoutes() {
	oidc := s.OIDCConfig()

	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteProfile, s.ProfileHandler())
	s.RegisterRouteFunc("GET "+RouteFavicon, s.FaviconHandler())

	s.RegisterRouteFunc("GET "+oidc.SignIn.Page, s.SignInPageHandler())
	s.RegisterRouteFunc("GET "+oidc.SignOut.Page, s.SignOutPageHandler())
}
