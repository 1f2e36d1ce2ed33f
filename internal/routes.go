package internal

import (
	"net/http"

	"metricsdash/internal/controllers"
	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/series", http.HandlerFunc(apiController.GetSeries))
	routers.Get("/card", http.HandlerFunc(apiController.GetCard))
	routers.Get("/sources", http.HandlerFunc(apiController.GetSources))
	if conf.Prefetch.Enabled {
		routers.Post("/prefetch", http.HandlerFunc(apiController.Prefetch))
	}
	return routers
}
