package router

import (
	"github.com/Avi18971911/Insights/internal/query_server/handler"
	serviceInsights "github.com/Avi18971911/Insights/internal/query_server/service/service_insights"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
)

func CreateRouter(
	serviceInsightsQueryService serviceInsights.ServiceInsightsQueryService,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.Use(handler.RequestIdMiddleware())

	r.Handle(
		"/api/serviceInsights", handler.ServiceInsightsHandler(
			serviceInsightsQueryService,
			logger,
		),
	).Methods("GET")

	return r
}
