package handler

import (
	"encoding/json"
	serviceInsights "github.com/Avi18971911/Insights/internal/query_server/service/service_insights"
	"go.uber.org/zap"
	"net/http"
	"time"
)

// ServiceInsightsHandler creates a handler for getting the dependency graph around a service.
// @Summary Get the dependency graph of the traces a service took part in.
// @Tags service insights
// @Produce json
// @Param serviceName query string true "The service at the center of the graph"
// @Param from query int false "Start of the window in unix milliseconds, defaults to an hour before to"
// @Param to query int false "End of the window in unix milliseconds, defaults to now"
// @Success 200 {object} ServiceInsightsResponseDTO "Nodes, links and a summary of violations"
// @Failure 400 {object} ErrorMessage "Missing service name or invalid window"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /api/serviceInsights [get]
func ServiceInsightsHandler(
	s serviceInsights.ServiceInsightsQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestLogger := logger.With(zap.String("request_id", requestIdFromContext(r.Context())))
		requestLogger.Info(
			"Received Service Insights request",
			zap.String("URL Path", r.URL.Path),
			zap.String("Method", r.Method),
		)

		params, err := getSearchParams(r.URL.Query(), time.Now())
		if err != nil {
			requestLogger.Error("Error encountered when validating request", zap.Error(err))
			HttpError(w, err.Error(), http.StatusBadRequest, requestLogger)
			return
		}

		res, err := s.GetServiceInsights(r.Context(), params)
		if err != nil {
			requestLogger.Error(
				"Error encountered when getting service insights",
				zap.String("service_name", params.ServiceName),
				zap.Error(err),
			)
			HttpError(w, "Internal server error", http.StatusInternalServerError, requestLogger)
			return
		}

		resDTO := MapServiceInsightsToDTO(res)
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(resDTO)
		if err != nil {
			requestLogger.Error("Error encountered when encoding response", zap.Error(err))
			return
		}
		requestLogger.Info(
			"Served Service Insights",
			zap.String("service_name", params.ServiceName),
			zap.Int("nodes", len(resDTO.Nodes)),
			zap.Int("links", len(resDTO.Links)),
		)
	}
}
