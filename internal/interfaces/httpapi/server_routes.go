package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, apiKey string) {
	mux.Handle("GET /v1/matches", RequireAPIKey(apiKey, http.HandlerFunc(handler.ListLiveMatches)))
	mux.Handle("GET /v1/matches/{matchID}", RequireAPIKey(apiKey, http.HandlerFunc(handler.GetMatch)))
	mux.Handle("GET /v1/stats", RequireAPIKey(apiKey, http.HandlerFunc(handler.GetStats)))
	mux.Handle("GET /v1/matches/{matchID}/stats", RequireAPIKey(apiKey, http.HandlerFunc(handler.GetMatchStats)))
	mux.Handle("GET /v1/matches/{matchID}/stats/stream", RequireAPIKey(apiKey, http.HandlerFunc(handler.StreamMatchStats)))
	mux.Handle("GET /v1/subscriptions", RequireAPIKey(apiKey, http.HandlerFunc(handler.ListSubscriptions)))
}
