package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/pending-highlights", handler.ListPendingHighlights)
	mux.HandleFunc("POST /v1/matches/highlights/processed", handler.MarkHighlightsProcessed)
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
}

// Trigger routes are called by the external cron and operators.
func registerTriggerRoutes(mux *http.ServeMux, handler *Handler, cronSecret string) {
	mux.Handle("POST /v1/internal/ingestion/run", RequireCronSecret(cronSecret, http.HandlerFunc(handler.RunIngestion)))
	mux.Handle("POST /v1/internal/ingestion/backfill", RequireCronSecret(cronSecret, http.HandlerFunc(handler.RunBackfill)))
	mux.Handle("POST /v1/internal/ingestion/refresh-scores", RequireCronSecret(cronSecret, http.HandlerFunc(handler.RefreshScores)))
	mux.Handle("POST /v1/internal/ingestion/competitions", RequireCronSecret(cronSecret, http.HandlerFunc(handler.SyncCompetitions)))
	mux.Handle("GET /v1/internal/ingestion/status", RequireCronSecret(cronSecret, http.HandlerFunc(handler.IngestionStatus)))
	mux.Handle("GET /v1/internal/teams/duplicates", RequireCronSecret(cronSecret, http.HandlerFunc(handler.ListDuplicateTeams)))
}
