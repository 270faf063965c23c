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

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/participants", handler.RegisterParticipant)
}

func registerParticipantRoutes(mux *http.ServeMux, handler *Handler, resolver IdentityResolver) {
	mux.Handle("GET /v1/weeks/{weekID}/games", RequireParticipant(resolver, http.HandlerFunc(handler.ListWeekGames)))
	mux.Handle("PUT /v1/weeks/{weekID}/games/{gameID}/pick", RequireParticipant(resolver, http.HandlerFunc(handler.SavePick)))
	mux.Handle("DELETE /v1/weeks/{weekID}/games/{gameID}/pick", RequireParticipant(resolver, http.HandlerFunc(handler.DeletePick)))
	mux.Handle("POST /v1/weeks/{weekID}/submissions", RequireParticipant(resolver, http.HandlerFunc(handler.SubmitWeekPicks)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/weeks", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateWeek)))
	mux.Handle("POST /v1/weeks/{weekID}/games", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateGame)))
	mux.Handle("POST /v1/games/{gameID}/finalize", RequireAdminToken(adminToken, http.HandlerFunc(handler.FinalizeGame)))
}
