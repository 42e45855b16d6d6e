package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/leagues/public", handler.ListPublicLeagues)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPredictionRoutes(mux, handler, verifier)
	registerAuthorizedLeagueRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/import-fixtures", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunImportFixturesJob)))
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
	mux.Handle("PUT /v1/predictions/{fixtureID}", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("GET /v1/leagues/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeagueByInvite)))
	mux.Handle("POST /v1/leagues/{leagueID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinPublicLeague)))
	mux.Handle("POST /v1/leagues/{leagueID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueMembers)))
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetLeaderboard)))
	mux.Handle("GET /v1/leagues/{leagueID}/honours", RequireAuth(verifier, http.HandlerFunc(handler.GetMonthlyHonours)))
	mux.Handle("GET /v1/leagues/{leagueID}/stats", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueStats)))
	mux.Handle("GET /v1/leagues/{leagueID}/messages", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueMessages)))
	mux.Handle("POST /v1/leagues/{leagueID}/messages", RequireAuth(verifier, http.HandlerFunc(handler.PostLeagueMessage)))
}
