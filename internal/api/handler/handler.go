package handler

import (
	"log/slog"
	"net/http"

	"lc_stat/internal/api/middleware"
	"lc_stat/internal/common"
	"lc_stat/internal/platform/logger"
)

// respondError logs unexpected failures before writing the mapped status.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if common.HTTPStatusFromError(err) == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	common.RespondWithDomainError(w, err)
}

// callerID returns the authenticated user id. Routes using it are mounted
// behind middleware.Authenticator.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
	}
	return uid, ok
}
