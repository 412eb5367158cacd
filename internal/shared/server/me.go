package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/shared/server/middleware"
	"ingest-backend/internal/shared/server/respond"
)

// meHandler reports the session behind the request so clients can check
// their token before uploading.
func meHandler(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok || session.UserID == "" {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	response := gin.H{
		"userId": session.UserID,
	}
	if session.Email != "" {
		response["email"] = session.Email
	}
	if session.Name != "" {
		response["name"] = session.Name
	}
	if !session.ExpiresAt.IsZero() {
		response["expiresAt"] = session.ExpiresAt.Format(time.RFC3339)
	}

	respond.JSON(c, http.StatusOK, response)
}
