package api

import (
	"net/http"

	"facility-booking/internal/domain/actor"
	"facility-booking/internal/handler/httperr"
	"facility-booking/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorAndID aborts the request itself when either is missing.
func actorAndID(c *gin.Context) (actor.Actor, uuid.UUID, bool) {
	a, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingActor, "Internal server error", nil)
		return actor.Actor{}, uuid.Nil, false
	}
	id, ok := pathID(c)
	return a, id, ok
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
