package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"training_tracker/internal/responses"
	"training_tracker/internal/utils"
)

// pathID parses a uuid path parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return false
	}
	return true
}

func badQuery(c *gin.Context, err error) {
	responses.Fail(c, http.StatusBadRequest, err, "Invalid query parameter")
}
