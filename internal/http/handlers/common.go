package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bytesolver-backend/internal/http/response"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

// bindJSON decodes the body into v, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondErr(c, apierr.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", errors.New("Request body is too large")))
			return false
		}
		response.RespondErr(c, apierr.Validation("Invalid JSON body"))
		return false
	}
	return true
}

// pathID parses the named path parameter. Malformed ids answer 404 like
// any other unknown resource.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondErr(c, apierr.NotFound(what))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := strings.TrimSpace(c.Query(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
