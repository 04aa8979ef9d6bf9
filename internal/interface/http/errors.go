package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-certification/pkg/response"
	"github.com/oksasatya/go-ddd-user-certification/pkg/validation"
)

// writeError maps domain errors onto HTTP statuses. Anything unknown is logged and hidden behind a 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		nf *domain.NotFoundError
		ve *domain.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		response.Error[any](c, http.StatusNotFound, nf.Error(), nil)
	case errors.Is(err, domain.ErrCertificationMismatch):
		response.Error[any](c, http.StatusForbidden, "certification failed", nil)
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", ve.Fields)
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{"path": c.FullPath(), "request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid id", map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
