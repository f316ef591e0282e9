package controller

import (
	"cbt_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the JSON envelope. Anything not
// recognized is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	var validation *util.ValidationError
	if errors.As(err, &validation) {
		util.BadRequest(c, validation.Error())
		return
	}
	var pool *util.InsufficientPoolError
	if errors.As(err, &pool) {
		util.Error(c, http.StatusUnprocessableEntity, pool.Error())
		return
	}

	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrPaperNotFound),
		errors.Is(err, util.ErrSectionNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrTemplateNotFound),
		errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(c, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrStateConflict):
		util.Conflict(c, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Unauthorized(c)
	case errors.Is(err, util.ErrNotWhitelisted),
		errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(c)
	case errors.Is(err, util.ErrInsightUnavailable):
		util.Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		util.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
