package handler

import (
	"net/http"
	"strconv"

	"servicehub/config"
	"servicehub/internal/domain"
	"servicehub/pkg/logger"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindInvalidState:      http.StatusBadRequest,
	domain.KindConflict:          http.StatusBadRequest,
	domain.KindInsufficientFunds: http.StatusBadRequest,
	domain.KindForbidden:         http.StatusForbidden,
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindUnexpected:        http.StatusInternalServerError,
}

// StatusFor maps an error kind to the HTTP status it is reported with.
func StatusFor(kind domain.ErrorKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Unexpected failures are logged and their cause hidden.
func writeError(c *gin.Context, scope string, err error) {
	kind := domain.KindOf(err)
	msg := domain.Message(err)
	if kind == domain.KindUnexpected {
		logger.Get().Error("http", err.Error(), scope, c.GetString("request_id"))
		msg = "internal error"
	}
	c.JSON(StatusFor(kind), gin.H{"message": msg, "error": kind})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg, "error": domain.KindValidation})
}

// paramID parses a positive numeric path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func optionalUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	v := uint(id)
	return &v, true
}

func page(c *gin.Context, m config.MarketplaceConfig) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return m.PageSize(limit), offset
}
