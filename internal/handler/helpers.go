package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/repochat/internal/pkg/errcode"
	appErr "github.com/xxxsen/repochat/internal/pkg/errors"
	"github.com/xxxsen/repochat/internal/pkg/response"
)

const defaultOwnerID = "default"

func ownerOrDefault(ownerID string) string {
	if ownerID == "" {
		return defaultOwnerID
	}
	return ownerID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrEmptyRepo):
		response.Error(c, errcode.ErrEmptyRepo, "no content found in repository or repository is private")
	case errors.Is(err, appErr.ErrIngestRunning):
		response.Error(c, errcode.ErrIngestRunning, "ingestion already running for this repository")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
