package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/repochat/internal/model"
	"github.com/xxxsen/repochat/internal/pkg/errcode"
	appErr "github.com/xxxsen/repochat/internal/pkg/errors"
	"github.com/xxxsen/repochat/internal/pkg/response"
	"github.com/xxxsen/repochat/internal/service"
)

type QueryHandler struct {
	query *service.QueryService
	repos *service.RepoService
}

func NewQueryHandler(query *service.QueryService, repos *service.RepoService) *QueryHandler {
	return &QueryHandler{query: query, repos: repos}
}

type queryRequest struct {
	RepoURL  string `json:"repo_url"`
	Question string `json:"question"`
	OwnerID  string `json:"owner_id"`
}

type queryResponse struct {
	Answer  string            `json:"answer"`
	Sources []model.SourceRef `json:"sources"`
	RepoURL string            `json:"repo_url"`
	LLMUsed string            `json:"llm_used"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	repoURL := strings.TrimSpace(req.RepoURL)
	question := strings.TrimSpace(req.Question)
	if repoURL == "" || question == "" {
		response.Error(c, errcode.ErrInvalid, "repo_url and question are required")
		return
	}
	ownerID := ownerOrDefault(req.OwnerID)

	exists, err := h.repos.Exists(c.Request.Context(), repoURL, ownerID)
	if err != nil {
		handleError(c, err)
		return
	}
	if !exists {
		handleError(c, fmt.Errorf("%w: repository not ingested", appErr.ErrNotFound))
		return
	}

	result, err := h.query.Query(c.Request.Context(), repoURL, ownerID, question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, queryResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
		RepoURL: repoURL,
		LLMUsed: result.ModelUsed,
	})
}
