package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/repochat/internal/pkg/errcode"
	"github.com/xxxsen/repochat/internal/pkg/response"
	"github.com/xxxsen/repochat/internal/service"
)

type RepoHandler struct {
	repos *service.RepoService
}

func NewRepoHandler(repos *service.RepoService) *RepoHandler {
	return &RepoHandler{repos: repos}
}

type deleteRepoResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	RepoURL string `json:"repo_url"`
}

func (h *RepoHandler) Delete(c *gin.Context) {
	repoURL := strings.TrimSpace(c.Query("repo_url"))
	if repoURL == "" {
		response.Error(c, errcode.ErrInvalid, "repo_url is required")
		return
	}
	ownerID := ownerOrDefault(c.Query("owner_id"))
	deleted, err := h.repos.Delete(c.Request.Context(), repoURL, ownerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, deleteRepoResponse{
		Status:  "success",
		Message: fmt.Sprintf("Deleted %d documents for repository", deleted),
		RepoURL: repoURL,
	})
}
