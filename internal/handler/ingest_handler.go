package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/repochat/internal/github"
	"github.com/xxxsen/repochat/internal/pkg/errcode"
	"github.com/xxxsen/repochat/internal/pkg/response"
	"github.com/xxxsen/repochat/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestRequest struct {
	RepoURL string `json:"repo_url"`
	OwnerID string `json:"owner_id"`
}

type ingestResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	DocumentsProcessed int    `json:"documents_processed"`
	RepoURL            string `json:"repo_url"`
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	repoURL := strings.TrimSpace(req.RepoURL)
	if _, _, err := github.ParseRepoURL(repoURL); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid repository url")
		return
	}
	result, err := h.ingest.Ingest(c.Request.Context(), repoURL, ownerOrDefault(req.OwnerID))
	if err != nil {
		handleError(c, err)
		return
	}
	if result.AlreadyIngested {
		response.Success(c, ingestResponse{
			Status:  "info",
			Message: "Repository already ingested. Use query endpoint to ask questions.",
			RepoURL: repoURL,
		})
		return
	}
	response.Success(c, ingestResponse{
		Status:             "success",
		Message:            fmt.Sprintf("Successfully ingested repository with %d document chunks", result.ChunksAdded),
		DocumentsProcessed: result.ChunksAdded,
		RepoURL:            repoURL,
	})
}
