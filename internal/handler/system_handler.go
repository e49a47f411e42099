package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/repochat/internal/pkg/response"
)

type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SystemHandler struct {
	models map[string]ModelInfo
}

func NewSystemHandler(modelName string) *SystemHandler {
	return &SystemHandler{
		models: map[string]ModelInfo{
			modelName: {
				Name:        modelName,
				Description: "configured answer model",
			},
		},
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "repochat api is running",
	})
}

func (h *SystemHandler) Models(c *gin.Context) {
	response.Success(c, gin.H{"models": h.models})
}
