package controller

import (
	"codefix/internal/ai/service"
	"codefix/pkg/utils/response"
	"codefix/pkg/utils/validate"

	"github.com/gin-gonic/gin"
)

// AIController handles the explain, optimize and generate endpoints.
type AIController struct {
	assist *service.AssistService
}

// NewAIController creates a new AIController.
func NewAIController(assist *service.AssistService) *AIController {
	return &AIController{assist: assist}
}

// Explain describes what a piece of code does.
func (h *AIController) Explain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	var v validate.Validator
	v.NonBlank("code", req.Code, validate.MsgCodeNonEmpty).
		Required("language", req.Language, validate.MsgLanguageRequired)
	if err := v.Err(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.assist.Explain(c.Request.Context(), req.Code, req.Language)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Optimize rewrites code for the requested goal.
func (h *AIController) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	var v validate.Validator
	v.NonBlank("code", req.Code, validate.MsgCodeNonEmpty).
		Required("language", req.Language, validate.MsgLanguageRequired)
	if err := v.Err(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.assist.Optimize(c.Request.Context(), req.Code, req.Language, req.OptimizationType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Generate writes code from a description.
func (h *AIController) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	var v validate.Validator
	v.NonBlank("description", req.Description, validate.MsgDescriptionNonEmpty).
		Required("language", req.Language, validate.MsgLanguageRequired)
	if err := v.Err(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.assist.Generate(c.Request.Context(), req.Description, req.Language)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ExplainRequest is the explain payload.
type ExplainRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// OptimizeRequest is the optimize payload.
type OptimizeRequest struct {
	Code             string `json:"code"`
	Language         string `json:"language"`
	OptimizationType string `json:"optimizationType"`
}

// GenerateRequest is the generate payload.
type GenerateRequest struct {
	Description string `json:"description"`
	Language    string `json:"language"`
}
