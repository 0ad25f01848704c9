package controller

import (
	"strings"

	aiservice "codefix/internal/ai/service"
	"codefix/internal/compiler/runner"
	"codefix/internal/compiler/service"
	"codefix/pkg/utils/response"
	"codefix/pkg/utils/validate"

	"github.com/gin-gonic/gin"
)

// CompilerController handles the compiler endpoints.
type CompilerController struct {
	compile *service.CompileService
	fix     *aiservice.FixService
}

// NewCompilerController creates a new CompilerController.
func NewCompilerController(compile *service.CompileService, fix *aiservice.FixService) *CompilerController {
	return &CompilerController{compile: compile, fix: fix}
}

// Languages lists the supported languages.
func (h *CompilerController) Languages(c *gin.Context) {
	response.Success(c, LanguagesResponse{Languages: h.compile.Languages()})
}

// Compile runs code and returns its output.
func (h *CompilerController) Compile(c *gin.Context) {
	var req CompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	var v validate.Validator
	v.NonBlank("code", req.Code, validate.MsgCodeNonEmpty).
		Required("language", req.Language, validate.MsgLanguageRequired)
	if req.Language != "" {
		v.Check(h.compile.Supports(req.Language), "language",
			"Language must be one of: "+strings.Join(h.compile.SupportedIDs(), ", "))
	}
	if err := v.Err(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.compile.Compile(c.Request.Context(), req.Code, req.Language)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Fix asks the AI to repair code. The response always succeeds; AI
// problems are described in the explanation.
func (h *CompilerController) Fix(c *gin.Context) {
	var req FixRequest
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

	response.Success(c, h.fix.Fix(c.Request.Context(), req.Code, req.Language, req.Issue))
}

// CompileRequest is the compile payload.
type CompileRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// FixRequest is the fix payload.
type FixRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Issue    string `json:"issue"`
}

// LanguagesResponse lists supported languages.
type LanguagesResponse struct {
	Languages []runner.LanguageSpec `json:"languages"`
}
