package controller

import (
	"codefix/internal/format/service"
	"codefix/pkg/utils/response"
	"codefix/pkg/utils/validate"

	"github.com/gin-gonic/gin"
)

// FormatController handles format and lint endpoints.
type FormatController struct {
	formatter *service.FormatService
}

func NewFormatController(formatter *service.FormatService) *FormatController {
	return &FormatController{formatter: formatter}
}

// Format returns the formatted code.
func (h *FormatController) Format(c *gin.Context) {
	req, ok := bindCodeRequest(c)
	if !ok {
		return
	}
	response.Success(c, h.formatter.Format(c.Request.Context(), *req.Code, req.Language))
}

// Lint returns lint issues.
func (h *FormatController) Lint(c *gin.Context) {
	req, ok := bindCodeRequest(c)
	if !ok {
		return
	}
	response.Success(c, h.formatter.Lint(c.Request.Context(), *req.Code, req.Language))
}

// CodeRequest is shared by format and lint. Code may be blank but must be
// present.
type CodeRequest struct {
	Code     *string `json:"code"`
	Language string  `json:"language"`
}

func bindCodeRequest(c *gin.Context) (CodeRequest, bool) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return req, false
	}
	var v validate.Validator
	v.Present("code", req.Code, validate.MsgCodeRequired).
		Required("language", req.Language, validate.MsgLanguageRequired)
	if err := v.Err(); err != nil {
		response.Error(c, err)
		return req, false
	}
	return req, true
}
