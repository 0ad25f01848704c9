package controller

import (
	"context"

	"codefix/internal/session/model"
	"codefix/internal/session/service"
	"codefix/pkg/utils/contextkey"
	"codefix/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// SessionController handles session CRUD endpoints.
type SessionController struct {
	sessions *service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessions *service.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// Create stores a new session.
func (h *SessionController) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), service.CreateInput{
		ID:       req.SessionID,
		Code:     req.Code,
		Language: req.Language,
		Metadata: req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, SessionResponse{Session: session})
}

// Get returns one session.
func (h *SessionController) Get(c *gin.Context) {
	session, err := h.sessions.Get(sessionContext(c), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, SessionResponse{Session: session})
}

// Update merges the provided fields into a session.
func (h *SessionController) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	session, err := h.sessions.Update(sessionContext(c), c.Param("sessionId"), service.UpdateInput{
		Code:     req.Code,
		Language: req.Language,
		Metadata: req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, SessionResponse{Session: session})
}

// Delete removes a session.
func (h *SessionController) Delete(c *gin.Context) {
	if err := h.sessions.Delete(sessionContext(c), c.Param("sessionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Session deleted successfully", nil)
}

// Restore brings a deleted session back from the archive.
func (h *SessionController) Restore(c *gin.Context) {
	session, err := h.sessions.Restore(sessionContext(c), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, SessionResponse{Session: session})
}

// sessionContext tags the request context with the path session id so
// service logs carry it.
func sessionContext(c *gin.Context) context.Context {
	return context.WithValue(c.Request.Context(), contextkey.SessionID, c.Param("sessionId"))
}

// List returns every session.
func (h *SessionController) List(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ListResponse{Sessions: sessions, Count: len(sessions)})
}

// CreateRequest is the create payload; every field is optional.
type CreateRequest struct {
	SessionID string         `json:"sessionId"`
	Code      string         `json:"code"`
	Language  string         `json:"language"`
	Metadata  map[string]any `json:"metadata"`
}

// UpdateRequest holds the fields to change.
type UpdateRequest struct {
	Code     *string         `json:"code"`
	Language *string         `json:"language"`
	Metadata *map[string]any `json:"metadata"`
}

type SessionResponse struct {
	Session *model.Session `json:"session"`
}

type ListResponse struct {
	Sessions []*model.Session `json:"sessions"`
	Count    int              `json:"count"`
}
