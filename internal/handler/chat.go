package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

// ChatHandler implements conversation and chat session endpoints
type ChatHandler struct {
	conversation *service.ConversationService
	chats        *service.ChatStore
	logger       *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(conversation *service.ConversationService, chats *service.ChatStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		conversation: conversation,
		chats:        chats,
		logger:       logger,
	}
}

// PostApiV1Chat sends one message and returns the stored turn
func (h *ChatHandler) PostApiV1Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	turn, err := h.conversation.Send(c.Request.Context(), service.ChatTurnRequest{
		Content:    req.Content,
		Attachment: req.Attachment,
	})
	if err != nil {
		h.turnError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

// PostApiV1ChatStream sends one message and streams the reply as server-sent
// events: "delta" events carry text, a final "done" event carries the stored
// turn, and "error" replaces it when the turn could not be stored. A client
// that disconnects abandons the reply.
func (h *ChatHandler) PostApiV1ChatStream(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	events, err := h.conversation.SendStreaming(c.Request.Context(), service.ChatTurnRequest{
		Content:    req.Content,
		Attachment: req.Attachment,
	})
	if err != nil {
		h.turnError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for e := range events {
		switch {
		case !e.Done:
			c.SSEvent("delta", gin.H{"content": e.Delta})
		case e.Err != nil:
			h.logger.Error("failed to store streamed chat turn", zap.Error(e.Err))
			c.SSEvent("error", api.ErrorResponse{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to store chat turn",
				Details: stringPtr(e.Err.Error()),
			})
		default:
			c.SSEvent("done", e.Turn)
		}
		c.Writer.Flush()
	}
}

// PostApiV1ChatSymptom logs a symptom and posts it into the current chat
func (h *ChatHandler) PostApiV1ChatSymptom(c *gin.Context) {
	var entry model.SymptomEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	saved, turn, err := h.conversation.LogSymptom(c.Request.Context(), entry)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSymptom) {
			badRequest(c, h.logger, "Invalid symptom entry", err)
			return
		}
		if saved.ID == "" {
			internalError(c, h.logger, "Failed to log symptom", err)
			return
		}
		// the entry is stored even though the chat turn failed
		h.logger.Error("failed to post logged symptom into chat", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"symptom": saved,
		"turn":    turn,
	})
}

// PostApiV1ChatHistory asks the assistant to review the symptom log
func (h *ChatHandler) PostApiV1ChatHistory(c *gin.Context) {
	turn, err := h.conversation.ShowHistory(c.Request.Context())
	if err != nil {
		h.turnError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

// GetApiV1Sessions lists all sessions, most recently active first
func (h *ChatHandler) GetApiV1Sessions(c *gin.Context) {
	sessions, err := h.chats.AllSessions(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to load chat sessions", err)
		return
	}
	c.JSON(http.StatusOK, api.SessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// PostApiV1Sessions starts a new session and makes it current
func (h *ChatHandler) PostApiV1Sessions(c *gin.Context) {
	session, err := h.chats.CreateSession(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to create chat session", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// DeleteApiV1Sessions removes every session
func (h *ChatHandler) DeleteApiV1Sessions(c *gin.Context) {
	if err := h.chats.ClearAll(c.Request.Context()); err != nil {
		internalError(c, h.logger, "Failed to clear chat history", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetApiV1SessionsId returns one session
func (h *ChatHandler) GetApiV1SessionsId(c *gin.Context) {
	session, err := h.chats.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			notFound(c, "Chat session not found")
			return
		}
		internalError(c, h.logger, "Failed to load chat session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteApiV1SessionsId removes one session
func (h *ChatHandler) DeleteApiV1SessionsId(c *gin.Context) {
	if err := h.chats.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		internalError(c, h.logger, "Failed to delete chat session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PutApiV1SessionsIdTitle renames a session
func (h *ChatHandler) PutApiV1SessionsIdTitle(c *gin.Context) {
	var req api.TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	session, err := h.chats.UpdateTitle(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			notFound(c, "Chat session not found")
			return
		}
		internalError(c, h.logger, "Failed to rename chat session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetApiV1SessionsCurrent returns the session the chat should open on,
// creating one when there are none
func (h *ChatHandler) GetApiV1SessionsCurrent(c *gin.Context) {
	session, err := h.conversation.EnsureSession(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to load current session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PutApiV1SessionsCurrent moves the current session pointer
func (h *ChatHandler) PutApiV1SessionsCurrent(c *gin.Context) {
	var req api.CurrentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}
	if err := h.chats.SetCurrent(c.Request.Context(), req.ID); err != nil {
		internalError(c, h.logger, "Failed to switch session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) turnError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidMessage) || errors.Is(err, service.ErrInvalidSymptom) {
		badRequest(c, h.logger, "Invalid chat message", err)
		return
	}
	internalError(c, h.logger, "Failed to process chat message", err)
}
