package controller

import (
	"errors"
	"net/http"

	"chatrelay/model"
	"chatrelay/platform"
	"chatrelay/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var logger = platform.Logger

// ChatController ...
type ChatController struct {
	chatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

func (ctrl *ChatController) RegisterRoutes(r gin.IRouter) {
	r.POST("/chat", ctrl.Chat)
	r.GET("/history/:user_id", ctrl.ListSessions)
	r.GET("/history/:user_id/:chat_id", ctrl.History)
	r.GET("/ping", ctrl.Ping)
}

func (ctrl *ChatController) Chat(c *gin.Context) {
	var input struct {
		UserId  string `json:"user_id"`
		Message string `json:"message"`
		ChatId  string `json:"chat_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.UserId == "" || input.Message == "" {
		logger.Warnf("[%s] Invalid chat input", c.GetString("requestId"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id or message"})
		return
	}

	// a fresh id marks a brand-new conversation
	chatId := input.ChatId
	newSession := chatId == ""
	if newSession {
		chatId = uuid.NewString()
	}

	reply, err := ctrl.chatService.SendMessage(c.Request.Context(),
		c.GetString("requestId"), input.UserId, chatId, newSession, input.Message)
	if err != nil {
		if errors.Is(err, service.ErrCompletion) {
			logger.Warnf("[%s] completion failed for user %s: %s", c.GetString("requestId"), input.UserId, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Completion request failed"})
			return
		}
		if errors.Is(err, model.ErrSessionExists) {
			logger.Warnf("[%s] generated chat id collision: %s", c.GetString("requestId"), chatId)
		}
		logger.Warnf("[%s] chat failed for user %s: %s", c.GetString("requestId"), input.UserId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply, "chat_id": chatId})
}

func (ctrl *ChatController) ListSessions(c *gin.Context) {
	userId := c.Param("user_id")

	chatIds, err := ctrl.chatService.ListSessions(userId)
	if err != nil {
		logger.Warnf("[%s] list sessions failed for user %s: %s", c.GetString("requestId"), userId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list chat sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_sessions": chatIds})
}

func (ctrl *ChatController) History(c *gin.Context) {
	userId := c.Param("user_id")
	chatId := c.Param("chat_id")

	history, err := ctrl.chatService.History(chatId)
	if err != nil {
		logger.Warnf("[%s] load history failed for user %s chat %s: %s", c.GetString("requestId"), userId, chatId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (ctrl *ChatController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
