package handlers

import (
	"lifeline/internal/models"
	"lifeline/internal/services"
	"lifeline/internal/utils"
	"lifeline/internal/validators"

	"github.com/gin-gonic/gin"
)

type ChatbotHandler struct {
	chatbotService services.ChatbotService
}

func NewChatbotHandler(chatbotService services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{
		chatbotService: chatbotService,
	}
}

// Chat handles a chatbot turn. The endpoint is public: a reporter in
// crisis must never be blocked by a login wall.
func (h *ChatbotHandler) Chat(c *gin.Context) {
	var request models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateChatRequest(&request); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	response := h.chatbotService.Chat(c.Request.Context(), &request)
	utils.SuccessResponse(c, "Chat response generated", response)
}
