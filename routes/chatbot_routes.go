package routes

import (
	handlers "lifeline/internal/handlers/shared"
	"lifeline/internal/middleware"
	"lifeline/pkg/cache"

	"github.com/gin-gonic/gin"
)

// SetupChatbotRoutes sets up the public chatbot endpoint. The route
// stays unauthenticated but rate limited per client IP.
func SetupChatbotRoutes(r *gin.RouterGroup, chatbotHandler *handlers.ChatbotHandler, redisCache *cache.RedisCache, ratePerMinute int) {
	chatbot := r.Group("/chatbot")
	chatbot.Use(middleware.RateLimitMiddleware(redisCache, ratePerMinute))
	{
		chatbot.POST("/chat", chatbotHandler.Chat)
	}
}
