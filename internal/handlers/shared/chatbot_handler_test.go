package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeline/internal/models"

	"github.com/gin-gonic/gin"
)

type stubChatbotService struct {
	reply string
}

func (s *stubChatbotService) Chat(ctx context.Context, req *models.ChatRequest) *models.ChatResponse {
	return &models.ChatResponse{Response: s.reply}
}

func chatRouter(reply string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewChatbotHandler(&stubChatbotService{reply: reply})
	router.POST("/chatbot/chat", handler.Chat)
	return router
}

func TestChat_OK(t *testing.T) {
	router := chatRouter("Stay calm.")

	body, _ := json.Marshal(map[string]string{"message": "There is a fire"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chatbot/chat", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data models.ChatResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Response != "Stay calm." {
		t.Errorf("response = %q, want the service reply", envelope.Data.Response)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	router := chatRouter("unused")

	body, _ := json.Marshal(map[string]string{"message": "   "})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chatbot/chat", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	router := chatRouter("unused")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/chatbot/chat", bytes.NewReader([]byte("nope")))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
