package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"tokenchat/internal/chat"
	"tokenchat/internal/conversation/models"

	"github.com/sirupsen/logrus"
)

type ChatService interface {
	ProcessChat(ctx context.Context, tokenSlug, question, userID string) (chat.Result, error)
	GetChatHistory(ctx context.Context, userID, tokenSlug string, limit int) ([]models.ConversationTurn, error)
}

type Handler struct {
	chatService ChatService
}

func NewHandler(chatService ChatService) *Handler {
	return &Handler{
		chatService: chatService,
	}
}

type ChatRequest struct {
	TokenSlug string `json:"token_slug"`
	Question  string `json:"question"`
	UserID    string `json:"user_id"`
}

// Response is the envelope shared by every endpoint.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Timestamp  string      `json:"timestamp"`
}

func (h *Handler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if req.TokenSlug == "" || req.Question == "" || req.UserID == "" {
		writeResponse(w, http.StatusBadRequest, "token_slug, question and user_id are required", nil)
		return
	}

	result, err := h.chatService.ProcessChat(r.Context(), req.TokenSlug, req.Question, req.UserID)
	if err != nil {
		logrus.Errorf("Failed to process chat message for user %s: %v", req.UserID, err)
		writeResponse(w, http.StatusInternalServerError, "Failed to process chat message", chat.Result{
			Answer:    "Sorry, I encountered an error processing your request. Please try again.",
			Citations: []models.Citation{},
		})
		return
	}

	writeResponse(w, http.StatusOK, "Chat response generated successfully", result)
}

func (h *Handler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, tokenSlug, ok := historyPathParams(r.URL.Path)
	if !ok {
		writeResponse(w, http.StatusBadRequest, "user id and token slug are required", nil)
		return
	}

	limit := chat.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeResponse(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	history, err := h.chatService.GetChatHistory(r.Context(), userID, tokenSlug, limit)
	if err != nil {
		writeResponse(w, http.StatusInternalServerError, "Failed to retrieve chat history", []models.ConversationTurn{})
		return
	}

	if history == nil {
		history = []models.ConversationTurn{}
	}
	writeResponse(w, http.StatusOK, "Chat history retrieved successfully", history)
}

// historyPathParams extracts {userId}/{tokenSlug} from the request path
// below /api/chat/history/.
func historyPathParams(path string) (userID, tokenSlug string, ok bool) {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/api/chat/history/"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func writeResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(Response{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		logrus.Errorf("Failed to encode API response: %v", err)
	}
}
