package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"curio/internal/models"
	"curio/internal/service/ai"
	"curio/internal/service/assistant"
)

const (
	msgInvalidJSON        = "Invalid request format. JSON expected."
	msgEmptyChat          = "Please enter a message."
	msgEmptyTranslation   = "Please provide text to translate."
	msgTranslationFailed  = "Translation failed."
	msgNoFilePart         = "No file part"
	msgNoSelectedFile     = "No selected file"
	msgEmptyFile          = "Uploaded file is empty"
	msgFileTooLarge       = "File too large"
	msgUploadSucceeded    = "File uploaded and analyzed successfully"
	msgMissingPaperFields = "Please provide at least a title and abstract."
	msgAnalysisFailed     = "Analysis failed."
	msgFileNotFound       = "File not found"
	msgUnsupportedDoc     = "No file uploaded or file type not supported. Please upload a PDF, DOCX, or TXT file."
)

// Handler wires HTTP routes to the assistant service.
type Handler struct {
	assistant *assistant.Service
	logger    *zap.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{assistant: service, logger: logger}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/chat", h.chat)
	api.POST("/translate", h.translate)
	api.POST("/upload", h.upload)
	api.POST("/document/upload", h.documentUpload)
	api.POST("/research", h.research)
	api.GET("/history", h.history)
	api.GET("/health", h.health)
	router.GET("/uploads/:filename", h.serveUpload)
}

type chatRequest struct {
	Message            string `json:"message"`
	TranslateToBengali bool   `json:"translate_to_bengali"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"response": msgFileTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"response": msgInvalidJSON})
		return
	}
	res, err := h.assistant.Chat(c.Request.Context(), req.Message, req.TranslateToBengali)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"response": msgEmptyChat})
			return
		}
		h.logger.Error("chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	body := gin.H{"response": res.Response}
	if res.Translated {
		body["bengali_translation"] = res.Translation
	}
	c.JSON(http.StatusOK, body)
}

type translateRequest struct {
	Text string `json:"text"`
}

func (h *Handler) translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return
	}
	reply, err := h.assistant.Translate(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyTranslation})
		return
	}
	switch reply.Outcome {
	case ai.OutcomeOK, ai.OutcomeStub:
		c.JSON(http.StatusOK, gin.H{"translated_text": reply.Text})
	case ai.OutcomeEmpty:
		c.JSON(http.StatusOK, gin.H{"error": msgTranslationFailed})
	default:
		c.JSON(http.StatusOK, gin.H{"error": reply.Text})
	}
}

func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgFileTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFilePart})
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFilePart})
		return
	}
	defer f.Close()

	res, err := h.assistant.StoreUpload(c.Request.Context(), file.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrNoFilename):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
		case errors.Is(err, assistant.ErrEmptyUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyFile})
		default:
			h.logger.Error("store upload failed", zap.String("file", file.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	body := gin.H{
		"success":         true,
		"message":         msgUploadSucceeded,
		"file_id":         res.File.ID,
		"analysis":        res.Analysis,
		"stored_filename": res.File.StoredFilename,
		"file_type":       res.File.FileType,
	}
	if res.Summary != nil {
		body["summary"] = res.Summary
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) documentUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": msgFileTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgUnsupportedDoc})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgUnsupportedDoc})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgUnsupportedDoc})
		return
	}
	saveToChat, _ := strconv.ParseBool(c.PostForm("save_to_chat"))

	out, err := h.assistant.AnalyzeDocument(c.Request.Context(), assistant.DocumentInput{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
		SaveToChat:  saveToChat,
	})
	if err != nil {
		var extractErr *assistant.ExtractionError
		switch {
		case errors.Is(err, assistant.ErrUnsupportedFile):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgUnsupportedDoc})
		case errors.As(err, &extractErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": extractErr.Error()})
		default:
			h.logger.Error("document analysis failed", zap.String("file", file.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"file_name": out.FileName,
		"file_type": out.FileType,
		"file_size": out.FileSize,
		"text":      out.Text,
		"summary":   out.Summary,
		"analysis":  out.Analysis,
	})
}

type researchRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Content  string `json:"content"`
}

func (h *Handler) research(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return
	}
	res, err := h.assistant.AnalyzeResearch(c.Request.Context(), req.Title, req.Abstract, req.Content)
	if err != nil {
		if errors.Is(err, assistant.ErrMissingPaperFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingPaperFields})
			return
		}
		h.logger.Error("research analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	switch res.Reply.Outcome {
	case ai.OutcomeOK, ai.OutcomeStub:
		c.JSON(http.StatusOK, gin.H{"success": true, "paper_id": res.PaperID, "analysis": res.Reply.Text})
	case ai.OutcomeEmpty:
		c.JSON(http.StatusOK, gin.H{"error": msgAnalysisFailed})
	default:
		c.JSON(http.StatusOK, gin.H{"error": res.Reply.Text})
	}
}

type historyEntry struct {
	ID           int64   `json:"id"`
	UserMessage  string  `json:"user_message"`
	BotResponse  string  `json:"bot_response"`
	Timestamp    *string `json:"timestamp"`
	IsTranslated bool    `json:"is_translated"`
	IsDegraded   bool    `json:"is_degraded"`
}

func newHistoryEntry(m models.ChatMessage) historyEntry {
	entry := historyEntry{
		ID:           m.ID,
		UserMessage:  m.UserMessage,
		BotResponse:  m.BotResponse,
		IsTranslated: m.IsTranslated,
		IsDegraded:   m.IsDegraded,
	}
	if !m.Timestamp.IsZero() {
		ts := m.Timestamp.UTC().Format(time.RFC3339Nano)
		entry.Timestamp = &ts
	}
	return entry
}

func (h *Handler) history(c *gin.Context) {
	messages, err := h.assistant.History(c.Request.Context())
	if err != nil {
		h.logger.Error("load history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries := make([]historyEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, newHistoryEntry(m))
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *Handler) health(c *gin.Context) {
	st := h.assistant.Status(c.Request.Context())
	body := gin.H{"generator_tier": st.Tier.String(), "model": st.Model, "translation_language": st.Language}
	if st.Database != nil {
		h.logger.Warn("database ping failed", zap.Error(st.Database))
		body["status"] = "unavailable"
		body["error"] = st.Database.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	c.JSON(http.StatusOK, body)
}

func (h *Handler) serveUpload(c *gin.Context) {
	path, err := h.assistant.UploadPath(c.Param("filename"))
	if err != nil {
		if errors.Is(err, assistant.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgFileNotFound})
			return
		}
		h.logger.Error("resolve upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.File(path)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
