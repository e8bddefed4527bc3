package handler

import (
	"errors"
	"net/http"

	"kollektivet/internal/models"
	"kollektivet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type QuoteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type quoteHandler struct {
	quotes service.QuoteService
	log    *logrus.Logger
}

func NewQuoteHandler(quotes service.QuoteService, log *logrus.Logger) QuoteHandler {
	return &quoteHandler{quotes: quotes, log: log}
}

type CreateQuoteRequest struct {
	Text     string  `json:"text" binding:"required"`
	Author   string  `json:"author" binding:"required"`
	Context  *string `json:"context"`
	AuthorID *string `json:"authorId"`
}

func (h *quoteHandler) List(c *gin.Context) {
	quotes, err := h.quotes.List(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list quotes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *quoteHandler) Create(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quote text and author are required"})
		return
	}

	// The submitter is always the caller, never client-supplied.
	submitterID := c.MustGet("userID").(string)

	quote, err := h.quotes.Create(c.Request.Context(), service.CreateQuoteInput{
		Text:     req.Text,
		Author:   req.Author,
		Context:  req.Context,
		AuthorID: req.AuthorID,
	}, submitterID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAuthor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Author user does not exist"})
			return
		}
		h.log.Errorf("Failed to create quote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, quote)
}

func (h *quoteHandler) Update(c *gin.Context) {
	var patch models.QuotePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := c.MustGet("userID").(string)
	role := c.MustGet("role").(string)

	quote, err := h.quotes.Update(c.Request.Context(), c.Param("id"), patch, userID, role)
	if err != nil {
		h.respondQuoteError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *quoteHandler) Delete(c *gin.Context) {
	userID := c.MustGet("userID").(string)
	role := c.MustGet("role").(string)

	if err := h.quotes.Delete(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		h.respondQuoteError(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
}

func (h *quoteHandler) respondQuoteError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		h.log.Errorf("Failed to %s quote: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
