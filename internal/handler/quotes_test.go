package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kollektivet/internal/models"
	"kollektivet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoteService struct {
	listFn   func(ctx context.Context) ([]*models.Quote, error)
	createFn func(ctx context.Context, input service.CreateQuoteInput, submitterID string) (*models.Quote, error)
	updateFn func(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error)
	deleteFn func(ctx context.Context, id string, callerID, role string) error
}

func (f *fakeQuoteService) List(ctx context.Context) ([]*models.Quote, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f *fakeQuoteService) Create(ctx context.Context, input service.CreateQuoteInput, submitterID string) (*models.Quote, error) {
	if f.createFn == nil {
		return &models.Quote{}, nil
	}
	return f.createFn(ctx, input, submitterID)
}

func (f *fakeQuoteService) Update(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error) {
	if f.updateFn == nil {
		return &models.Quote{}, nil
	}
	return f.updateFn(ctx, id, patch, callerID, role)
}

func (f *fakeQuoteService) Delete(ctx context.Context, id string, callerID, role string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id, callerID, role)
}

// newQuoteRouter wires the handler behind a stub identity, standing in for
// the session middleware.
func newQuoteRouter(svc service.QuoteService, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))
	h := NewQuoteHandler(svc, log)

	identity := func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("role", role)
	}
	router.GET("/api/quotes", identity, h.List)
	router.POST("/api/quotes", identity, h.Create)
	router.PUT("/api/quotes/:id", identity, h.Update)
	router.DELETE("/api/quotes/:id", identity, h.Delete)
	return router
}

func TestListQuotes(t *testing.T) {
	svc := &fakeQuoteService{
		listFn: func(ctx context.Context) ([]*models.Quote, error) {
			return []*models.Quote{
				{ID: "q2", Text: "nyeste", Author: "Kari", Submitter: models.UserRef{ID: "u2", Email: "kari@kollektivet.no"}},
				{ID: "q1", Text: "hei", Author: "Ola", Submitter: models.UserRef{ID: "u1", Email: "ola@kollektivet.no"}},
			}, nil
		},
	}
	router := newQuoteRouter(svc, "u1", models.RoleResident)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var quotes []models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quotes))
	require.Len(t, quotes, 2)
	assert.Equal(t, "q2", quotes[0].ID)
	assert.False(t, quotes[0].IsFavorite)
}

func TestCreateQuote(t *testing.T) {
	var gotSubmitter string
	svc := &fakeQuoteService{
		createFn: func(ctx context.Context, input service.CreateQuoteInput, submitterID string) (*models.Quote, error) {
			gotSubmitter = submitterID
			return &models.Quote{ID: "q1", Text: input.Text, Author: input.Author, SubmittedBy: submitterID}, nil
		},
	}
	router := newQuoteRouter(svc, "u1", models.RoleResident)

	body := bytes.NewBufferString(`{"text":"hei","author":"Ola","submittedBy":"someone-else"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	// submittedBy in the body must be ignored; the caller owns the quote.
	assert.Equal(t, "u1", gotSubmitter)
}

func TestCreateQuoteMissingFields(t *testing.T) {
	router := newQuoteRouter(&fakeQuoteService{}, "u1", models.RoleResident)

	for _, body := range []string{`{}`, `{"text":"hei"}`, `{"author":"Ola"}`, `{"text":"","author":"Ola"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestUpdateQuotePassesPatch(t *testing.T) {
	var gotPatch models.QuotePatch
	svc := &fakeQuoteService{
		updateFn: func(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error) {
			gotPatch = patch
			return &models.Quote{ID: id}, nil
		},
	}
	router := newQuoteRouter(svc, "u1", models.RoleResident)

	req := httptest.NewRequest(http.MethodPut, "/api/quotes/q1", bytes.NewBufferString(`{"isFavorite":true,"context":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotPatch.IsFavorite)
	assert.True(t, *gotPatch.IsFavorite)
	// An explicit empty string clears the field; absence leaves it alone.
	require.NotNil(t, gotPatch.Context)
	assert.Empty(t, *gotPatch.Context)
	assert.Nil(t, gotPatch.Text)
	assert.Nil(t, gotPatch.Author)
}

func TestUpdateQuoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrQuoteNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQuoteService{
				updateFn: func(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error) {
					return nil, tt.err
				},
			}
			router := newQuoteRouter(svc, "u1", models.RoleResident)

			req := httptest.NewRequest(http.MethodPut, "/api/quotes/q1", bytes.NewBufferString(`{"text":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestDeleteQuote(t *testing.T) {
	svc := &fakeQuoteService{}
	router := newQuoteRouter(svc, "u1", models.RoleResident)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/quotes/q1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quote deleted successfully")
}

func TestDeleteQuoteNotFound(t *testing.T) {
	svc := &fakeQuoteService{
		deleteFn: func(ctx context.Context, id string, callerID, role string) error {
			return service.ErrQuoteNotFound
		},
	}
	router := newQuoteRouter(svc, "u1", models.RoleResident)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/quotes/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
