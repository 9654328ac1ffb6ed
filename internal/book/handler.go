package book

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book/entity"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/pkg/utilities"
)

const msgServerError = "Sorry, something went wrong on our server. Please try again"

// Handler contains dependencies for handling book endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the body of POST /books.
type CreateRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedDate string `json:"publishedDate"`
	Description   string `json:"description"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("Title is required")),
		validation.Field(&r.Author, validation.Required.Error("Author is required")),
		validation.Field(&r.Genre, validation.Required.Error("Genre is required")),
		validation.Field(&r.PublishedDate, validation.Required.Error("publication date is required")),
		validation.Field(&r.Description, validation.Required.Error("Description is required")),
	)
}

// UpdateRequest is the body of PATCH /books/{id}. Omitted fields stay as they are.
type UpdateRequest entity.Patch

// Validate rejects fields that are present but blank.
func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty.Error("Title cannot be empty")),
		validation.Field(&r.Author, validation.NilOrNotEmpty.Error("Author cannot be empty")),
		validation.Field(&r.Genre, validation.NilOrNotEmpty.Error("Genre cannot be empty")),
		validation.Field(&r.PublishedDate, validation.NilOrNotEmpty.Error("publication date cannot be empty")),
		validation.Field(&r.Description, validation.NilOrNotEmpty.Error("Description cannot be empty")),
	)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": http.StatusBadRequest, "message": "invalid payload"})
		return
	}
	if !h.validate(w, req.Validate()) {
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	b, err := h.svc.Create(r.Context(), &entity.Book{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedDate: req.PublishedDate,
		Description:   req.Description,
	}, p.UserID)
	if err != nil {
		h.logger.Warnw("create book failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"statusCode": http.StatusCreated,
		"message":    "Books successfully created!",
		"result":     b,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get book", id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": http.StatusBadRequest, "message": "invalid payload"})
		return
	}
	if !h.validate(w, req.Validate()) {
		return
	}
	b, err := h.svc.Update(r.Context(), id, entity.Patch(req))
	if err != nil {
		h.fail(w, "update book", id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "Book updated successfully", "data": b})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, "delete book", id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

// validate writes a 422 (or 500 for rule errors) and reports false when err is set.
func (h *Handler) validate(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	if list, ok := utilities.FieldErrors(err); ok {
		h.writeJSON(w, http.StatusUnprocessableEntity, list)
		return false
	}
	h.logger.Errorw("book validation failed", "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
	return false
}

func (h *Handler) fail(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"message": "No book found with ID " + id})
		return
	}
	h.logger.Warnw(op+" failed", "id", id, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
