package user

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/pkg/utilities"
)

const (
	msgServerError = "Sorry, something went wrong on our server. Please try again"
	msgWrongPass   = "Password is wrong!"
	msgAuthFailed  = "Authentication failed, Please check your credentials"
)

// Handler exposes HTTP endpoints for user operations (register / login / lookup).
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for register endpoint.
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Validate checks the registration fields.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName,
			validation.Required.Error("firstName must be at least 3 characters long"),
			validation.Length(3, 0).Error("firstName must be at least 3 characters long"),
		),
		validation.Field(&r.LastName,
			validation.Required.Error("lastName must be at least 3 characters long"),
			validation.Length(3, 0).Error("lastName must be at least 3 characters long"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required"),
			is.Email.Error("Email is invalid"),
		),
		validation.Field(&r.PhoneNumber, validation.Required.Error("Phone number is required")),
		validation.Field(&r.Password,
			validation.Required.Error("Password should be between 4 to 8 characters long"),
			validation.Length(4, 8).Error("Password should be between 4 to 8 characters long"),
		),
	)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": http.StatusBadRequest, "message": "invalid payload"})
		return
	}
	if err := req.Validate(); err != nil {
		if list, ok := utilities.FieldErrors(err); ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, list)
			return
		}
		h.logger.Errorw("register validation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
		return
	}

	u, err := h.svc.Register(r.Context(), RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			h.writeJSON(w, http.StatusConflict, map[string]any{"statusCode": http.StatusConflict, "message": "Email is already registered"})
			return
		}
		h.logger.Warnw("register failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"statusCode": http.StatusCreated,
		"message":    "User successfully created!",
		"result":     u,
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	StatusCode  int    `json:"statusCode"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   string `json:"expiresIn"`
	ID          string `json:"id"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": http.StatusUnauthorized, "message": msgAuthFailed})
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// unknown account and store failures look the same to the client
		switch {
		case errors.Is(err, ErrBadCredentials):
			h.logger.Debugw("login failed", "reason", "bad_credentials")
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": http.StatusBadRequest, "message": msgWrongPass})
		case errors.Is(err, ErrUserNotFound):
			h.logger.Debugw("login failed", "reason", "user_not_found")
			h.writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": http.StatusUnauthorized, "message": msgAuthFailed})
		default:
			h.logger.Warnw("login failed", "err", err)
			h.writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": http.StatusUnauthorized, "message": msgAuthFailed})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{
		StatusCode:  http.StatusOK,
		AccessToken: res.AccessToken,
		ExpiresIn:   res.ExpiresIn,
		ID:          res.UserID,
	})
}

// Get returns the user identified by the {id} path segment.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]any{"message": "No user found with ID " + id})
			return
		}
		h.logger.Warnw("get user failed", "id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": msgServerError})
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
