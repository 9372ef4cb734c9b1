package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pessoas-backend/application/services"
	"pessoas-backend/domain/core/valueobjects"
	"pessoas-backend/pkg/errors"
	"pessoas-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PersonHandler handles person-related HTTP requests
type PersonHandler struct {
	service *services.PersonService
	logger  *zap.Logger
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(service *services.PersonService, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePersonRequest represents the request body for creating a person.
// Pointer fields distinguish absent values from empty ones.
type CreatePersonRequest struct {
	Nickname  *string  `json:"apelido" validate:"required,min=1,max=32"`
	Name      *string  `json:"nome" validate:"required,min=1,max=100"`
	BirthDate *string  `json:"nascimento" validate:"required,datetime=2006-01-02"`
	Stack     []string `json:"stack" validate:"omitempty,dive,required,max=32"`
}

// CreatePerson handles POST /pessoas
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		h.respondJSON(w, http.StatusUnprocessableEntity, err)
		return
	}

	birthDate, err := valueobjects.NewDateFromString(*req.BirthDate)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	person, err := h.service.Create(r.Context(), services.CreateInput{
		Nickname:  *req.Nickname,
		Name:      *req.Name,
		BirthDate: birthDate,
		Stack:     req.Stack,
	})
	if err != nil {
		switch {
		case errors.IsConflict(err):
			// Duplicate nickname: unprocessable, empty body.
			w.WriteHeader(http.StatusUnprocessableEntity)
		case errors.IsValidation(err):
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("failed to create person",
				zap.String("nickname", *req.Nickname),
				zap.Error(err),
			)
			h.respondError(w, http.StatusInternalServerError, "failed to create person")
		}
		return
	}

	w.Header().Set("Location", "/pessoas/"+person.ID.String())
	h.respondJSON(w, http.StatusCreated, person)
}

// GetPerson handles GET /pessoas/{personID}
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewPersonIDFromString(chi.URLParam(r, "personID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid person ID")
		return
	}

	data, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get person",
			zap.String("personID", id.String()),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve person")
		return
	}

	// The service hands back the serialized record (possibly straight from
	// the cache); write it through untouched.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SearchPersons handles GET /pessoas?t=
func (h *PersonHandler) SearchPersons(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("t")
	if term == "" {
		h.respondError(w, http.StatusBadRequest, "query parameter 't' is required")
		return
	}

	persons, err := h.service.Search(r.Context(), term)
	if err != nil {
		h.logger.Error("failed to search persons", zap.String("term", term), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to search persons")
		return
	}

	h.respondJSON(w, http.StatusOK, persons)
}

// CountPersons handles GET /contagem-pessoas, responding with a plain
// integer body.
func (h *PersonHandler) CountPersons(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count persons", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to count persons")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strconv.FormatInt(count, 10)))
}

// Helper methods

func (h *PersonHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *PersonHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
