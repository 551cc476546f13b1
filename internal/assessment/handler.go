package assessment

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/cardio-risk/backend/internal/errutil"
	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/messages"
	"github.com/cardio-risk/backend/internal/models"
)

type Handler struct {
	service *Service
	model   models.ModelInfo
}

func NewHandler(service *Service, model models.ModelInfo) *Handler {
	return &Handler{service: service, model: model}
}

func (h *Handler) catalogFor(r *http.Request, explicit string) *messages.Catalog {
	if explicit == "" {
		explicit = r.URL.Query().Get("lang")
	}
	return h.service.Catalogs().Match(explicit, r.Header.Get("Accept-Language"))
}

// Assess handles POST /api/v1/assessments.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, err := FromRequest(req)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Assess(r.Context(), in, h.catalogFor(r, req.Locale))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError, "Assessment failed: "+err.Error())
		return
	}

	errutil.WriteJSON(w, http.StatusOK, result)
}

// GetModel handles GET /api/v1/model.
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	errutil.WriteJSON(w, http.StatusOK, h.model)
}

// Form handles GET /.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	cat := h.catalogFor(r, "")
	h.writeForm(w, r, http.StatusOK, cat, DefaultFormValues(), nil, "")
}

// SubmitForm handles POST /.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		cat := h.catalogFor(r, "")
		h.writeForm(w, r, http.StatusBadRequest, cat, DefaultFormValues(), nil, "invalid form submission")
		return
	}

	cat := h.catalogFor(r, r.PostForm.Get("lang"))
	values := formValuesFrom(r.PostForm)

	in, err := FromForm(r.PostForm)
	if err != nil {
		logging.From(r.Context()).Warn("rejected form input", "error", err.Error())
		h.writeForm(w, r, http.StatusBadRequest, cat, values, nil, err.Error())
		return
	}

	result, err := h.service.Assess(r.Context(), in, cat)
	if err != nil {
		errutil.Log(r.Context(), err, "form assessment failed")
		h.writeForm(w, r, http.StatusInternalServerError, cat, values, nil, err.Error())
		return
	}

	h.writeForm(w, r, http.StatusOK, cat, values, result, "")
}

func (h *Handler) writeForm(w http.ResponseWriter, r *http.Request, status int, cat *messages.Catalog, values FormValues, result *models.AssessmentResult, errMsg string) {
	var buf bytes.Buffer
	if err := renderForm(&buf, cat, h.service.Catalogs().Locales(), values, result, errMsg); err != nil {
		errutil.Log(r.Context(), err, "failed to render form")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logging.From(r.Context()).Warn("failed to write page", "error", err)
	}
}
