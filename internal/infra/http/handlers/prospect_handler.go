package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/infra/http/middleware"
	"github.com/xavierca1/prospector/internal/outreach"
	"github.com/xavierca1/prospector/internal/usecase"
)

// ProspectStore is implemented by *usecase.ProspectStore.
type ProspectStore interface {
	List() []entity.Prospect
	Append(ctx context.Context, input usecase.LogProspectInput) (*entity.Prospect, error)
	Remove(ctx context.Context, id string, confirm usecase.ConfirmFunc) (bool, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status) (bool, error)
}

type ExportMailer interface {
	SendCSVExport(ctx context.Context, to, filename, csv string) error
}

type ProspectHandler struct {
	Store  ProspectStore
	Mailer ExportMailer
}

func NewProspectHandler(store ProspectStore, mailer ExportMailer) *ProspectHandler {
	return &ProspectHandler{Store: store, Mailer: mailer}
}

type UpdateStatusRequest struct {
	Status entity.Status `json:"status"`
}

type EmailExportRequest struct {
	To string `json:"to"`
}

// List (GET /prospects)
func (h *ProspectHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.List())
}

// Create (POST /prospects)
func (h *ProspectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.LogProspectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	p, err := h.Store.Append(r.Context(), input)
	if err != nil {
		h.writeStoreError(w, "append", err)
		return
	}

	middleware.RecordProspectLogged()
	writeJSON(w, http.StatusCreated, p)
}

// UpdateStatus (PATCH /prospects/{id}/status)
func (h *ProspectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	updated, err := h.Store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeStoreError(w, "update_status", err)
		return
	}

	if updated {
		middleware.RecordStatusChange(string(req.Status))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "updated": updated})
}

// Delete (DELETE /prospects/{id}?confirm=true). Without confirm nothing is
// removed and 409 is returned so the client can ask the user.
func (h *ProspectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	removed, err := h.Store.Remove(r.Context(), id, func(entity.Prospect) bool { return confirmed })
	if errors.Is(err, usecase.ErrRemovalNotConfirmed) {
		writeErrorResponse(w, http.StatusConflict, usecase.CodeNotConfirmed, "Confirm the removal with ?confirm=true")
		return
	}
	if err != nil {
		h.writeStoreError(w, "remove", err)
		return
	}

	if removed {
		middleware.RecordProspectRemoved()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": removed})
}

// ExportCSV (GET /prospects/export)
func (h *ProspectHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := outreach.BuildCSV(h.Store.List())
	if errors.Is(err, outreach.ErrNoData) {
		writeErrorResponse(w, http.StatusNotFound, "NO_DATA", "No data to export")
		return
	}

	middleware.RecordExport("download")
	w.Header().Set("Content-Type", outreach.CSVContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+outreach.CSVFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// EmailExport (POST /prospects/export/email)
func (h *ProspectHandler) EmailExport(w http.ResponseWriter, r *http.Request) {
	if h.Mailer == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "MAIL_ERROR", "Mail is not configured")
		return
	}

	var req EmailExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}
	if req.To == "" {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "to is required")
		return
	}

	csv, err := outreach.BuildCSV(h.Store.List())
	if errors.Is(err, outreach.ErrNoData) {
		writeErrorResponse(w, http.StatusNotFound, "NO_DATA", "No data to export")
		return
	}

	if err := h.Mailer.SendCSVExport(r.Context(), req.To, outreach.CSVFilename, csv); err != nil {
		log.Printf("❌ Falha ao enviar export para %s: %v", req.To, err)
		writeErrorResponse(w, http.StatusBadGateway, "MAIL_ERROR", "Failed to send export")
		return
	}

	middleware.RecordExport("email")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *ProspectHandler) writeStoreError(w http.ResponseWriter, operation string, err error) {
	var vf *usecase.ValidationFailure
	if errors.As(err, &vf) {
		middleware.RecordValidationFailure(operation)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeValidation,
			Message: vf.Error(),
			Fields:  vf.Errors,
		})
		return
	}

	log.Printf("❌ Erro em %s: %v", operation, err)
	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Internal error")
}
