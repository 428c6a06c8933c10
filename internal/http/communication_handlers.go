package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HenryPajuri/interparents2-sub000/internal/model"
	"github.com/HenryPajuri/interparents2-sub000/internal/policy"
	"github.com/HenryPajuri/interparents2-sub000/internal/repository"
)

type communicationUploader struct {
	Name   string `json:"name"`
	School string `json:"school"`
}

type communicationResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description,omitempty"`
	Category         string                `json:"category"`
	PublishDate      string                `json:"publishDate"`
	OriginalFilename string                `json:"originalFilename"`
	SizeBytes        int64                 `json:"sizeBytes"`
	UploadedBy       communicationUploader `json:"uploadedBy"`
	IsActive         bool                  `json:"isActive"`
	CreatedAt        string                `json:"createdAt"`
	UpdatedAt        string                `json:"updatedAt"`
}

func (s *Server) mapCommunicationResponse(ctx context.Context, doc model.Communication) communicationResponse {
	var uploader communicationUploader
	if account, err := s.store.GetAccountByID(ctx, doc.UploadedBy); err == nil {
		uploader = communicationUploader{Name: account.Name, School: account.School}
	}
	return communicationResponse{
		ID:               doc.ID,
		Title:            doc.Title,
		Description:      doc.Description,
		Category:         doc.Category,
		PublishDate:      formatDate(doc.PublishDate),
		OriginalFilename: doc.OriginalFilename,
		SizeBytes:        doc.SizeBytes,
		UploadedBy:       uploader,
		IsActive:         doc.IsActive,
		CreatedAt:        doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        doc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListCommunications(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !model.ValidCategory(category) {
		writeValidationError(w, map[string]string{"category": "invalid"})
		return
	}

	docs, err := s.store.ListCommunications(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	responses := make([]communicationResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, s.mapCommunicationResponse(r.Context(), doc))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"communications": responses,
	})
}

func (s *Server) handleGetCommunication(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetCommunicationByID(r.Context(), chi.URLParam(r, "docID"))
	// Unpublished documents disappear from the whole public surface, not just
	// the listing; managers republish via PUT without a detail read.
	if err != nil || !doc.IsActive {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"communication": s.mapCommunicationResponse(r.Context(), doc),
	})
}

func (s *Server) handleGetCommunicationFile(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetCommunicationByID(r.Context(), chi.URLParam(r, "docID"))
	if err != nil || !doc.IsActive {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	f, err := s.files.Open(doc.Filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "file_not_found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+doc.OriginalFilename+`"`)
	_, _ = io.Copy(w, f)
}

func (s *Server) handleCreateCommunication(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageCommunications(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	// Extra megabyte covers multipart framing and the metadata fields.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes + 1<<20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, "payload_too_large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		writeValidationError(w, map[string]string{"pdf": "required"})
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, "payload_too_large")
		return
	}
	if contentType := header.Header.Get("Content-Type"); contentType != "" && contentType != "application/pdf" {
		writeError(w, http.StatusBadRequest, "unsupported_media")
		return
	}
	// Sniff the magic bytes; the declared content type alone is attacker-chosen.
	magic := make([]byte, 5)
	n, _ := io.ReadFull(file, magic)
	if n < 5 || !bytes.Equal(magic, []byte("%PDF-")) {
		writeError(w, http.StatusBadRequest, "unsupported_media")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	category := strings.TrimSpace(r.FormValue("category"))
	violations := map[string]string{}
	if title == "" {
		violations["title"] = "required"
	}
	if category == "" {
		violations["category"] = "required"
	} else if !model.ValidCategory(category) {
		violations["category"] = "invalid"
	}
	publishDate := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(r.FormValue("publishDate")); raw != "" {
		parsed, ok := parseDate(raw)
		if !ok {
			violations["publishDate"] = "invalid"
		}
		publishDate = parsed
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	// Nothing touches the disk until every validation has passed.
	filename := uuid.NewString() + ".pdf"
	size, err := s.files.Save(filename, io.MultiReader(bytes.NewReader(magic[:n]), file))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	doc := model.Communication{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      strings.TrimSpace(r.FormValue("description")),
		Filename:         filename,
		OriginalFilename: header.Filename,
		SizeBytes:        size,
		Category:         category,
		PublishDate:      publishDate,
		UploadedBy:       actor.ID,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateCommunication(r.Context(), doc); err != nil {
		// The file is already on disk; take it back out so nothing orphans.
		_ = s.files.Remove(filename)
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "filename_taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":       true,
		"communication": s.mapCommunicationResponse(r.Context(), doc),
	})
}

type updateCommunicationRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	PublishDate *string `json:"publishDate,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (s *Server) handleUpdateCommunication(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageCommunications(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateCommunicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	update := repository.CommunicationUpdate{
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	violations := map[string]string{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			violations["title"] = "required"
		}
		update.Title = &title
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if !model.ValidCategory(category) {
			violations["category"] = "invalid"
		}
		update.Category = &category
	}
	if req.PublishDate != nil {
		parsed, ok := parseDate(*req.PublishDate)
		if !ok {
			violations["publishDate"] = "invalid"
		}
		update.PublishDate = &parsed
	}
	if len(violations) > 0 {
		writeValidationError(w, violations)
		return
	}

	doc, err := s.store.UpdateCommunication(r.Context(), chi.URLParam(r, "docID"), update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"communication": s.mapCommunicationResponse(r.Context(), doc),
	})
}

func (s *Server) handleDeleteCommunication(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	if !policy.CanManageCommunications(actor) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	doc, err := s.store.GetCommunicationByID(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	deleted, err := s.store.DeleteCommunication(r.Context(), doc.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	// The record is authoritative and already gone; removing the bytes must
	// not fail silently or the file would orphan.
	if err := s.files.Remove(doc.Filename); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
