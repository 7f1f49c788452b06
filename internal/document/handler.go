package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"notely/internal/document/model"
	"notely/internal/document/service"
	"notely/pkg/logger"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) ListDocs(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if v := r.URL.Query().Get("parentId"); v != "" {
		parentID = &v
	}

	docs, err := h.Service.List(r.Context(), parentID)
	if err != nil {
		logger.Sugar.Errorf("Error listing documents: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	items := make([]model.DocResponse, 0, len(docs))
	for i := range docs {
		items = append(items, model.NewDocResponse(&docs[i]))
	}
	writeJSON(w, http.StatusOK, model.DocListResponse{Items: items})
}

func (h *DocumentHandler) GetDoc(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Doc not found")
			return
		}
		logger.Sugar.Errorf("Error fetching document %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, model.NewDocResponse(doc))
}

func (h *DocumentHandler) CreateDoc(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.Service.Create(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create document: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, model.NewDocResponse(doc))
}

func (h *DocumentHandler) UpdateDoc(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.UpdateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Doc not found")
			return
		}
		logger.Sugar.Errorf("Handler: Failed to update document %s: %v", id, err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.NewDocResponse(doc))
}

func (h *DocumentHandler) DeleteDoc(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.Service.DeleteCascade(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Doc not found")
			return
		}
		logger.Sugar.Errorf("Handler: Failed to delete document %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrSelfParent),
		errors.Is(err, service.ErrCyclicParent):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAssetUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
