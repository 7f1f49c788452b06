package notebook

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"notely/pkg/logger"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	notebooks, err := h.Repo.FindAll(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Error listing notebooks: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: notebooks})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	n, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "Notebook not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	n, err := h.Repo.Create(r.Context(), req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	n, err := h.Repo.UpdateTitle(r.Context(), id, req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "Notebook not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := h.Repo.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Notebook not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

