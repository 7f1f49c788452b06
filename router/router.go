package router

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"notely/internal/asset"
	docHandler "notely/internal/document"
	"notely/internal/document/repository"
	"notely/internal/document/service"
	"notely/internal/note"
	"notely/internal/notebook"
	"notely/middleware"
	"notely/pkg/metrics"
)

func Setup(db *sql.DB, assets asset.Store, cleaner *asset.Cleaner) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Docs tree
	docRepo := repository.NewDocumentRepository(db)
	docService := service.NewDocumentService(docRepo, assets, asset.NewScanner(assets), cleaner)
	docs := docHandler.NewDocumentHandler(docService)

	dr := r.PathPrefix("/api/docs").Subrouter()
	dr.HandleFunc("", docs.ListDocs).Methods(http.MethodGet)
	dr.HandleFunc("", docs.CreateDoc).Methods(http.MethodPost)
	dr.HandleFunc("/{id}", docs.GetDoc).Methods(http.MethodGet)
	dr.HandleFunc("/{id}", docs.UpdateDoc).Methods(http.MethodPatch)
	dr.HandleFunc("/{id}", docs.DeleteDoc).Methods(http.MethodDelete)

	// Notebooks
	notebooks := notebook.NewHandler(notebook.NewRepository(db))
	nbr := r.PathPrefix("/api/notebooks").Subrouter()
	nbr.HandleFunc("", notebooks.List).Methods(http.MethodGet)
	nbr.HandleFunc("", notebooks.Create).Methods(http.MethodPost)
	nbr.HandleFunc("/{id}", notebooks.Get).Methods(http.MethodGet)
	nbr.HandleFunc("/{id}", notebooks.Update).Methods(http.MethodPatch)
	nbr.HandleFunc("/{id}", notebooks.Delete).Methods(http.MethodDelete)

	// Notes
	notes := note.NewHandler(note.NewRepository(db))
	nr := r.PathPrefix("/api/notes").Subrouter()
	nr.HandleFunc("", notes.List).Methods(http.MethodGet)
	nr.HandleFunc("", notes.Create).Methods(http.MethodPost)
	nr.HandleFunc("/{id}", notes.Get).Methods(http.MethodGet)
	nr.HandleFunc("/{id}", notes.Update).Methods(http.MethodPatch)
	nr.HandleFunc("/{id}", notes.Delete).Methods(http.MethodDelete)

	return middleware.CORSMiddleware(r)
}
