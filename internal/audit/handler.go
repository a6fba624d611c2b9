package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler expose le journal d'audit en lecture seule.
type Handler struct {
	Recorder *Recorder
}

// NewHandler crée un nouveau Handler.
func NewHandler(rec *Recorder) *Handler {
	return &Handler{Recorder: rec}
}

// Lister traite GET /audit?organisationId=&scope=&periode=&limit=.
func (h *Handler) Lister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 100
	}

	logs, err := h.Recorder.ListByOrganisation(uint(orgID), q.Get("scope"), q.Get("periode"), limit)
	if err != nil {
		http.Error(w, "Erreur lors de la lecture du journal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(logs)
}

// Historique traite GET /audit/{scope}/{refId} : la trace complète d'une
// entité donnée.
func (h *Handler) Historique(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	refID, err := strconv.Atoi(vars["refId"])
	if err != nil {
		http.Error(w, "refId invalide", http.StatusBadRequest)
		return
	}
	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	logs, err := h.Recorder.FindByRef(uint(orgID), vars["scope"], uint(refID))
	if err != nil {
		http.Error(w, "Erreur lors de la lecture du journal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(logs)
}
