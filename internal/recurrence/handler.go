package recurrence

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler gère la consultation et la clôture des récurrences. La génération
// passe par le moteur.
type Handler struct {
	Repo *Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// ListerParContrat traite GET /contrats/{id}/recurrences.
func (h *Handler) ListerParContrat(w http.ResponseWriter, r *http.Request) {
	contratID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de contrat invalide", http.StatusBadRequest)
		return
	}
	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	list, err := h.Repo.ListByContrat(uint(orgID), uint(contratID))
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des récurrences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// TerminerParContrat traite POST /contrats/{id}/recurrences/terminer : fin
// explicite de toutes les récurrences encore ouvertes du contrat.
func (h *Handler) TerminerParContrat(w http.ResponseWriter, r *http.Request) {
	contratID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de contrat invalide", http.StatusBadRequest)
		return
	}

	n, err := h.Repo.Terminer(uint(contratID))
	if err != nil {
		http.Error(w, "Erreur lors de la clôture des récurrences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"terminees": n})
}
