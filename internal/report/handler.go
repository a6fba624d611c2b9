package report

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Handler gère la consultation des reports négatifs d'un apporteur.
type Handler struct {
	Repo *Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Lister traite GET /reports?organisationId=&apporteurId=&enCours=true.
func (h *Handler) Lister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}
	apporteurID, err := strconv.Atoi(q.Get("apporteurId"))
	if err != nil {
		http.Error(w, "apporteurId invalide", http.StatusBadRequest)
		return
	}

	var list []ReportNegatif
	if q.Get("enCours") == "true" {
		list, err = h.Repo.ListEnCours(uint(orgID), uint(apporteurID))
	} else {
		list, err = h.Repo.ListByApporteur(uint(orgID), uint(apporteurID))
	}
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
