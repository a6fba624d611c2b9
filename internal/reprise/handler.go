package reprise

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler gère les routes de consultation des reprises. Le déclenchement et
// la régularisation passent par le moteur.
type Handler struct {
	Repo *Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Lister traite GET /reprises?organisationId=&apporteurId=&statut=.
func (h *Handler) Lister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}
	apporteurID, _ := strconv.Atoi(q.Get("apporteurId"))

	list, err := h.Repo.ListByOrganisation(uint(orgID), uint(apporteurID), q.Get("statut"))
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des reprises", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get traite GET /reprises/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de reprise invalide", http.StatusBadRequest)
		return
	}

	rep, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Reprise introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}
