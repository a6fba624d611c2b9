package commission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler gère les routes de consultation des commissions.
// La création passe exclusivement par le moteur (POST /commissions/calculer).
type Handler struct {
	Repo *Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// List traite GET /commissions?organisationId=&apporteurId=&periode=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	var apporteurID int
	if s := q.Get("apporteurId"); s != "" {
		if apporteurID, err = strconv.Atoi(s); err != nil {
			http.Error(w, "apporteurId invalide", http.StatusBadRequest)
			return
		}
	}

	list, err := h.Repo.ListByOrganisation(uint(orgID), uint(apporteurID), q.Get("periode"))
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des commissions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get traite GET /commissions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de commission invalide", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Commission introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}
