package bordereau

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/assurneo/api-commission/internal/lignebordereau"
)

// Handler gère les routes de consultation des bordereaux. La génération et
// les transitions de statut passent par le moteur.
type Handler struct {
	Repo   *Repository
	Lignes *lignebordereau.Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository, lignes *lignebordereau.Repository) *Handler {
	return &Handler{Repo: repo, Lignes: lignes}
}

// Lister traite GET /bordereaux?organisationId=&apporteurId=&periode=&statut=.
func (h *Handler) Lister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}
	apporteurID, _ := strconv.Atoi(q.Get("apporteurId"))

	list, err := h.Repo.ListByOrganisation(uint(orgID), uint(apporteurID), q.Get("periode"), q.Get("statut"))
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des bordereaux", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get traite GET /bordereaux/{id} : le bordereau et ses lignes ordonnées.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de bordereau invalide", http.StatusBadRequest)
		return
	}

	b, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Bordereau introuvable", http.StatusNotFound)
		return
	}
	lignes, err := h.Lignes.ListByBordereau(b.ID)
	if err != nil {
		http.Error(w, "Erreur lors de la lecture des lignes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"bordereau": b,
		"lignes":    lignes,
	})
}
