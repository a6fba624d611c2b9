package contrat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler gère les routes des contrats.
type Handler struct {
	Repo *Repository
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Creer traite POST /contrats.
func (h *Handler) Creer(w http.ResponseWriter, r *http.Request) {
	var c Contrat
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if c.Statut == "" {
		c.Statut = StatutEnCours
	}

	if err := h.Repo.Create(&c); err != nil {
		http.Error(w, "erreur lors de la création du contrat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// Lister traite GET /contrats?organisationId=&apporteurId=.
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

	list, err := h.Repo.ListByApporteur(uint(orgID), uint(apporteurID))
	if err != nil {
		http.Error(w, "erreur lors de la recherche des contrats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get traite GET /contrats/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de contrat invalide", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Contrat introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// ChangerStatut traite PATCH /contrats/{id}/statut.
func (h *Handler) ChangerStatut(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de contrat invalide", http.StatusBadRequest)
		return
	}

	var payload struct {
		Statut string `json:"statut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Statut == "" {
		http.Error(w, "le champ 'statut' est obligatoire", http.StatusBadRequest)
		return
	}

	if err := h.Repo.UpdateStatut(uint(id), payload.Statut); err != nil {
		http.Error(w, "erreur lors du changement de statut", http.StatusInternalServerError)
		return
	}

	c, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Contrat introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}
