package bareme

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler gère les routes des barèmes.
type Handler struct {
	Repo     *Repository
	Validate *validator.Validate
}

// NewHandler crée un nouveau Handler.
func NewHandler(repo *Repository, validate *validator.Validate) *Handler {
	return &Handler{Repo: repo, Validate: validate}
}

// Create traite POST /baremes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var dto CreateBaremeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := dto.VersModel()
	if err != nil {
		http.Error(w, "Montant ou date invalide", http.StatusBadRequest)
		return
	}
	if err := h.Repo.Create(b); err != nil {
		http.Error(w, "Erreur lors de la création du barème", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(b)
}

// List traite GET /baremes?organisationId=&actifs=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}
	actifs := r.URL.Query().Get("actifs") == "true"

	list, err := h.Repo.ListByOrganisation(uint(orgID), actifs)
	if err != nil {
		http.Error(w, "Erreur lors de la recherche des barèmes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get traite GET /baremes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barème invalide", http.StatusBadRequest)
		return
	}

	b, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Barème introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

// Applicable traite GET /baremes/applicable : résolution du barème en
// vigueur pour un contexte (produit, profil, société, canal, date).
func (h *Handler) Applicable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	orgID, err := strconv.Atoi(q.Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	criteres := Criteres{
		TypeProduit:        q.Get("typeProduit"),
		ProfilRemuneration: q.Get("profilRemuneration"),
		CanalVente:         q.Get("canalVente"),
	}
	if s := q.Get("societeId"); s != "" {
		sid, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "societeId invalide", http.StatusBadRequest)
			return
		}
		u := uint(sid)
		criteres.SocieteID = &u
	}
	if d := q.Get("date"); d != "" {
		at, err := time.Parse(time.RFC3339, d)
		if err != nil {
			http.Error(w, "date invalide", http.StatusBadRequest)
			return
		}
		criteres.Date = at
	}

	b, err := h.Repo.FindApplicable(uint(orgID), criteres)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Aucun barème applicable", http.StatusNotFound)
			return
		}
		http.Error(w, "Erreur lors de la résolution du barème", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

// Desactiver traite PATCH /baremes/{id}/desactiver.
func (h *Handler) Desactiver(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de barème invalide", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Desactiver(uint(id)); err != nil {
		http.Error(w, "Erreur lors de la désactivation", http.StatusInternalServerError)
		return
	}

	b, err := h.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "Barème introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}
