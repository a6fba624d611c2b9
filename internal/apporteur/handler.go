package apporteur

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/auth"
	"github.com/assurneo/api-commission/internal/utils"
)

// LoginRequest porte les identifiants de connexion.
type LoginRequest struct {
	Login      string `json:"login"`
	MotDePasse string `json:"motDePasse"`
}

type createApporteurRequest struct {
	OrganisationID     uint   `json:"organisationId"`
	Nom                string `json:"nom"`
	Prenom             string `json:"prenom"`
	CodeApporteur      string `json:"codeApporteur"`
	Siret              string `json:"siret"`
	Email              string `json:"email"`
	Telephone          string `json:"telephone"`
	ProfilRemuneration string `json:"profilRemuneration"`
	CanalVente         string `json:"canalVente"`
	MotDePasse         string `json:"motDePasse"`
}

// Handler encapsule DB et repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

// NewHandler retourne un handler initialisé.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

// Login génère un JWT pour des identifiants valides.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalide", http.StatusBadRequest)
		return
	}

	a, err := h.Repository.ChercherParEmailOuCode(h.DB, req.Login)
	if err != nil {
		http.Error(w, "identifiants invalides", http.StatusUnauthorized)
		return
	}

	if !utils.VerifierMotDePasse(a.MotDePasse, req.MotDePasse) {
		http.Error(w, "mot de passe incorrect", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenererToken(a.ID, a.OrganisationID)
	if err != nil {
		http.Error(w, "erreur lors de la génération du token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Creer enregistre un nouvel apporteur.
func (h *Handler) Creer(w http.ResponseWriter, r *http.Request) {
	var req createApporteurRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalide", http.StatusBadRequest)
		return
	}

	hash, err := utils.HashMotDePasse(req.MotDePasse)
	if err != nil {
		http.Error(w, "erreur lors du traitement du mot de passe", http.StatusInternalServerError)
		return
	}

	a := Apporteur{
		OrganisationID:     req.OrganisationID,
		Nom:                req.Nom,
		Prenom:             req.Prenom,
		CodeApporteur:      req.CodeApporteur,
		Siret:              req.Siret,
		Email:              req.Email,
		Telephone:          req.Telephone,
		ProfilRemuneration: req.ProfilRemuneration,
		CanalVente:         req.CanalVente,
		MotDePasse:         hash,
		Actif:              true,
	}

	if err := h.Repository.Sauvegarder(h.DB, &a); err != nil {
		http.Error(w, "erreur lors de l'enregistrement de l'apporteur", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(a)
}

// Lister retourne les apporteurs d'une organisation.
func (h *Handler) Lister(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	list, err := h.Repository.ListerParOrganisation(h.DB, uint(orgID))
	if err != nil {
		http.Error(w, "erreur lors de la recherche des apporteurs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get retourne un apporteur par son ID.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID d'apporteur invalide", http.StatusBadRequest)
		return
	}

	a, err := h.Repository.ChercherParID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Apporteur introuvable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a)
}

// Supprimer retire un apporteur (soft delete).
func (h *Handler) Supprimer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID d'apporteur invalide", http.StatusBadRequest)
		return
	}

	if err := h.Repository.Supprimer(h.DB, uint(id)); err != nil {
		http.Error(w, "erreur lors de la suppression", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
