package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Handler expose les opérations du moteur en HTTP.
type Handler struct {
	Engine   *Engine
	Validate *validator.Validate
}

// NewHandler crée un nouveau Handler.
func NewHandler(e *Engine, validate *validator.Validate) *Handler {
	return &Handler{Engine: e, Validate: validate}
}

// CalculerCommission traite POST /commissions/calculer.
func (h *Handler) CalculerCommission(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var dto CalculerCommissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd, err := dto.VersCommande()
	if err != nil {
		http.Error(w, "Montant ou date invalide", http.StatusBadRequest)
		return
	}

	res, err := h.Engine.CalculerCommission(cmd)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// GenererRecurrence traite POST /recurrences/generer. Une échéance déjà
// générée ou hors durée répond 200 avec generee=false, pas une erreur.
func (h *Handler) GenererRecurrence(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var dto GenererRecurrenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd, err := dto.VersCommande()
	if err != nil {
		http.Error(w, "Date d'encaissement invalide", http.StatusBadRequest)
		return
	}

	rec, generee, err := h.Engine.GenererRecurrence(cmd)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"generee":    generee,
		"recurrence": rec,
	})
}

// DeclencherReprise traite POST /reprises.
func (h *Handler) DeclencherReprise(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var dto DeclencherRepriseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd, err := dto.VersCommande()
	if err != nil {
		http.Error(w, "Date d'évènement invalide", http.StatusBadRequest)
		return
	}

	rep, err := h.Engine.DeclencherReprise(cmd)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rep)
}

// RegulariserReprise traite POST /reprises/{id}/regulariser.
func (h *Handler) RegulariserReprise(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de reprise invalide", http.StatusBadRequest)
		return
	}

	var dto struct {
		OrganisationID uint   `json:"organisationId" validate:"required"`
		Motif          string `json:"motif"`
		Acteur         string `json:"acteur"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := h.Engine.RegulariserReprise(dto.OrganisationID, uint(id), dto.Motif, dto.Acteur)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

// GenererBordereau traite POST /bordereaux/generer.
func (h *Handler) GenererBordereau(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var dto GenererBordereauDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Engine.GenererBordereau(CommandeBordereau{
		OrganisationID: dto.OrganisationID,
		ApporteurID:    dto.ApporteurID,
		Periode:        dto.Periode,
		Acteur:         dto.Acteur,
	})
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if res.Regenere {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// ValiderBordereau traite POST /bordereaux/{id}/valider.
func (h *Handler) ValiderBordereau(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de bordereau invalide", http.StatusBadRequest)
		return
	}

	var dto struct {
		OrganisationID uint   `json:"organisationId" validate:"required"`
		ValidateurID   uint   `json:"validateurId" validate:"required"`
		Acteur         string `json:"acteur"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	brd, err := h.Engine.ValiderBordereau(dto.OrganisationID, uint(id), dto.ValidateurID, dto.Acteur)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(brd)
}

// ExporterBordereau traite POST /bordereaux/{id}/exporter.
func (h *Handler) ExporterBordereau(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de bordereau invalide", http.StatusBadRequest)
		return
	}

	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	var dto ExporterBordereauDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formé", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	brd, err := h.Engine.ExporterBordereau(uint(orgID), uint(id), dto.FichierPdfURL, dto.FichierXlsURL, dto.Acteur)
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(brd)
}

// ArchiverBordereau traite POST /bordereaux/{id}/archiver.
func (h *Handler) ArchiverBordereau(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID de bordereau invalide", http.StatusBadRequest)
		return
	}
	orgID, err := strconv.Atoi(r.URL.Query().Get("organisationId"))
	if err != nil {
		http.Error(w, "organisationId invalide", http.StatusBadRequest)
		return
	}

	brd, err := h.Engine.ArchiverBordereau(uint(orgID), uint(id), r.URL.Query().Get("acteur"))
	if err != nil {
		h.repondreErreur(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(brd)
}

// repondreErreur mappe les erreurs métier du moteur vers les statuts HTTP.
func (h *Handler) repondreErreur(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrIntrouvable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrBaremeIntrouvable),
		errors.Is(err, ErrFenetreRepriseExpiree):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrBordereauNonBrouillon),
		errors.Is(err, ErrTransitionBordereau),
		errors.Is(err, ErrRepriseNonRegularisable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Erreur interne du moteur de commission", http.StatusInternalServerError)
	}
}
