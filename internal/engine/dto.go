package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculerCommissionDTO porte la requête de calcul. Les montants circulent en
// chaînes décimales, jamais en flottants.
type CalculerCommissionDTO struct {
	OrganisationID     uint   `json:"organisationId" validate:"required"`
	ApporteurID        uint   `json:"apporteurId"`
	ContratID          uint   `json:"contratId" validate:"required"`
	TypeProduit        string `json:"typeProduit"`
	ProfilRemuneration string `json:"profilRemuneration"`
	SocieteID          *uint  `json:"societeId"`
	CanalVente         string `json:"canalVente"`
	MontantBase        string `json:"montantBase"`
	Periode            string `json:"periode" validate:"omitempty,len=7"`
	EcheanceRef        string `json:"echeanceRef"`
	DateEncaissement   string `json:"dateEncaissement"`
	Acteur             string `json:"acteur"`
}

// VersCommande convertit le DTO en commande moteur.
func (d *CalculerCommissionDTO) VersCommande() (CommandeCalcul, error) {
	cmd := CommandeCalcul{
		OrganisationID:     d.OrganisationID,
		ApporteurID:        d.ApporteurID,
		ContratID:          d.ContratID,
		TypeProduit:        d.TypeProduit,
		ProfilRemuneration: d.ProfilRemuneration,
		SocieteID:          d.SocieteID,
		CanalVente:         d.CanalVente,
		Periode:            d.Periode,
		EcheanceRef:        d.EcheanceRef,
		Acteur:             d.Acteur,
	}
	if d.MontantBase != "" {
		m, err := decimal.NewFromString(d.MontantBase)
		if err != nil {
			return cmd, err
		}
		cmd.MontantBase = m
	}
	if d.DateEncaissement != "" {
		enc, err := time.Parse(time.RFC3339, d.DateEncaissement)
		if err != nil {
			return cmd, err
		}
		cmd.DateEncaissement = &enc
	}
	return cmd, nil
}

// GenererRecurrenceDTO porte la génération d'une mensualité d'échéance.
type GenererRecurrenceDTO struct {
	OrganisationID   uint   `json:"organisationId" validate:"required"`
	CommissionID     uint   `json:"commissionId" validate:"required"`
	EcheanceRef      string `json:"echeanceRef" validate:"required,max=100"`
	DateEncaissement string `json:"dateEncaissement" validate:"required"`
	Acteur           string `json:"acteur"`
}

// VersCommande convertit le DTO en commande moteur.
func (d *GenererRecurrenceDTO) VersCommande() (CommandeRecurrence, error) {
	enc, err := time.Parse(time.RFC3339, d.DateEncaissement)
	if err != nil {
		return CommandeRecurrence{}, err
	}
	return CommandeRecurrence{
		OrganisationID:   d.OrganisationID,
		CommissionID:     d.CommissionID,
		EcheanceRef:      d.EcheanceRef,
		DateEncaissement: enc,
		Acteur:           d.Acteur,
	}, nil
}

// DeclencherRepriseDTO porte le déclenchement d'une reprise.
type DeclencherRepriseDTO struct {
	OrganisationID uint   `json:"organisationId" validate:"required"`
	CommissionID   uint   `json:"commissionId" validate:"required"`
	TypeReprise    string `json:"typeReprise" validate:"required,oneof=resiliation impaye annulation regularisation"`
	DateEvenement  string `json:"dateEvenement"`
	Motif          string `json:"motif"`
	Acteur         string `json:"acteur"`
}

// VersCommande convertit le DTO en commande moteur.
func (d *DeclencherRepriseDTO) VersCommande() (CommandeReprise, error) {
	cmd := CommandeReprise{
		OrganisationID: d.OrganisationID,
		CommissionID:   d.CommissionID,
		TypeReprise:    d.TypeReprise,
		Motif:          d.Motif,
		Acteur:         d.Acteur,
	}
	if d.DateEvenement != "" {
		ev, err := time.Parse(time.RFC3339, d.DateEvenement)
		if err != nil {
			return cmd, err
		}
		cmd.DateEvenement = ev
	}
	return cmd, nil
}

// GenererBordereauDTO porte la génération d'un bordereau.
type GenererBordereauDTO struct {
	OrganisationID uint   `json:"organisationId" validate:"required"`
	ApporteurID    uint   `json:"apporteurId" validate:"required"`
	Periode        string `json:"periode" validate:"required,len=7"`
	Acteur         string `json:"acteur"`
}

// ExporterBordereauDTO porte les artefacts d'export d'un bordereau.
type ExporterBordereauDTO struct {
	FichierPdfURL string `json:"fichierPdfUrl" validate:"omitempty,max=500"`
	FichierXlsURL string `json:"fichierXlsUrl" validate:"omitempty,max=500"`
	Acteur        string `json:"acteur"`
}
