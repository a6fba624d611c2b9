package bareme

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBaremeDTO porte la création d'un barème. Les montants circulent en
// chaînes décimales, jamais en flottants.
type CreateBaremeDTO struct {
	OrganisationID uint   `json:"organisationId" validate:"required"`
	Code           string `json:"code" validate:"required,max=50"`
	Nom            string `json:"nom" validate:"required,max=255"`
	Description    string `json:"description"`

	TypeCalcul      string `json:"typeCalcul" validate:"required,oneof=fixe pourcentage palier mixte"`
	BaseCalcul      string `json:"baseCalcul" validate:"omitempty,oneof=cotisation_ht ca_ht forfait"`
	MontantFixe     string `json:"montantFixe"`
	TauxPourcentage string `json:"tauxPourcentage"`

	RecurrenceActive    bool   `json:"recurrenceActive"`
	TauxRecurrence      string `json:"tauxRecurrence"`
	DureeRecurrenceMois int    `json:"dureeRecurrenceMois" validate:"gte=0"`

	DureeReprisesMois int    `json:"dureeReprisesMois" validate:"gte=0"`
	TauxReprise       string `json:"tauxReprise"`

	TypeProduit        *string `json:"typeProduit"`
	ProfilRemuneration *string `json:"profilRemuneration"`
	SocieteID          *uint   `json:"societeId"`
	CanalVente         *string `json:"canalVente"`

	DateEffet string  `json:"dateEffet" validate:"required"`
	DateFin   *string `json:"dateFin"`
}

// VersModel convertit le DTO en modèle, en appliquant les défauts métier
// (fenêtre de reprise 3 mois, taux de reprise 100 %).
func (d *CreateBaremeDTO) VersModel() (*Bareme, error) {
	dateEffet, err := time.Parse(time.RFC3339, d.DateEffet)
	if err != nil {
		return nil, err
	}

	b := &Bareme{
		OrganisationID:     d.OrganisationID,
		Code:               d.Code,
		Nom:                d.Nom,
		Description:        d.Description,
		TypeCalcul:         d.TypeCalcul,
		BaseCalcul:         d.BaseCalcul,
		RecurrenceActive:   d.RecurrenceActive,
		DureeRecurrenceMois: d.DureeRecurrenceMois,
		DureeReprisesMois:  d.DureeReprisesMois,
		TauxReprise:        decimal.NewFromInt(100),
		TypeProduit:        d.TypeProduit,
		ProfilRemuneration: d.ProfilRemuneration,
		SocieteID:          d.SocieteID,
		CanalVente:         d.CanalVente,
		Version:            1,
		DateEffet:          dateEffet,
		Actif:              true,
	}
	if b.BaseCalcul == "" {
		b.BaseCalcul = BaseCotisationHT
	}
	if b.DureeReprisesMois == 0 {
		b.DureeReprisesMois = 3
	}

	if d.MontantFixe != "" {
		m, err := decimal.NewFromString(d.MontantFixe)
		if err != nil {
			return nil, err
		}
		b.MontantFixe = &m
	}
	if d.TauxPourcentage != "" {
		t, err := decimal.NewFromString(d.TauxPourcentage)
		if err != nil {
			return nil, err
		}
		b.TauxPourcentage = &t
	}
	if d.TauxRecurrence != "" {
		t, err := decimal.NewFromString(d.TauxRecurrence)
		if err != nil {
			return nil, err
		}
		b.TauxRecurrence = &t
	}
	if d.TauxReprise != "" {
		t, err := decimal.NewFromString(d.TauxReprise)
		if err != nil {
			return nil, err
		}
		b.TauxReprise = t
	}
	if d.DateFin != nil {
		fin, err := time.Parse(time.RFC3339, *d.DateFin)
		if err != nil {
			return nil, err
		}
		b.DateFin = &fin
	}
	return b, nil
}
