package recurrence

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuts d'une commission récurrente.
// active → suspendue (reprise impayé/résiliation) → active (régularisation)
// → terminee (fin explicite) ; annulee est terminal depuis n'importe où.
const (
	StatutActive    = "active"
	StatutSuspendue = "suspendue"
	StatutTerminee  = "terminee"
	StatutAnnulee   = "annulee"
)

// CommissionRecurrente représente une mensualité récurrente générée à partir
// d'une commission initiale, au rythme des échéances encaissées du contrat.
type CommissionRecurrente struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	OrganisationID       uint   `gorm:"not null;index" json:"organisationId"`
	CommissionInitialeID uint   `gorm:"not null;index" json:"commissionInitialeId"`
	ContratID            uint   `gorm:"not null;index;uniqueIndex:idx_recurrence_contrat_echeance_periode" json:"contratId"`
	EcheanceRef          string `gorm:"size:100;not null;uniqueIndex:idx_recurrence_contrat_echeance_periode" json:"echeanceRef"`
	ApporteurID          uint   `gorm:"not null;index" json:"apporteurId"`
	BaremeID             uint   `gorm:"not null" json:"baremeId"`
	BaremeVersion        int    `gorm:"not null" json:"baremeVersion"`

	Periode    string `gorm:"size:7;not null;index;uniqueIndex:idx_recurrence_contrat_echeance_periode" json:"periode"`
	NumeroMois int    `gorm:"not null" json:"numeroMois"`

	MontantBase    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantBase"`
	TauxRecurrence decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tauxRecurrence"`
	MontantCalcule decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantCalcule"`

	Statut      string `gorm:"size:20;not null;default:'active';index" json:"statut"`
	BordereauID *uint  `gorm:"index" json:"bordereauId"`

	DateEncaissement *time.Time `json:"dateEncaissement"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Migrate crée la table des commissions récurrentes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CommissionRecurrente{})
}
