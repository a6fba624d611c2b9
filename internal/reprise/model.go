package reprise

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Types de reprise.
const (
	TypeResiliation    = "resiliation"
	TypeImpaye         = "impaye"
	TypeAnnulation     = "annulation"
	TypeRegularisation = "regularisation"
)

// Statuts d'une reprise.
const (
	StatutEnAttente = "en_attente"
	StatutAppliquee = "appliquee"
	StatutAnnulee   = "annulee"
)

// Reprise représente une correction négative d'une commission déjà calculée,
// bornée dans le temps par la fenêtre de reprise du barème.
type Reprise struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	OrganisationID        uint   `gorm:"not null;index" json:"organisationId"`
	CommissionOriginaleID uint   `gorm:"not null;index" json:"commissionOriginaleId"`
	ContratID             uint   `gorm:"not null;index" json:"contratId"`
	ApporteurID           uint   `gorm:"not null;index" json:"apporteurId"`
	Reference             string `gorm:"size:100;not null" json:"reference"`
	TypeReprise           string `gorm:"size:50;not null" json:"typeReprise"`

	MontantReprise  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantReprise"`
	TauxReprise     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:100" json:"tauxReprise"`
	MontantOriginal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantOriginal"`

	PeriodeOrigine     string     `gorm:"size:7;not null" json:"periodeOrigine"`
	PeriodeApplication string     `gorm:"size:7;not null;index" json:"periodeApplication"`
	DateEvenement      time.Time  `gorm:"not null" json:"dateEvenement"`
	DateLimite         time.Time  `gorm:"not null" json:"dateLimite"`
	DateApplication    *time.Time `json:"dateApplication"`

	Statut      string `gorm:"size:20;not null;default:'en_attente';index" json:"statut"`
	BordereauID *uint  `gorm:"index" json:"bordereauId"`
	Motif       string `json:"motif"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des reprises.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Reprise{})
}
