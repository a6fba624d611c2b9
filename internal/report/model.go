package report

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuts d'un report négatif.
const (
	StatutEnCours = "en_cours"
	StatutApure   = "apure"
	StatutAnnule  = "annule"
)

// ReportNegatif représente un solde négatif non recouvré, porté d'une période
// sur les suivantes. MontantRestant ne peut que décroître ; un report ne
// devient jamais négatif : c'est de l'argent dû PAR l'apporteur.
type ReportNegatif struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganisationID uint   `gorm:"not null;index:idx_report_org_apporteur" json:"organisationId"`
	ApporteurID    uint   `gorm:"not null;index:idx_report_org_apporteur" json:"apporteurId"`
	PeriodeOrigine string `gorm:"size:7;not null;index" json:"periodeOrigine"`

	MontantInitial decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantInitial"`
	MontantRestant decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantRestant"`

	Statut                      string `gorm:"size:20;not null;default:'en_cours';index" json:"statut"`
	BordereauOrigineID          *uint  `json:"bordereauOrigineId"`
	DernierePeriodeApplication  string `gorm:"size:7" json:"dernierePeriodeApplication"`
	Motif                       string `json:"motif"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des reports négatifs.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReportNegatif{})
}
