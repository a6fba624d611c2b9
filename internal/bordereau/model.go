package bordereau

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cycle de vie d'un bordereau :
// brouillon → valide → exporte → archive. Seul un brouillon est régénérable.
const (
	StatutBrouillon = "brouillon"
	StatutValide    = "valide"
	StatutExporte   = "exporte"
	StatutArchive   = "archive"
)

// Bordereau représente le relevé périodique de paiement d'un apporteur.
// Unique par (organisation, apporteur, période).
type Bordereau struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganisationID uint   `gorm:"not null;uniqueIndex:idx_bordereau_org_apporteur_periode" json:"organisationId"`
	Reference      string `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	Periode        string `gorm:"size:7;not null;uniqueIndex:idx_bordereau_org_apporteur_periode" json:"periode"`
	ApporteurID    uint   `gorm:"not null;uniqueIndex:idx_bordereau_org_apporteur_periode;index" json:"apporteurId"`

	TotalBrut        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalBrut"`
	TotalReprises    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalReprises"`
	TotalReports     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalReports"`
	TotalNetAPayer   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalNetAPayer"`
	NombreLignes     int             `gorm:"not null;default:0" json:"nombreLignes"`

	Statut         string     `gorm:"size:20;not null;default:'brouillon';index" json:"statut"`
	DateValidation *time.Time `json:"dateValidation"`
	ValidateurID   *uint      `json:"validateurId"`
	DateExport     *time.Time `json:"dateExport"`
	FichierPdfURL  string     `gorm:"size:500" json:"fichierPdfUrl"`
	FichierXlsURL  string     `gorm:"size:500" json:"fichierXlsUrl"`
	Commentaire    string     `json:"commentaire"`
	CreePar        string     `gorm:"size:255" json:"creePar"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des bordereaux.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Bordereau{})
}
