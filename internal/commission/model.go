package commission

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission représente une commission brute calculée pour une vente.
// Jamais supprimée par le moteur : les corrections passent par des reprises
// qui viennent débiter MontantReprises et MontantNetAPayer.
type Commission struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganisationID uint   `gorm:"not null;index:idx_commissions_org_periode" json:"organisationId"`
	Reference      string `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	ApporteurID    uint   `gorm:"not null;index:idx_commissions_apporteur_periode" json:"apporteurId"`
	ContratID      uint   `gorm:"not null;index" json:"contratId"`
	ProduitID      *uint  `json:"produitId"`
	TypeProduit    string `gorm:"size:255" json:"typeProduit"`
	BaseCalcul     string `gorm:"size:50" json:"baseCalcul"`

	BaremeID      uint             `gorm:"not null;index" json:"baremeId"`
	BaremeVersion int              `gorm:"not null;default:1" json:"baremeVersion"`
	TypeCalcul    string           `gorm:"size:50" json:"typeCalcul"`
	TauxApplique  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tauxApplique"`

	MontantBase     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montantBase"`
	MontantBrut     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantBrut"`
	MontantReprises decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montantReprises"`
	MontantAcomptes decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montantAcomptes"`
	MontantNetAPayer decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantNetAPayer"`

	StatutID     uint      `gorm:"not null;index" json:"statutId"`
	Periode      string    `gorm:"size:7;not null;index:idx_commissions_org_periode;index:idx_commissions_apporteur_periode" json:"periode"`
	DateCreation time.Time `gorm:"not null" json:"dateCreation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des commissions.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Commission{})
}
