package lignebordereau

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Types de ligne d'un bordereau.
const (
	TypeCommission = "commission"
	TypeReprise    = "reprise"
	TypeRecurrence = "recurrence"
	TypeReport     = "report"
	TypeAcompte    = "acompte"
)

// LigneBordereau représente la contribution individuelle d'une commission,
// d'une récurrence, d'une reprise ou d'une imputation de report au net d'un
// bordereau. L'ordre est l'ordinal d'agrégation, stable d'un rebuild à l'autre.
type LigneBordereau struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	OrganisationID uint  `gorm:"not null;index" json:"organisationId"`
	BordereauID    uint  `gorm:"not null;index:idx_lignes_bordereau_ordre" json:"bordereauId"`
	CommissionID   *uint `gorm:"index" json:"commissionId"`
	RepriseID      *uint `json:"repriseId"`
	RecurrenceID   *uint `json:"recurrenceId"`
	ReportID       *uint `json:"reportId"`

	TypeLigne        string `gorm:"size:20;not null" json:"typeLigne"`
	ContratID        uint   `json:"contratId"`
	ContratReference string `gorm:"size:100" json:"contratReference"`
	ProduitNom       string `gorm:"size:255" json:"produitNom"`

	MontantBrut    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montantBrut"`
	MontantReprise decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montantReprise"`
	MontantNet     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"montantNet"`

	BaseCalcul   string           `gorm:"size:50" json:"baseCalcul"`
	TauxApplique *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tauxApplique"`
	BaremeID     *uint            `json:"baremeId"`

	Ordre int `gorm:"not null;default:0;index:idx_lignes_bordereau_ordre" json:"ordre"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des lignes de bordereau.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&LigneBordereau{})
}
