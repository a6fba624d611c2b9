package palier

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Types de palier supportés.
const (
	TypeVolume       = "volume"
	TypeCA           = "ca"
	TypePrimeProduit = "prime_produit"
)

// Palier représente un seuil de prime rattaché à un barème.
// L'intervalle [SeuilMin, SeuilMax] est inclusif des deux côtés ;
// SeuilMax nul signifie "sans plafond".
type Palier struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	OrganisationID uint             `gorm:"not null;index" json:"organisationId"`
	BaremeID       uint             `gorm:"not null;index" json:"baremeId"`
	Code           string           `gorm:"size:50;not null" json:"code"`
	Nom            string           `gorm:"size:255;not null" json:"nom"`
	Description    string           `json:"description"`
	TypePalier     string           `gorm:"size:50;not null;default:'volume'" json:"typePalier"`
	SeuilMin       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"seuilMin"`
	SeuilMax       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"seuilMax"`
	MontantPrime   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"montantPrime"`
	TauxBonus      *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tauxBonus"`
	Cumulable      bool             `gorm:"not null;default:false" json:"cumulable"`
	Ordre          int              `gorm:"not null;default:0" json:"ordre"`
	Actif          bool             `gorm:"not null;default:true" json:"actif"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Valide contrôle la cohérence de l'intervalle du palier.
func (p *Palier) Valide() bool {
	if p.SeuilMax == nil {
		return true
	}
	return p.SeuilMin.LessThanOrEqual(*p.SeuilMax)
}

// Migrate crée la table des paliers.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Palier{})
}
