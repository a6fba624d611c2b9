package contrat

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statuts usuels d'un contrat.
const (
	StatutEnCours  = "en_cours"
	StatutResilie  = "resilie"
	StatutImpaye   = "impaye"
	StatutTermine  = "termine"
)

// Contrat représente un contrat d'assurance apporté par un distributeur.
// Le moteur de commission ne consomme que son identité et sa cotisation ;
// l'encaissement des échéances vit dans un système tiers.
type Contrat struct {
	gorm.Model

	OrganisationID uint   `gorm:"not null;index" json:"organisationId"`
	ApporteurID    uint   `gorm:"not null;index" json:"apporteurId"`
	Reference      string `gorm:"size:100;not null;uniqueIndex" json:"reference"`

	TypeProduit string `gorm:"size:100;not null" json:"typeProduit"`
	ProduitID   *uint  `json:"produitId"`
	SocieteID   *uint  `json:"societeId"`
	CanalVente  string `gorm:"size:100" json:"canalVente"`

	CotisationMensuelle decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cotisationMensuelle"`

	DateSouscription time.Time  `json:"dateSouscription"`
	DateEffet        time.Time  `json:"dateEffet"`
	DateResiliation  *time.Time `json:"dateResiliation"`

	Statut string `gorm:"size:50;not null;default:'en_cours'" json:"statut"`
}

// Migrate crée la table des contrats.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Contrat{})
}
