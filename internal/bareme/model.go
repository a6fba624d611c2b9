package bareme

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/palier"
)

// Modes de calcul d'un barème.
const (
	TypeCalculFixe        = "fixe"
	TypeCalculPourcentage = "pourcentage"
	TypeCalculPalier      = "palier"
	TypeCalculMixte       = "mixte"
)

// Bases de calcul.
const (
	BaseCotisationHT = "cotisation_ht"
	BaseCAHT         = "ca_ht"
	BaseForfait      = "forfait"
)

// Bareme représente une grille de commissionnement versionnée.
// Les filtres de périmètre (TypeProduit, ProfilRemuneration, SocieteID,
// CanalVente) sont optionnels : nul = joker, le barème matche tout.
type Bareme struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganisationID uint   `gorm:"not null;index" json:"organisationId"`
	Code           string `gorm:"size:50;not null" json:"code"`
	Nom            string `gorm:"size:255;not null" json:"nom"`
	Description    string `json:"description"`

	TypeCalcul      string           `gorm:"size:50;not null" json:"typeCalcul"`
	BaseCalcul      string           `gorm:"size:50;not null;default:'cotisation_ht'" json:"baseCalcul"`
	MontantFixe     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"montantFixe"`
	TauxPourcentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tauxPourcentage"`

	RecurrenceActive    bool             `gorm:"not null;default:false" json:"recurrenceActive"`
	TauxRecurrence      *decimal.Decimal `gorm:"type:decimal(5,2)" json:"tauxRecurrence"`
	DureeRecurrenceMois int              `gorm:"default:0" json:"dureeRecurrenceMois"`

	DureeReprisesMois int             `gorm:"not null;default:3" json:"dureeReprisesMois"`
	TauxReprise       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:100" json:"tauxReprise"`

	TypeProduit        *string `gorm:"size:100;index" json:"typeProduit"`
	ProfilRemuneration *string `gorm:"size:100;index" json:"profilRemuneration"`
	SocieteID          *uint   `gorm:"index" json:"societeId"`
	CanalVente         *string `gorm:"size:100" json:"canalVente"`

	// Répartition hiérarchique portée comme donnée, aucune règle de calcul
	// ne la consomme ici.
	RepartitionCommercial decimal.Decimal `gorm:"type:decimal(5,2);not null;default:100" json:"repartitionCommercial"`
	RepartitionManager    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"repartitionManager"`
	RepartitionAgence     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"repartitionAgence"`

	Version   int        `gorm:"not null;default:1" json:"version"`
	DateEffet time.Time  `gorm:"not null" json:"dateEffet"`
	DateFin   *time.Time `json:"dateFin"`
	Actif     bool       `gorm:"not null;default:true;index" json:"actif"`

	Paliers []palier.Palier `gorm:"foreignKey:BaremeID;constraint:OnDelete:CASCADE" json:"paliers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate crée la table des barèmes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Bareme{})
}
