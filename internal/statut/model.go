package statut

import (
	"gorm.io/gorm"
)

// Codes des statuts de commission semés au démarrage.
const (
	CodeEnAttente         = "en_attente"
	CodeCalculee          = "calculee"
	CodeValidee           = "validee"
	CodeEnAttentePaiement = "en_attente_paiement"
	CodePayee             = "payee"
	CodeReprise           = "reprise"
	CodeContestee         = "contestee"
	CodeAnnulee           = "annulee"
)

// StatutCommission est un référentiel simple consulté par code.
type StatutCommission struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Code           string `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Nom            string `gorm:"size:100;not null" json:"nom"`
	Description    string `json:"description"`
	OrdreAffichage int    `gorm:"default:0" json:"ordreAffichage"`
}

// Migrate crée la table du référentiel.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&StatutCommission{})
}

// Seed insère les statuts de base s'ils n'existent pas encore.
func Seed(db *gorm.DB) error {
	statuts := []StatutCommission{
		{Code: CodeEnAttente, Nom: "En attente", Description: "Commission calculée mais non validée", OrdreAffichage: 1},
		{Code: CodeValidee, Nom: "Validée", Description: "Commission validée par un responsable", OrdreAffichage: 2},
		{Code: CodeEnAttentePaiement, Nom: "En attente de paiement", OrdreAffichage: 3},
		{Code: CodePayee, Nom: "Payée", OrdreAffichage: 4},
		{Code: CodeReprise, Nom: "Reprise", Description: "Commission reprise suite à résiliation ou impayé", OrdreAffichage: 5},
		{Code: CodeContestee, Nom: "Contestée", OrdreAffichage: 6},
		{Code: CodeAnnulee, Nom: "Annulée", OrdreAffichage: 7},
	}
	for _, s := range statuts {
		var existant StatutCommission
		err := db.Where("code = ?", s.Code).First(&existant).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
