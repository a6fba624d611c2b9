package apporteur

import (
	"gorm.io/gorm"
)

// Apporteur représente un apporteur d'affaires (distributeur) rémunéré à la
// commission.
type Apporteur struct {
	gorm.Model
	OrganisationID     uint   `gorm:"not null;index" json:"organisationId"`
	Nom                string `json:"nom"`
	Prenom             string `json:"prenom"`
	CodeApporteur      string `gorm:"size:50;uniqueIndex" json:"codeApporteur"`
	Siret              string `gorm:"size:20" json:"siret"`
	Email              string `gorm:"uniqueIndex" json:"email"`
	Telephone          string `json:"telephone"`
	ProfilRemuneration string `gorm:"size:100" json:"profilRemuneration"`
	CanalVente         string `gorm:"size:100" json:"canalVente"`
	MotDePasse         string `json:"-"`
	Actif              bool   `gorm:"not null;default:true" json:"actif"`
}

// Migrate crée la table des apporteurs.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Apporteur{})
}
