package apporteur

import (
	"gorm.io/gorm"
)

// Repository expose les opérations de persistance des apporteurs.
type Repository interface {
	ChercherParEmailOuCode(db *gorm.DB, valeur string) (*Apporteur, error)
	Sauvegarder(db *gorm.DB, a *Apporteur) error
	ChercherParID(db *gorm.DB, id uint) (*Apporteur, error)
	ListerParOrganisation(db *gorm.DB, orgID uint) ([]Apporteur, error)
	Supprimer(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

// NewRepository instancie un nouveau repository.
func NewRepository() Repository {
	return &repositoryImpl{}
}

// Cherche d'abord par e-mail, puis par code apporteur.
func (r *repositoryImpl) ChercherParEmailOuCode(db *gorm.DB, valeur string) (*Apporteur, error) {
	var a Apporteur

	if err := db.Where("email = ?", valeur).First(&a).Error; err == nil {
		return &a, nil
	}
	if err := db.Where("code_apporteur = ?", valeur).First(&a).Error; err == nil {
		return &a, nil
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *repositoryImpl) Sauvegarder(db *gorm.DB, a *Apporteur) error {
	return db.Save(a).Error
}

func (r *repositoryImpl) ChercherParID(db *gorm.DB, id uint) (*Apporteur, error) {
	var a Apporteur
	err := db.First(&a, id).Error
	return &a, err
}

func (r *repositoryImpl) ListerParOrganisation(db *gorm.DB, orgID uint) ([]Apporteur, error) {
	var list []Apporteur
	err := db.Where("organisation_id = ?", orgID).Order("nom ASC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Supprimer(db *gorm.DB, id uint) error {
	return db.Delete(&Apporteur{}, id).Error
}
