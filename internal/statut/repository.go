package statut

import (
	"gorm.io/gorm"
)

// Repository encapsule l'accès au référentiel des statuts.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancie un nouveau repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retourne une copie du repo utilisant un *gorm.DB spécifique (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// FindByCode retourne le statut correspondant au code.
func (r *Repository) FindByCode(code string) (*StatutCommission, error) {
	var s StatutCommission
	if err := r.DB.Where("code = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByID retourne un statut par son ID.
func (r *Repository) FindByID(id uint) (*StatutCommission, error) {
	var s StatutCommission
	if err := r.DB.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindAll liste tous les statuts triés par ordre d'affichage.
func (r *Repository) FindAll() ([]StatutCommission, error) {
	var list []StatutCommission
	err := r.DB.Order("ordre_affichage ASC").Find(&list).Error
	return list, err
}
