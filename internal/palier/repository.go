package palier

import (
	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des paliers.
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

// Create insère un nouveau palier.
func (r *Repository) Create(p *Palier) error {
	return r.DB.Create(p).Error
}

// FindByID retourne un palier par son ID.
func (r *Repository) FindByID(id uint) (*Palier, error) {
	var p Palier
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByBareme retourne les paliers d'un barème triés par ordre.
func (r *Repository) ListByBareme(baremeID uint) ([]Palier, error) {
	var list []Palier
	err := r.DB.
		Where("bareme_id = ?", baremeID).
		Order("ordre ASC, seuil_min ASC").
		Find(&list).Error
	return list, err
}

// Update sauvegarde toutes les modifications d'un palier existant.
func (r *Repository) Update(p *Palier) error {
	return r.DB.Save(p).Error
}

// DeleteByID supprime un palier ; gorm.ErrRecordNotFound si rien n'est supprimé.
func (r *Repository) DeleteByID(id uint) error {
	res := r.DB.Delete(&Palier{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
