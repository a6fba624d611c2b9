package lignebordereau

import (
	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des lignes de bordereau.
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

// Create insère une nouvelle ligne.
func (r *Repository) Create(l *LigneBordereau) error {
	return r.DB.Create(l).Error
}

// CreateInBatch insère plusieurs lignes d'un coup (ignore si vide).
func (r *Repository) CreateInBatch(lignes []*LigneBordereau) error {
	if len(lignes) == 0 {
		return nil
	}
	return r.DB.Create(lignes).Error
}

// ListByBordereau retourne les lignes d'un bordereau dans l'ordre d'agrégation.
func (r *Repository) ListByBordereau(bordereauID uint) ([]LigneBordereau, error) {
	var list []LigneBordereau
	err := r.DB.
		Where("bordereau_id = ?", bordereauID).
		Order("ordre ASC").
		Find(&list).Error
	return list, err
}

// DeleteByBordereau supprime toutes les lignes d'un bordereau (rebuild complet,
// jamais de patch incrémental).
func (r *Repository) DeleteByBordereau(bordereauID uint) error {
	return r.DB.Where("bordereau_id = ?", bordereauID).Delete(&LigneBordereau{}).Error
}
