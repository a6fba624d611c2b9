package contrat

import (
	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des contrats.
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

// Create insère un nouveau contrat.
func (r *Repository) Create(c *Contrat) error {
	return r.DB.Create(c).Error
}

// FindByID retourne un contrat par son ID.
func (r *Repository) FindByID(id uint) (*Contrat, error) {
	var c Contrat
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByApporteur retourne les contrats d'un apporteur.
func (r *Repository) ListByApporteur(orgID, apporteurID uint) ([]Contrat, error) {
	var list []Contrat
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ?", orgID, apporteurID).
		Order("date_souscription DESC").
		Find(&list).Error
	return list, err
}

// Update sauvegarde toutes les modifications d'un contrat existant.
func (r *Repository) Update(c *Contrat) error {
	return r.DB.Save(c).Error
}

// UpdateStatut change uniquement le statut d'un contrat.
func (r *Repository) UpdateStatut(id uint, statut string) error {
	return r.DB.Model(&Contrat{}).Where("id = ?", id).Update("statut", statut).Error
}

// Delete supprime un contrat (soft delete).
func (r *Repository) Delete(c *Contrat) error {
	return r.DB.Delete(c).Error
}
