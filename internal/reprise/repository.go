package reprise

import (
	"time"

	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des reprises.
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

// Create insère une nouvelle reprise.
func (r *Repository) Create(rep *Reprise) error {
	return r.DB.Create(rep).Error
}

// FindByID retourne une reprise par son ID.
func (r *Repository) FindByID(id uint) (*Reprise, error) {
	var rep Reprise
	if err := r.DB.First(&rep, id).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListEnAttente retourne les reprises en attente d'un apporteur dont la
// période d'application est atteinte (≤ periodeMax), triées par création.
// L'inégalité rattrape les reprises d'anciennes périodes jamais consommées :
// une reprise en attente ne reste jamais orpheline.
func (r *Repository) ListEnAttente(orgID, apporteurID uint, periodeMax string) ([]Reprise, error) {
	var list []Reprise
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ? AND periode_application <= ? AND statut = ?",
			orgID, apporteurID, periodeMax, StatutEnAttente).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// ListByOrganisation retourne les reprises avec filtres optionnels.
func (r *Repository) ListByOrganisation(orgID uint, apporteurID uint, statut string) ([]Reprise, error) {
	q := r.DB.Where("organisation_id = ?", orgID)
	if apporteurID != 0 {
		q = q.Where("apporteur_id = ?", apporteurID)
	}
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	var list []Reprise
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

// Appliquer marque la reprise consommée par un bordereau. Une reprise n'est
// applicable qu'une seule fois : l'update est conditionné au statut en_attente
// et remonte gorm.ErrRecordNotFound si la transition est déjà faite.
func (r *Repository) Appliquer(id, bordereauID uint, dateApplication time.Time) error {
	res := r.DB.Model(&Reprise{}).
		Where("id = ? AND statut = ?", id, StatutEnAttente).
		Updates(map[string]interface{}{
			"statut":           StatutAppliquee,
			"bordereau_id":     bordereauID,
			"date_application": dateApplication,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DetacherDuBordereau remet en attente les reprises d'un bordereau en cours
// de rebuild, pour que la régénération les ré-applique de façon déterministe.
func (r *Repository) DetacherDuBordereau(bordereauID uint) error {
	return r.DB.Model(&Reprise{}).
		Where("bordereau_id = ? AND statut = ?", bordereauID, StatutAppliquee).
		Updates(map[string]interface{}{
			"statut":           StatutEnAttente,
			"bordereau_id":     nil,
			"date_application": nil,
		}).Error
}

// Annuler passe la reprise en annulée (régularisation).
func (r *Repository) Annuler(id uint) error {
	return r.DB.Model(&Reprise{}).
		Where("id = ?", id).
		Update("statut", StatutAnnulee).Error
}
