package recurrence

import (
	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des commissions récurrentes.
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

// Create insère une nouvelle récurrence.
func (r *Repository) Create(rec *CommissionRecurrente) error {
	return r.DB.Create(rec).Error
}

// FindByID retourne une récurrence par son ID.
func (r *Repository) FindByID(id uint) (*CommissionRecurrente, error) {
	var rec CommissionRecurrente
	if err := r.DB.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ExistePourEcheance indique si une récurrence existe déjà pour le triplet
// (contrat, échéance, période). C'est la garde d'idempotence du générateur.
func (r *Repository) ExistePourEcheance(orgID, contratID uint, echeanceRef, periode string) (bool, error) {
	var n int64
	err := r.DB.Model(&CommissionRecurrente{}).
		Where("organisation_id = ? AND contrat_id = ? AND echeance_ref = ? AND periode = ?",
			orgID, contratID, echeanceRef, periode).
		Count(&n).Error
	return n > 0, err
}

// DernierNumeroMois retourne le plus grand numéro de mois déjà généré pour
// un contrat, 0 si aucun.
func (r *Repository) DernierNumeroMois(orgID, contratID uint) (int, error) {
	var dernier *int
	err := r.DB.Model(&CommissionRecurrente{}).
		Where("organisation_id = ? AND contrat_id = ?", orgID, contratID).
		Select("MAX(numero_mois)").
		Scan(&dernier).Error
	if err != nil {
		return 0, err
	}
	if dernier == nil {
		return 0, nil
	}
	return *dernier, nil
}

// ListNonIncluses retourne les récurrences actives d'une période pas encore
// rattachées à un bordereau, triées par contrat puis numéro de mois.
func (r *Repository) ListNonIncluses(orgID, apporteurID uint, periode string) ([]CommissionRecurrente, error) {
	var list []CommissionRecurrente
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ? AND periode = ?", orgID, apporteurID, periode).
		Where("statut = ? AND bordereau_id IS NULL", StatutActive).
		Order("contrat_id ASC, numero_mois ASC").
		Find(&list).Error
	return list, err
}

// ListByContrat retourne toutes les récurrences d'un contrat.
func (r *Repository) ListByContrat(orgID, contratID uint) ([]CommissionRecurrente, error) {
	var list []CommissionRecurrente
	err := r.DB.
		Where("organisation_id = ? AND contrat_id = ?", orgID, contratID).
		Order("numero_mois ASC").
		Find(&list).Error
	return list, err
}

// MarquerIncluses rattache un lot de récurrences au bordereau qui les paie,
// afin qu'un rebuild d'un autre bordereau ne puisse pas les recompter.
func (r *Repository) MarquerIncluses(ids []uint, bordereauID uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&CommissionRecurrente{}).
		Where("id IN ?", ids).
		Update("bordereau_id", bordereauID).Error
}

// DetacherDuBordereau libère les récurrences d'un bordereau en cours de
// rebuild pour qu'elles soient re-sélectionnées par la régénération.
func (r *Repository) DetacherDuBordereau(bordereauID uint) error {
	return r.DB.Model(&CommissionRecurrente{}).
		Where("bordereau_id = ?", bordereauID).
		Update("bordereau_id", nil).Error
}

// Suspendre passe en suspendu toutes les récurrences actives non incluses
// d'un contrat. Opération de lot, déclenchée par une reprise impayé ou
// résiliation.
func (r *Repository) Suspendre(contratID uint) (int64, error) {
	res := r.DB.Model(&CommissionRecurrente{}).
		Where("contrat_id = ? AND statut = ? AND bordereau_id IS NULL", contratID, StatutActive).
		Update("statut", StatutSuspendue)
	return res.RowsAffected, res.Error
}

// Reprendre réactive toutes les récurrences suspendues non incluses d'un
// contrat (régularisation d'une reprise).
func (r *Repository) Reprendre(contratID uint) (int64, error) {
	res := r.DB.Model(&CommissionRecurrente{}).
		Where("contrat_id = ? AND statut = ? AND bordereau_id IS NULL", contratID, StatutSuspendue).
		Update("statut", StatutActive)
	return res.RowsAffected, res.Error
}

// Terminer clôt définitivement les récurrences encore ouvertes d'un contrat.
func (r *Repository) Terminer(contratID uint) (int64, error) {
	res := r.DB.Model(&CommissionRecurrente{}).
		Where("contrat_id = ? AND statut IN ? AND bordereau_id IS NULL",
			contratID, []string{StatutActive, StatutSuspendue}).
		Update("statut", StatutTerminee)
	return res.RowsAffected, res.Error
}

// Annuler est terminal : la récurrence ne sera jamais payée.
func (r *Repository) Annuler(id uint) error {
	return r.DB.Model(&CommissionRecurrente{}).
		Where("id = ?", id).
		Update("statut", StatutAnnulee).Error
}
