package commission

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository encapsule l'accès aux données des commissions.
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

// Create insère une nouvelle commission.
func (r *Repository) Create(c *Commission) error {
	return r.DB.Create(c).Error
}

// FindByID retourne une commission par son ID.
func (r *Repository) FindByID(id uint) (*Commission, error) {
	var c Commission
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByApporteurEtPeriode retourne les commissions d'un apporteur pour une
// période, dans un ordre stable (date de création puis ID).
func (r *Repository) ListByApporteurEtPeriode(orgID, apporteurID uint, periode string) ([]Commission, error) {
	var list []Commission
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ? AND periode = ?", orgID, apporteurID, periode).
		Order("date_creation ASC, id ASC").
		Find(&list).Error
	return list, err
}

// ListByOrganisation retourne les commissions d'une organisation avec filtres
// optionnels sur l'apporteur et la période.
func (r *Repository) ListByOrganisation(orgID uint, apporteurID uint, periode string) ([]Commission, error) {
	q := r.DB.Where("organisation_id = ?", orgID)
	if apporteurID != 0 {
		q = q.Where("apporteur_id = ?", apporteurID)
	}
	if periode != "" {
		q = q.Where("periode = ?", periode)
	}
	var list []Commission
	err := q.Order("date_creation DESC").Find(&list).Error
	return list, err
}

// Update sauvegarde toutes les modifications d'une commission existante.
func (r *Repository) Update(c *Commission) error {
	return r.DB.Save(c).Error
}

// UpdateStatut change uniquement le statut d'une commission.
func (r *Repository) UpdateStatut(id uint, statutID uint) error {
	return r.DB.Model(&Commission{}).Where("id = ?", id).Update("statut_id", statutID).Error
}

// AjouterReprise débite une commission du montant repris et recalcule le net.
// Un montant négatif recrédite (régularisation).
func (r *Repository) AjouterReprise(c *Commission, montant decimal.Decimal) error {
	c.MontantReprises = c.MontantReprises.Add(montant).Round(2)
	c.MontantNetAPayer = c.MontantBrut.Sub(c.MontantReprises).Sub(c.MontantAcomptes).Round(2)
	return r.DB.Model(c).Updates(map[string]interface{}{
		"montant_reprises":    c.MontantReprises,
		"montant_net_a_payer": c.MontantNetAPayer,
	}).Error
}
