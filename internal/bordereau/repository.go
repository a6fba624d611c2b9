package bordereau

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totaux regroupe les agrégats recalculés lors d'une génération.
type Totaux struct {
	TotalBrut      decimal.Decimal
	TotalReprises  decimal.Decimal
	TotalReports   decimal.Decimal
	TotalNetAPayer decimal.Decimal
	NombreLignes   int
}

// Repository encapsule l'accès aux données des bordereaux.
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

// Create insère un nouveau bordereau.
func (r *Repository) Create(b *Bordereau) error {
	return r.DB.Create(b).Error
}

// FindByID retourne un bordereau par son ID.
func (r *Repository) FindByID(id uint) (*Bordereau, error) {
	var b Bordereau
	if err := r.DB.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByApporteurEtPeriode retourne l'unique bordereau du triplet
// (organisation, apporteur, période), ou gorm.ErrRecordNotFound.
func (r *Repository) FindByApporteurEtPeriode(orgID, apporteurID uint, periode string) (*Bordereau, error) {
	var b Bordereau
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ? AND periode = ?", orgID, apporteurID, periode).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOrganisation retourne les bordereaux avec filtres optionnels.
func (r *Repository) ListByOrganisation(orgID uint, apporteurID uint, periode, statut string) ([]Bordereau, error) {
	q := r.DB.Where("organisation_id = ?", orgID)
	if apporteurID != 0 {
		q = q.Where("apporteur_id = ?", apporteurID)
	}
	if periode != "" {
		q = q.Where("periode = ?", periode)
	}
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	var list []Bordereau
	err := q.Order("periode DESC, apporteur_id ASC").Find(&list).Error
	return list, err
}

// UpdateTotaux persiste les agrégats d'un bordereau après génération.
func (r *Repository) UpdateTotaux(id uint, t Totaux) error {
	return r.DB.Model(&Bordereau{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_brut":       t.TotalBrut,
		"total_reprises":   t.TotalReprises,
		"total_reports":    t.TotalReports,
		"total_net_a_payer": t.TotalNetAPayer,
		"nombre_lignes":    t.NombreLignes,
	}).Error
}

// Valider fait passer un brouillon en validé, en traçant qui et quand.
// gorm.ErrRecordNotFound si le bordereau n'est pas en brouillon.
func (r *Repository) Valider(id, validateurID uint, quand time.Time) error {
	res := r.DB.Model(&Bordereau{}).
		Where("id = ? AND statut = ?", id, StatutBrouillon).
		Updates(map[string]interface{}{
			"statut":          StatutValide,
			"date_validation": quand,
			"validateur_id":   validateurID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Exporter attache les artefacts d'export à un bordereau validé.
func (r *Repository) Exporter(id uint, pdfURL, xlsURL string, quand time.Time) error {
	res := r.DB.Model(&Bordereau{}).
		Where("id = ? AND statut = ?", id, StatutValide).
		Updates(map[string]interface{}{
			"statut":          StatutExporte,
			"date_export":     quand,
			"fichier_pdf_url": pdfURL,
			"fichier_xls_url": xlsURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Archiver clôt un bordereau exporté.
func (r *Repository) Archiver(id uint) error {
	res := r.DB.Model(&Bordereau{}).
		Where("id = ? AND statut = ?", id, StatutExporte).
		Update("statut", StatutArchive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
