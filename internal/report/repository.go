package report

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportConsomme décrit la part d'un report absorbée par une imputation,
// pour la piste d'audit du bordereau.
type ReportConsomme struct {
	Report          *ReportNegatif
	MontantApplique decimal.Decimal
}

// Repository encapsule l'accès aux données des reports négatifs.
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

// Create insère un nouveau report négatif.
func (r *Repository) Create(rep *ReportNegatif) error {
	return r.DB.Create(rep).Error
}

// FindByID retourne un report par son ID.
func (r *Repository) FindByID(id uint) (*ReportNegatif, error) {
	var rep ReportNegatif
	if err := r.DB.First(&rep, id).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListEnCours retourne les reports ouverts d'un apporteur, du plus ancien au
// plus récent (FIFO sur la période d'origine).
func (r *Repository) ListEnCours(orgID, apporteurID uint) ([]ReportNegatif, error) {
	var list []ReportNegatif
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ? AND statut = ?", orgID, apporteurID, StatutEnCours).
		Order("periode_origine ASC, id ASC").
		Find(&list).Error
	return list, err
}

// ListByApporteur retourne tous les reports d'un apporteur, tous statuts.
func (r *Repository) ListByApporteur(orgID, apporteurID uint) ([]ReportNegatif, error) {
	var list []ReportNegatif
	err := r.DB.
		Where("organisation_id = ? AND apporteur_id = ?", orgID, apporteurID).
		Order("periode_origine ASC, id ASC").
		Find(&list).Error
	return list, err
}

// AppliquerSurMontant impute gloutonnement les reports ouverts d'un apporteur
// sur un montant disponible, dans l'ordre FIFO. Chaque report est débité de
// min(disponible, restant) ; un report soldé passe en apuré. Retourne le
// disponible résiduel et la liste des reports touchés avec leur part imputée.
// Un montant disponible négatif ou nul ne consomme rien. Le report issu du
// bordereau exclureOrigine est ignoré : lors d'une régénération, un bordereau
// ne consomme jamais son propre déficit (zéro hors régénération).
func (r *Repository) AppliquerSurMontant(orgID, apporteurID uint, disponible decimal.Decimal, periode string, exclureOrigine uint) (decimal.Decimal, []ReportConsomme, error) {
	if disponible.LessThanOrEqual(decimal.Zero) {
		return disponible, nil, nil
	}

	reports, err := r.ListEnCours(orgID, apporteurID)
	if err != nil {
		return disponible, nil, err
	}

	var consommes []ReportConsomme
	for i := range reports {
		if disponible.LessThanOrEqual(decimal.Zero) {
			break
		}
		rep := &reports[i]
		if rep.BordereauOrigineID != nil && *rep.BordereauOrigineID == exclureOrigine {
			continue
		}

		applique := decimal.Min(disponible, rep.MontantRestant)
		rep.MontantRestant = rep.MontantRestant.Sub(applique).Round(2)
		rep.DernierePeriodeApplication = periode
		if rep.MontantRestant.IsZero() {
			rep.Statut = StatutApure
		}
		if err := r.DB.Model(rep).Updates(map[string]interface{}{
			"montant_restant":              rep.MontantRestant,
			"statut":                       rep.Statut,
			"derniere_periode_application": rep.DernierePeriodeApplication,
		}).Error; err != nil {
			return disponible, consommes, err
		}

		disponible = disponible.Sub(applique).Round(2)
		consommes = append(consommes, ReportConsomme{Report: rep, MontantApplique: applique})
	}

	return disponible, consommes, nil
}

// Recrediter restitue à un report une part précédemment imputée, lors du
// rebuild du bordereau qui l'avait consommée. Le report redevient en cours.
func (r *Repository) Recrediter(id uint, montant decimal.Decimal) error {
	rep, err := r.FindByID(id)
	if err != nil {
		return err
	}
	restant := rep.MontantRestant.Add(montant).Round(2)
	if restant.GreaterThan(rep.MontantInitial) {
		restant = rep.MontantInitial
	}
	return r.DB.Model(rep).Updates(map[string]interface{}{
		"montant_restant": restant,
		"statut":          StatutEnCours,
	}).Error
}

// FindParOrigine retourne le report qu'un bordereau avait généré, ou
// gorm.ErrRecordNotFound s'il n'en a créé aucun.
func (r *Repository) FindParOrigine(bordereauID uint) (*ReportNegatif, error) {
	var rep ReportNegatif
	if err := r.DB.Where("bordereau_origine_id = ?", bordereauID).First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// ReconcilierOrigine réaligne le report issu d'un bordereau sur le déficit
// recalculé lors de sa régénération. La part déjà imputée par des bordereaux
// ultérieurs reste acquise : le restant devient max(déficit - consommé, 0),
// l'initial max(déficit, consommé). Un report jamais consommé dont le déficit
// a disparu est supprimé. Retourne le report résultant, nil s'il a été
// supprimé ou n'existait pas.
func (r *Repository) ReconcilierOrigine(bordereauID uint, deficit decimal.Decimal) (*ReportNegatif, error) {
	rep, err := r.FindParOrigine(bordereauID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	consomme := rep.MontantInitial.Sub(rep.MontantRestant).Round(2)
	if deficit.LessThanOrEqual(decimal.Zero) && consomme.IsZero() {
		return nil, r.DB.Delete(rep).Error
	}

	initial := decimal.Max(deficit, consomme)
	restant := initial.Sub(consomme).Round(2)
	statut := StatutEnCours
	if restant.IsZero() {
		statut = StatutApure
	}
	rep.MontantInitial = initial
	rep.MontantRestant = restant
	rep.Statut = statut
	return rep, r.DB.Model(rep).Updates(map[string]interface{}{
		"montant_initial": initial,
		"montant_restant": restant,
		"statut":          statut,
	}).Error
}

// Annuler passe un report en annulé, sans toucher au restant.
func (r *Repository) Annuler(id uint) error {
	return r.DB.Model(&ReportNegatif{}).
		Where("id = ?", id).
		Update("statut", StatutAnnule).Error
}
