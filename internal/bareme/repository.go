package bareme

import (
	"time"

	"gorm.io/gorm"
)

// Criteres porte le contexte de résolution d'un barème applicable.
// Chaque champ vide est ignoré côté requête ; côté barème, un filtre nul
// matche n'importe quelle valeur.
type Criteres struct {
	TypeProduit        string
	ProfilRemuneration string
	SocieteID          *uint
	CanalVente         string
	Date               time.Time
}

// Repository encapsule l'accès aux données des barèmes.
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

// Create insère un nouveau barème.
func (r *Repository) Create(b *Bareme) error {
	return r.DB.Create(b).Error
}

// FindByID retourne un barème avec ses paliers.
func (r *Repository) FindByID(id uint) (*Bareme, error) {
	var b Bareme
	if err := r.DB.Preload("Paliers").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOrganisation retourne les barèmes d'une organisation,
// éventuellement restreints aux actifs.
func (r *Repository) ListByOrganisation(orgID uint, actifsSeulement bool) ([]Bareme, error) {
	q := r.DB.Preload("Paliers").Where("organisation_id = ?", orgID)
	if actifsSeulement {
		q = q.Where("actif = ?", true)
	}
	var list []Bareme
	err := q.Order("version DESC").Find(&list).Error
	return list, err
}

// FindApplicable résout l'unique barème applicable au contexte donné.
// Ne retiennent que les barèmes actifs, en vigueur à la date demandée et
// dont chaque filtre renseigné matche le critère correspondant. Parmi les
// candidats, le plus spécifique (plus grand nombre de filtres non nuls)
// l'emporte ; à spécificité égale, la version la plus haute.
// Retourne gorm.ErrRecordNotFound si aucun candidat ne matche.
func (r *Repository) FindApplicable(orgID uint, c Criteres) (*Bareme, error) {
	at := c.Date
	if at.IsZero() {
		at = time.Now()
	}

	q := r.DB.Preload("Paliers").
		Where("organisation_id = ?", orgID).
		Where("actif = ?", true).
		Where("date_effet <= ?", at).
		Where("date_fin IS NULL OR date_fin >= ?", at).
		Where("type_produit IS NULL OR type_produit = ?", c.TypeProduit).
		Where("profil_remuneration IS NULL OR profil_remuneration = ?", c.ProfilRemuneration).
		Where("canal_vente IS NULL OR canal_vente = ?", c.CanalVente)
	if c.SocieteID != nil {
		q = q.Where("societe_id IS NULL OR societe_id = ?", *c.SocieteID)
	} else {
		q = q.Where("societe_id IS NULL")
	}

	var candidats []Bareme
	if err := q.Find(&candidats).Error; err != nil {
		return nil, err
	}
	if len(candidats) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	meilleur := &candidats[0]
	meilleurScore := specificite(meilleur)
	for i := 1; i < len(candidats); i++ {
		b := &candidats[i]
		score := specificite(b)
		if score > meilleurScore || (score == meilleurScore && b.Version > meilleur.Version) {
			meilleur = b
			meilleurScore = score
		}
	}
	return meilleur, nil
}

// Update sauvegarde toutes les modifications d'un barème existant.
func (r *Repository) Update(b *Bareme) error {
	return r.DB.Save(b).Error
}

// Desactiver passe un barème en inactif sans le supprimer.
func (r *Repository) Desactiver(id uint) error {
	return r.DB.Model(&Bareme{}).Where("id = ?", id).Update("actif", false).Error
}

// specificite compte les filtres de périmètre renseignés sur le barème.
func specificite(b *Bareme) int {
	n := 0
	if b.TypeProduit != nil {
		n++
	}
	if b.ProfilRemuneration != nil {
		n++
	}
	if b.SocieteID != nil {
		n++
	}
	if b.CanalVente != nil {
		n++
	}
	return n
}
