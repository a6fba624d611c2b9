package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/bareme"
	"github.com/assurneo/api-commission/internal/commission"
	"github.com/assurneo/api-commission/internal/palier"
	"github.com/assurneo/api-commission/internal/recurrence"
	"github.com/assurneo/api-commission/internal/statut"
)

var cent = decimal.NewFromInt(100)

// CommandeCalcul porte le contexte d'un calcul de commission. Les critères de
// périmètre vides sont complétés depuis le contrat.
type CommandeCalcul struct {
	OrganisationID     uint
	ApporteurID        uint
	ContratID          uint
	TypeProduit        string
	ProfilRemuneration string
	SocieteID          *uint
	CanalVente         string
	MontantBase        decimal.Decimal
	Periode            string
	EcheanceRef        string
	DateEncaissement   *time.Time
	Acteur             string
}

// ResultatCalcul restitue la commission créée et le détail du calcul.
type ResultatCalcul struct {
	Commission    *commission.Commission            `json:"commission"`
	Bareme        *bareme.Bareme                    `json:"bareme"`
	PrimesPaliers []palier.PrimeApplicable          `json:"primesPaliers"`
	Recurrence    *recurrence.CommissionRecurrente  `json:"recurrence,omitempty"`
	MontantTotal  decimal.Decimal                   `json:"montantTotal"`
}

// CalculerCommission résout le barème applicable au contexte de vente, calcule
// le montant brut selon le mode du barème et persiste la commission en attente.
// L'arrondi au centime (demi-supérieur) est appliqué après chaque étape
// intermédiaire, pas seulement sur le total. Si le barème porte une récurrence
// et qu'une échéance encaissée est fournie, la première mensualité est générée
// dans la même transaction.
func (e *Engine) CalculerCommission(cmd CommandeCalcul) (*ResultatCalcul, error) {
	maintenant := e.horloge()

	ctr, err := e.Contrats.FindByID(cmd.ContratID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contrat %d : %w", cmd.ContratID, ErrIntrouvable)
		}
		return nil, err
	}
	if ctr.OrganisationID != cmd.OrganisationID {
		return nil, fmt.Errorf("contrat %d : %w", cmd.ContratID, ErrIntrouvable)
	}

	if cmd.ApporteurID == 0 {
		cmd.ApporteurID = ctr.ApporteurID
	}
	if cmd.TypeProduit == "" {
		cmd.TypeProduit = ctr.TypeProduit
	}
	if cmd.CanalVente == "" {
		cmd.CanalVente = ctr.CanalVente
	}
	if cmd.SocieteID == nil {
		cmd.SocieteID = ctr.SocieteID
	}
	if cmd.Periode == "" {
		cmd.Periode = Periode(maintenant)
	}
	base := cmd.MontantBase
	if base.IsZero() {
		base = ctr.CotisationMensuelle
	}

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	b, err := e.Baremes.WithDB(tx).FindApplicable(cmd.OrganisationID, bareme.Criteres{
		TypeProduit:        cmd.TypeProduit,
		ProfilRemuneration: cmd.ProfilRemuneration,
		SocieteID:          cmd.SocieteID,
		CanalVente:         cmd.CanalVente,
		Date:               maintenant,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contrat %d, produit %q : %w", cmd.ContratID, cmd.TypeProduit, ErrBaremeIntrouvable)
		}
		return nil, err
	}

	brut := decimal.Zero
	var tauxApplique *decimal.Decimal
	var primes []palier.PrimeApplicable

	switch b.TypeCalcul {
	case bareme.TypeCalculFixe:
		if b.MontantFixe != nil {
			brut = b.MontantFixe.Round(2)
		}
	case bareme.TypeCalculPourcentage:
		if b.TauxPourcentage != nil {
			brut = base.Mul(*b.TauxPourcentage).Div(cent).Round(2)
			tauxApplique = b.TauxPourcentage
		}
	case bareme.TypeCalculPalier, bareme.TypeCalculMixte:
		if b.TauxPourcentage != nil {
			brut = base.Mul(*b.TauxPourcentage).Div(cent).Round(2)
			tauxApplique = b.TauxPourcentage
		}
		if b.TypeCalcul == bareme.TypeCalculMixte && b.MontantFixe != nil {
			brut = brut.Add(b.MontantFixe.Round(2)).Round(2)
		}
		primes = palier.Evaluer(b.Paliers, base)
	default:
		return nil, fmt.Errorf("mode de calcul inconnu %q sur le barème %d", b.TypeCalcul, b.ID)
	}

	montantPrimes := decimal.Zero
	for _, p := range primes {
		montantPrimes = montantPrimes.Add(p.Montant).Round(2)
	}
	total := brut.Add(montantPrimes).Round(2)

	statutEnAttente, err := e.Statuts.WithDB(tx).FindByCode(statut.CodeEnAttente)
	if err != nil {
		return nil, fmt.Errorf("référentiel des statuts non initialisé : %w", err)
	}

	c := &commission.Commission{
		OrganisationID:   cmd.OrganisationID,
		Reference:        nouvelleReference("COM", maintenant),
		ApporteurID:      cmd.ApporteurID,
		ContratID:        ctr.ID,
		ProduitID:        ctr.ProduitID,
		TypeProduit:      cmd.TypeProduit,
		BaseCalcul:       b.BaseCalcul,
		BaremeID:         b.ID,
		BaremeVersion:    b.Version,
		TypeCalcul:       b.TypeCalcul,
		TauxApplique:     tauxApplique,
		MontantBase:      base.Round(2),
		MontantBrut:      total,
		MontantNetAPayer: total,
		StatutID:         statutEnAttente.ID,
		Periode:          cmd.Periode,
		DateCreation:     maintenant,
	}
	if err := e.Commissions.WithDB(tx).Create(c); err != nil {
		return nil, err
	}

	e.Audit.WithDB(tx).Enregistrer(audit.Entree{
		OrganisationID: cmd.OrganisationID,
		Scope:          audit.ScopeCommission,
		Action:         audit.ActionCommissionCalculee,
		RefID:          &c.ID,
		Apres:          c,
		Metadata: map[string]interface{}{
			"typeCalcul":    b.TypeCalcul,
			"montantBase":   base.String(),
			"composantBrut": brut.String(),
			"primesPaliers": primes,
		},
		Acteur:         cmd.Acteur,
		BaremeID:       &b.ID,
		BaremeVersion:  b.Version,
		ContratID:      &ctr.ID,
		ApporteurID:    &cmd.ApporteurID,
		Periode:        cmd.Periode,
		MontantCalcule: &total,
	})

	var rec *recurrence.CommissionRecurrente
	if cmd.EcheanceRef != "" && cmd.DateEncaissement != nil {
		rec, _, err = e.genererRecurrence(tx, b, c, cmd.EcheanceRef, *cmd.DateEncaissement, cmd.Acteur)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.Logger.Info("commission calculée",
		zap.String("reference", c.Reference),
		zap.Uint("contratId", ctr.ID),
		zap.String("typeCalcul", b.TypeCalcul),
		zap.String("montant", total.String()))

	return &ResultatCalcul{
		Commission:    c,
		Bareme:        b,
		PrimesPaliers: primes,
		Recurrence:    rec,
		MontantTotal:  total,
	}, nil
}

// CommandeRecurrence porte la génération d'une mensualité pour une échéance
// encaissée d'un contrat.
type CommandeRecurrence struct {
	OrganisationID   uint
	CommissionID     uint
	EcheanceRef      string
	DateEncaissement time.Time
	Acteur           string
}

// GenererRecurrence génère la mensualité récurrente d'une échéance encaissée.
// Retourne (nil, false, nil) quand rien n'est à générer (doublon d'échéance,
// barème sans récurrence ou durée maximale atteinte) : aucun de ces cas n'est
// une erreur.
func (e *Engine) GenererRecurrence(cmd CommandeRecurrence) (*recurrence.CommissionRecurrente, bool, error) {
	c, err := e.Commissions.FindByID(cmd.CommissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("commission %d : %w", cmd.CommissionID, ErrIntrouvable)
		}
		return nil, false, err
	}
	if c.OrganisationID != cmd.OrganisationID {
		return nil, false, fmt.Errorf("commission %d : %w", cmd.CommissionID, ErrIntrouvable)
	}

	b, err := e.Baremes.FindByID(c.BaremeID)
	if err != nil {
		return nil, false, fmt.Errorf("barème %d : %w", c.BaremeID, err)
	}

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	defer tx.Rollback()

	rec, generee, err := e.genererRecurrence(tx, b, c, cmd.EcheanceRef, cmd.DateEncaissement, cmd.Acteur)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}
	return rec, generee, nil
}

func (e *Engine) genererRecurrence(tx *gorm.DB, b *bareme.Bareme, c *commission.Commission, echeanceRef string, dateEncaissement time.Time, acteur string) (*recurrence.CommissionRecurrente, bool, error) {
	if !b.RecurrenceActive || b.TauxRecurrence == nil {
		return nil, false, nil
	}

	repo := e.Recurrences.WithDB(tx)
	periode := Periode(dateEncaissement)

	existe, err := repo.ExistePourEcheance(c.OrganisationID, c.ContratID, echeanceRef, periode)
	if err != nil {
		return nil, false, err
	}
	if existe {
		e.Logger.Debug("échéance déjà générée, aucune action",
			zap.Uint("contratId", c.ContratID),
			zap.String("echeanceRef", echeanceRef),
			zap.String("periode", periode))
		return nil, false, nil
	}

	dernier, err := repo.DernierNumeroMois(c.OrganisationID, c.ContratID)
	if err != nil {
		return nil, false, err
	}
	numero := dernier + 1
	if b.DureeRecurrenceMois > 0 && numero > b.DureeRecurrenceMois {
		e.Logger.Info("durée de récurrence atteinte, génération arrêtée",
			zap.Uint("contratId", c.ContratID),
			zap.Int("numeroMois", numero),
			zap.Int("dureeMois", b.DureeRecurrenceMois))
		return nil, false, nil
	}

	montant := c.MontantBase.Mul(*b.TauxRecurrence).Div(cent).Round(2)
	rec := &recurrence.CommissionRecurrente{
		OrganisationID:       c.OrganisationID,
		CommissionInitialeID: c.ID,
		ContratID:            c.ContratID,
		EcheanceRef:          echeanceRef,
		ApporteurID:          c.ApporteurID,
		BaremeID:             b.ID,
		BaremeVersion:        b.Version,
		Periode:              periode,
		NumeroMois:           numero,
		MontantBase:          c.MontantBase,
		TauxRecurrence:       *b.TauxRecurrence,
		MontantCalcule:       montant,
		Statut:               recurrence.StatutActive,
		DateEncaissement:     &dateEncaissement,
	}
	if err := repo.Create(rec); err != nil {
		return nil, false, err
	}

	e.Audit.WithDB(tx).Enregistrer(audit.Entree{
		OrganisationID: c.OrganisationID,
		Scope:          audit.ScopeRecurrence,
		Action:         audit.ActionRecurrenceGeneree,
		RefID:          &rec.ID,
		Apres:          rec,
		Metadata: map[string]interface{}{
			"echeanceRef": echeanceRef,
			"numeroMois":  numero,
		},
		Acteur:         acteur,
		BaremeID:       &b.ID,
		BaremeVersion:  b.Version,
		ContratID:      &c.ContratID,
		ApporteurID:    &c.ApporteurID,
		Periode:        periode,
		MontantCalcule: &montant,
	})
	return rec, true, nil
}
