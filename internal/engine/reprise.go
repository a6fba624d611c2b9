package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/reprise"
	"github.com/assurneo/api-commission/internal/statut"
)

// CommandeReprise porte le déclenchement d'une reprise sur une commission.
type CommandeReprise struct {
	OrganisationID uint
	CommissionID   uint
	TypeReprise    string
	DateEvenement  time.Time
	Motif          string
	Acteur         string
}

// DeclencherReprise crée une reprise en attente sur une commission existante.
// La fenêtre de reprise court de la création de la commission jusqu'à
// création + durée du barème ; un évènement au-delà est rejeté. Le montant
// repris s'applique au net à payer courant de la commission, pas au brut
// d'origine : des reprises successives se composent donc entre elles. La
// reprise sera consommée par le bordereau de sa période d'application, fixée
// au mois calendaire suivant l'évènement.
func (e *Engine) DeclencherReprise(cmd CommandeReprise) (*reprise.Reprise, error) {
	switch cmd.TypeReprise {
	case reprise.TypeResiliation, reprise.TypeImpaye, reprise.TypeAnnulation, reprise.TypeRegularisation:
	default:
		return nil, fmt.Errorf("type de reprise inconnu %q", cmd.TypeReprise)
	}

	maintenant := e.horloge()
	if cmd.DateEvenement.IsZero() {
		cmd.DateEvenement = maintenant
	}

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	c, err := e.Commissions.WithDB(tx).FindByID(cmd.CommissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("commission %d : %w", cmd.CommissionID, ErrIntrouvable)
		}
		return nil, err
	}
	if c.OrganisationID != cmd.OrganisationID {
		return nil, fmt.Errorf("commission %d : %w", cmd.CommissionID, ErrIntrouvable)
	}

	b, err := e.Baremes.WithDB(tx).FindByID(c.BaremeID)
	if err != nil {
		return nil, fmt.Errorf("barème %d : %w", c.BaremeID, err)
	}

	dateLimite := c.DateCreation.AddDate(0, b.DureeReprisesMois, 0)
	if cmd.DateEvenement.After(dateLimite) {
		return nil, fmt.Errorf("évènement du %s, limite au %s : %w",
			cmd.DateEvenement.Format("2006-01-02"), dateLimite.Format("2006-01-02"), ErrFenetreRepriseExpiree)
	}

	montantOriginal := c.MontantNetAPayer
	montantReprise := montantOriginal.Mul(b.TauxReprise).Div(cent).Round(2)

	rep := &reprise.Reprise{
		OrganisationID:        cmd.OrganisationID,
		CommissionOriginaleID: c.ID,
		ContratID:             c.ContratID,
		ApporteurID:           c.ApporteurID,
		Reference:             nouvelleReference("REP", maintenant),
		TypeReprise:           cmd.TypeReprise,
		MontantReprise:        montantReprise,
		TauxReprise:           b.TauxReprise,
		MontantOriginal:       montantOriginal,
		PeriodeOrigine:        c.Periode,
		PeriodeApplication:    PeriodeSuivante(maintenant),
		DateEvenement:         cmd.DateEvenement,
		DateLimite:            dateLimite,
		Statut:                reprise.StatutEnAttente,
		Motif:                 cmd.Motif,
	}
	if err := e.Reprises.WithDB(tx).Create(rep); err != nil {
		return nil, err
	}

	avant := *c
	if err := e.Commissions.WithDB(tx).AjouterReprise(c, montantReprise); err != nil {
		return nil, err
	}
	statutReprise, err := e.Statuts.WithDB(tx).FindByCode(statut.CodeReprise)
	if err != nil {
		return nil, fmt.Errorf("référentiel des statuts non initialisé : %w", err)
	}
	if err := e.Commissions.WithDB(tx).UpdateStatut(c.ID, statutReprise.ID); err != nil {
		return nil, err
	}

	rec := e.Audit.WithDB(tx)
	rec.Enregistrer(audit.Entree{
		OrganisationID: cmd.OrganisationID,
		Scope:          audit.ScopeReprise,
		Action:         audit.ActionRepriseCreee,
		RefID:          &rep.ID,
		Apres:          rep,
		Acteur:         cmd.Acteur,
		Motif:          cmd.Motif,
		BaremeID:       &b.ID,
		BaremeVersion:  b.Version,
		ContratID:      &c.ContratID,
		ApporteurID:    &c.ApporteurID,
		Periode:        rep.PeriodeApplication,
		MontantCalcule: &montantReprise,
	})
	rec.Enregistrer(audit.Entree{
		OrganisationID: cmd.OrganisationID,
		Scope:          audit.ScopeCommission,
		Action:         audit.ActionCommissionReprise,
		RefID:          &c.ID,
		Avant:          avant,
		Apres:          c,
		Acteur:         cmd.Acteur,
		Motif:          cmd.Motif,
		ContratID:      &c.ContratID,
		ApporteurID:    &c.ApporteurID,
		Periode:        c.Periode,
		MontantCalcule: &montantReprise,
	})

	if cmd.TypeReprise == reprise.TypeImpaye || cmd.TypeReprise == reprise.TypeResiliation {
		suspendues, err := e.Recurrences.WithDB(tx).Suspendre(c.ContratID)
		if err != nil {
			return nil, err
		}
		if suspendues > 0 {
			rec.Enregistrer(audit.Entree{
				OrganisationID: cmd.OrganisationID,
				Scope:          audit.ScopeRecurrence,
				Action:         audit.ActionRecurrenceSuspendue,
				Metadata: map[string]interface{}{
					"contratId":  c.ContratID,
					"suspendues": suspendues,
					"repriseId":  rep.ID,
				},
				Acteur:      cmd.Acteur,
				ContratID:   &c.ContratID,
				ApporteurID: &c.ApporteurID,
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.Logger.Info("reprise déclenchée",
		zap.String("reference", rep.Reference),
		zap.String("type", cmd.TypeReprise),
		zap.String("montant", montantReprise.String()),
		zap.String("periodeApplication", rep.PeriodeApplication))
	return rep, nil
}

// RegulariserReprise annule une reprise encore en attente : la commission est
// recréditée du montant repris et les récurrences suspendues du contrat sont
// réactivées. Une reprise déjà consommée par un bordereau est définitive.
func (e *Engine) RegulariserReprise(organisationID, repriseID uint, motif, acteur string) (*reprise.Reprise, error) {
	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	rep, err := e.Reprises.WithDB(tx).FindByID(repriseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reprise %d : %w", repriseID, ErrIntrouvable)
		}
		return nil, err
	}
	if rep.OrganisationID != organisationID {
		return nil, fmt.Errorf("reprise %d : %w", repriseID, ErrIntrouvable)
	}
	if rep.Statut != reprise.StatutEnAttente {
		return nil, fmt.Errorf("reprise %d en statut %q : %w", repriseID, rep.Statut, ErrRepriseNonRegularisable)
	}

	avant := *rep
	if err := e.Reprises.WithDB(tx).Annuler(rep.ID); err != nil {
		return nil, err
	}
	rep.Statut = reprise.StatutAnnulee

	c, err := e.Commissions.WithDB(tx).FindByID(rep.CommissionOriginaleID)
	if err != nil {
		return nil, err
	}
	if err := e.Commissions.WithDB(tx).AjouterReprise(c, rep.MontantReprise.Neg()); err != nil {
		return nil, err
	}
	if c.MontantReprises.IsZero() {
		statutEnAttente, err := e.Statuts.WithDB(tx).FindByCode(statut.CodeEnAttente)
		if err != nil {
			return nil, fmt.Errorf("référentiel des statuts non initialisé : %w", err)
		}
		if err := e.Commissions.WithDB(tx).UpdateStatut(c.ID, statutEnAttente.ID); err != nil {
			return nil, err
		}
	}

	reactivees, err := e.Recurrences.WithDB(tx).Reprendre(rep.ContratID)
	if err != nil {
		return nil, err
	}

	rec := e.Audit.WithDB(tx)
	rec.Enregistrer(audit.Entree{
		OrganisationID: organisationID,
		Scope:          audit.ScopeReprise,
		Action:         audit.ActionRepriseRegularisee,
		RefID:          &rep.ID,
		Avant:          avant,
		Apres:          rep,
		Acteur:         acteur,
		Motif:          motif,
		ContratID:      &rep.ContratID,
		ApporteurID:    &rep.ApporteurID,
		Periode:        rep.PeriodeApplication,
		MontantCalcule: &rep.MontantReprise,
	})
	if reactivees > 0 {
		rec.Enregistrer(audit.Entree{
			OrganisationID: organisationID,
			Scope:          audit.ScopeRecurrence,
			Action:         audit.ActionRecurrenceReactivee,
			Metadata: map[string]interface{}{
				"contratId":  rep.ContratID,
				"reactivees": reactivees,
				"repriseId":  rep.ID,
			},
			Acteur:      acteur,
			ContratID:   &rep.ContratID,
			ApporteurID: &rep.ApporteurID,
		})
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.Logger.Info("reprise régularisée",
		zap.String("reference", rep.Reference),
		zap.Int64("recurrencesReactivees", reactivees))
	return rep, nil
}
