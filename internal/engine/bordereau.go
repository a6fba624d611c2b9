package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/bordereau"
	"github.com/assurneo/api-commission/internal/lignebordereau"
	"github.com/assurneo/api-commission/internal/report"
	"github.com/assurneo/api-commission/internal/statut"
)

// CommandeBordereau porte la génération du bordereau d'un apporteur pour une
// période donnée.
type CommandeBordereau struct {
	OrganisationID uint
	ApporteurID    uint
	Periode        string
	Acteur         string
}

// ResumeBordereau agrège les compteurs et totaux restitués après génération.
type ResumeBordereau struct {
	NbCommissions  int                   `json:"nbCommissions"`
	NbRecurrences  int                   `json:"nbRecurrences"`
	NbReprises     int                   `json:"nbReprises"`
	NbReports      int                   `json:"nbReports"`
	TotalBrut      decimal.Decimal       `json:"totalBrut"`
	TotalReprises  decimal.Decimal       `json:"totalReprises"`
	TotalReports   decimal.Decimal       `json:"totalReports"`
	TotalNetAPayer decimal.Decimal       `json:"totalNetAPayer"`
	NouveauReport  *report.ReportNegatif `json:"nouveauReport,omitempty"`
}

// ResultatBordereau restitue le bordereau généré avec ses lignes.
type ResultatBordereau struct {
	Bordereau *bordereau.Bordereau              `json:"bordereau"`
	Lignes    []*lignebordereau.LigneBordereau  `json:"lignes"`
	Resume    ResumeBordereau                   `json:"resume"`
	Regenere  bool                              `json:"regenere"`
}

// GenererBordereau construit ou reconstruit le bordereau du triplet
// (organisation, apporteur, période). L'agrégation est déterministe et
// rejouable : un brouillon existant voit ses lignes supprimées, ses reprises
// et récurrences détachées et ses imputations de reports recréditées avant le
// recalcul complet. Un bordereau sorti du brouillon n'est plus régénérable.
//
// Les écritures par triplet sont sérialisées par un verrou applicatif en plus
// de la transaction : la reconstruction lit puis réécrit l'ensemble des
// lignes, ce qui n'est pas rejouable sous concurrence.
func (e *Engine) GenererBordereau(cmd CommandeBordereau) (*ResultatBordereau, error) {
	if _, err := time.Parse("2006-01", cmd.Periode); err != nil {
		return nil, fmt.Errorf("période invalide %q : %w", cmd.Periode, err)
	}
	// Les reprises dont la période d'application est atteinte par le cycle de
	// paie de cette période (mois suivant inclus) sont consommées ici.
	periodeMax, err := periodeSuivanteDe(cmd.Periode)
	if err != nil {
		return nil, err
	}
	maintenant := e.horloge()

	defer e.verrous.verrouiller(cmd.OrganisationID, cmd.ApporteurID, cmd.Periode)()

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	bordereaux := e.Bordereaux.WithDB(tx)
	lignes := e.Lignes.WithDB(tx)
	reprises := e.Reprises.WithDB(tx)
	recurrences := e.Recurrences.WithDB(tx)
	reports := e.Reports.WithDB(tx)
	rec := e.Audit.WithDB(tx)

	regenere := false
	brd, err := bordereaux.FindByApporteurEtPeriode(cmd.OrganisationID, cmd.ApporteurID, cmd.Periode)
	switch {
	case err == nil:
		if brd.Statut != bordereau.StatutBrouillon {
			return nil, fmt.Errorf("bordereau %s en statut %q : %w", brd.Reference, brd.Statut, ErrBordereauNonBrouillon)
		}
		regenere = true
		if err := e.restaurerAvantRegeneration(tx, brd); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		brd = &bordereau.Bordereau{
			OrganisationID: cmd.OrganisationID,
			Reference:      nouvelleReference("BRD", maintenant),
			Periode:        cmd.Periode,
			ApporteurID:    cmd.ApporteurID,
			Statut:         bordereau.StatutBrouillon,
			CreePar:        cmd.Acteur,
		}
		if err := bordereaux.Create(brd); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	contrats := e.Contrats.WithDB(tx)
	refsContrats := make(map[uint]string)
	refContrat := func(contratID uint) string {
		if ref, ok := refsContrats[contratID]; ok {
			return ref
		}
		ref := ""
		if c, err := contrats.FindByID(contratID); err == nil {
			ref = c.Reference
		}
		refsContrats[contratID] = ref
		return ref
	}

	var toutes []*lignebordereau.LigneBordereau
	ordre := 0
	resume := ResumeBordereau{
		TotalBrut:      decimal.Zero,
		TotalReprises:  decimal.Zero,
		TotalReports:   decimal.Zero,
		TotalNetAPayer: decimal.Zero,
	}

	commissions, err := e.Commissions.WithDB(tx).ListByApporteurEtPeriode(cmd.OrganisationID, cmd.ApporteurID, cmd.Periode)
	if err != nil {
		return nil, err
	}
	for i := range commissions {
		c := &commissions[i]
		ordre++
		baremeID := c.BaremeID
		toutes = append(toutes, &lignebordereau.LigneBordereau{
			OrganisationID:   cmd.OrganisationID,
			BordereauID:      brd.ID,
			CommissionID:     &c.ID,
			TypeLigne:        lignebordereau.TypeCommission,
			ContratID:        c.ContratID,
			ContratReference: refContrat(c.ContratID),
			MontantBrut:      c.MontantBrut,
			MontantNet:       c.MontantNetAPayer,
			BaseCalcul:       c.BaseCalcul,
			TauxApplique:     c.TauxApplique,
			BaremeID:         &baremeID,
			Ordre:            ordre,
		})
		resume.TotalBrut = resume.TotalBrut.Add(c.MontantBrut).Round(2)
		resume.NbCommissions++
	}

	mensualites, err := recurrences.ListNonIncluses(cmd.OrganisationID, cmd.ApporteurID, cmd.Periode)
	if err != nil {
		return nil, err
	}
	var idsMensualites []uint
	for i := range mensualites {
		m := &mensualites[i]
		ordre++
		baremeID := m.BaremeID
		taux := m.TauxRecurrence
		toutes = append(toutes, &lignebordereau.LigneBordereau{
			OrganisationID:   cmd.OrganisationID,
			BordereauID:      brd.ID,
			RecurrenceID:     &m.ID,
			TypeLigne:        lignebordereau.TypeRecurrence,
			ContratID:        m.ContratID,
			ContratReference: refContrat(m.ContratID),
			MontantBrut:      m.MontantCalcule,
			MontantNet:       m.MontantCalcule,
			TauxApplique:     &taux,
			BaremeID:         &baremeID,
			Ordre:            ordre,
		})
		resume.TotalBrut = resume.TotalBrut.Add(m.MontantCalcule).Round(2)
		resume.NbRecurrences++
		idsMensualites = append(idsMensualites, m.ID)
	}
	if err := recurrences.MarquerIncluses(idsMensualites, brd.ID); err != nil {
		return nil, err
	}

	enAttente, err := reprises.ListEnAttente(cmd.OrganisationID, cmd.ApporteurID, periodeMax)
	if err != nil {
		return nil, err
	}
	for i := range enAttente {
		r := &enAttente[i]
		if err := reprises.Appliquer(r.ID, brd.ID, maintenant); err != nil {
			return nil, err
		}
		ordre++
		taux := r.TauxReprise
		toutes = append(toutes, &lignebordereau.LigneBordereau{
			OrganisationID:   cmd.OrganisationID,
			BordereauID:      brd.ID,
			RepriseID:        &r.ID,
			TypeLigne:        lignebordereau.TypeReprise,
			ContratID:        r.ContratID,
			ContratReference: refContrat(r.ContratID),
			MontantReprise:   r.MontantReprise,
			MontantNet:       r.MontantReprise.Neg(),
			TauxApplique:     &taux,
			Ordre:            ordre,
		})
		resume.TotalReprises = resume.TotalReprises.Add(r.MontantReprise).Round(2)
		resume.NbReprises++

		rec.Enregistrer(audit.Entree{
			OrganisationID: cmd.OrganisationID,
			Scope:          audit.ScopeReprise,
			Action:         audit.ActionRepriseAppliquee,
			RefID:          &r.ID,
			Metadata: map[string]interface{}{
				"bordereauId": brd.ID,
			},
			Acteur:         cmd.Acteur,
			ContratID:      &r.ContratID,
			ApporteurID:    &cmd.ApporteurID,
			Periode:        cmd.Periode,
			MontantCalcule: &r.MontantReprise,
		})
	}

	netAvantReports := resume.TotalBrut.Sub(resume.TotalReprises).Round(2)

	residuel, consommes, err := reports.AppliquerSurMontant(cmd.OrganisationID, cmd.ApporteurID, netAvantReports, cmd.Periode, brd.ID)
	if err != nil {
		return nil, err
	}
	for _, cons := range consommes {
		ordre++
		reportID := cons.Report.ID
		toutes = append(toutes, &lignebordereau.LigneBordereau{
			OrganisationID: cmd.OrganisationID,
			BordereauID:    brd.ID,
			ReportID:       &reportID,
			TypeLigne:      lignebordereau.TypeReport,
			MontantReprise: cons.MontantApplique,
			MontantNet:     cons.MontantApplique.Neg(),
			Ordre:          ordre,
		})
		resume.TotalReports = resume.TotalReports.Add(cons.MontantApplique).Round(2)
		resume.NbReports++

		montant := cons.MontantApplique
		rec.Enregistrer(audit.Entree{
			OrganisationID: cmd.OrganisationID,
			Scope:          audit.ScopeReport,
			Action:         audit.ActionReportApplique,
			RefID:          &reportID,
			Metadata: map[string]interface{}{
				"bordereauId":    brd.ID,
				"montantRestant": cons.Report.MontantRestant.String(),
			},
			Acteur:         cmd.Acteur,
			ApporteurID:    &cmd.ApporteurID,
			Periode:        cmd.Periode,
			MontantCalcule: &montant,
		})
		if cons.Report.Statut == report.StatutApure {
			rec.Enregistrer(audit.Entree{
				OrganisationID: cmd.OrganisationID,
				Scope:          audit.ScopeReport,
				Action:         audit.ActionReportApure,
				RefID:          &reportID,
				Acteur:         cmd.Acteur,
				ApporteurID:    &cmd.ApporteurID,
				Periode:        cmd.Periode,
			})
		}
	}

	deficit := decimal.Zero
	if residuel.LessThan(decimal.Zero) {
		// Le solde reste négatif après imputation : l'excédent est porté sur
		// les périodes suivantes et le net payé est ramené à zéro.
		deficit = residuel.Neg().Round(2)
	}

	// Un brouillon régénéré peut déjà avoir engendré un report, lui-même
	// partiellement consommé par des bordereaux de périodes ultérieures. On
	// réaligne ce report sur le déficit recalculé plutôt que d'en recréer un.
	ajuste, err := reports.ReconcilierOrigine(brd.ID, deficit)
	if err != nil {
		return nil, err
	}
	switch {
	case ajuste != nil:
		resume.NouveauReport = ajuste
		rec.Enregistrer(audit.Entree{
			OrganisationID: cmd.OrganisationID,
			Scope:          audit.ScopeReport,
			Action:         audit.ActionReportAjuste,
			RefID:          &ajuste.ID,
			Apres:          ajuste,
			Metadata: map[string]interface{}{
				"bordereauId": brd.ID,
				"deficit":     deficit.String(),
			},
			Acteur:         cmd.Acteur,
			ApporteurID:    &cmd.ApporteurID,
			Periode:        cmd.Periode,
			MontantCalcule: &deficit,
		})
	case deficit.IsPositive():
		nouveau := &report.ReportNegatif{
			OrganisationID:     cmd.OrganisationID,
			ApporteurID:        cmd.ApporteurID,
			PeriodeOrigine:     cmd.Periode,
			MontantInitial:     deficit,
			MontantRestant:     deficit,
			Statut:             report.StatutEnCours,
			BordereauOrigineID: &brd.ID,
			Motif:              fmt.Sprintf("solde négatif du bordereau %s", brd.Reference),
		}
		if err := reports.Create(nouveau); err != nil {
			return nil, err
		}
		resume.NouveauReport = nouveau
		rec.Enregistrer(audit.Entree{
			OrganisationID: cmd.OrganisationID,
			Scope:          audit.ScopeReport,
			Action:         audit.ActionReportCree,
			RefID:          &nouveau.ID,
			Apres:          nouveau,
			Acteur:         cmd.Acteur,
			ApporteurID:    &cmd.ApporteurID,
			Periode:        cmd.Periode,
			MontantCalcule: &deficit,
		})
	}

	if deficit.IsPositive() {
		resume.TotalNetAPayer = decimal.Zero
	} else {
		resume.TotalNetAPayer = residuel.Round(2)
	}

	if err := lignes.CreateInBatch(toutes); err != nil {
		return nil, err
	}
	totaux := bordereau.Totaux{
		TotalBrut:      resume.TotalBrut,
		TotalReprises:  resume.TotalReprises,
		TotalReports:   resume.TotalReports,
		TotalNetAPayer: resume.TotalNetAPayer,
		NombreLignes:   len(toutes),
	}
	if err := bordereaux.UpdateTotaux(brd.ID, totaux); err != nil {
		return nil, err
	}
	brd.TotalBrut = totaux.TotalBrut
	brd.TotalReprises = totaux.TotalReprises
	brd.TotalReports = totaux.TotalReports
	brd.TotalNetAPayer = totaux.TotalNetAPayer
	brd.NombreLignes = totaux.NombreLignes

	action := audit.ActionBordereauCree
	if regenere {
		action = audit.ActionBordereauRegenere
	}
	rec.Enregistrer(audit.Entree{
		OrganisationID: cmd.OrganisationID,
		Scope:          audit.ScopeBordereau,
		Action:         action,
		RefID:          &brd.ID,
		Apres:          brd,
		Metadata: map[string]interface{}{
			"nbCommissions": resume.NbCommissions,
			"nbRecurrences": resume.NbRecurrences,
			"nbReprises":    resume.NbReprises,
			"nbReports":     resume.NbReports,
		},
		Acteur:         cmd.Acteur,
		ApporteurID:    &cmd.ApporteurID,
		Periode:        cmd.Periode,
		MontantCalcule: &brd.TotalNetAPayer,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.Logger.Info("bordereau généré",
		zap.String("reference", brd.Reference),
		zap.String("periode", cmd.Periode),
		zap.Bool("regenere", regenere),
		zap.Int("lignes", len(toutes)),
		zap.String("netAPayer", brd.TotalNetAPayer.String()))

	return &ResultatBordereau{
		Bordereau: brd,
		Lignes:    toutes,
		Resume:    resume,
		Regenere:  regenere,
	}, nil
}

// restaurerAvantRegeneration défait les effets de bord de la génération
// précédente d'un brouillon : imputations de reports recréditées, reprises
// remises en attente, récurrences détachées, lignes effacées. Le report que
// le brouillon avait lui-même engendré n'est pas touché ici : il est
// réconcilié en fin de recalcul, sa part déjà consommée restant acquise.
func (e *Engine) restaurerAvantRegeneration(tx *gorm.DB, brd *bordereau.Bordereau) error {
	lignes := e.Lignes.WithDB(tx)
	reports := e.Reports.WithDB(tx)

	existantes, err := lignes.ListByBordereau(brd.ID)
	if err != nil {
		return err
	}
	for i := range existantes {
		l := &existantes[i]
		if l.ReportID == nil {
			continue
		}
		if err := reports.Recrediter(*l.ReportID, l.MontantNet.Neg()); err != nil {
			return err
		}
	}
	if err := lignes.DeleteByBordereau(brd.ID); err != nil {
		return err
	}
	if err := e.Reprises.WithDB(tx).DetacherDuBordereau(brd.ID); err != nil {
		return err
	}
	return e.Recurrences.WithDB(tx).DetacherDuBordereau(brd.ID)
}

// ValiderBordereau fait passer un brouillon en validé et bascule ses
// commissions en attente de paiement.
func (e *Engine) ValiderBordereau(organisationID, bordereauID, validateurID uint, acteur string) (*bordereau.Bordereau, error) {
	return e.transitionBordereau(organisationID, bordereauID, acteur, audit.ActionBordereauValide,
		func(tx *gorm.DB, brd *bordereau.Bordereau) error {
			if err := e.Bordereaux.WithDB(tx).Valider(brd.ID, validateurID, e.horloge()); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("bordereau %s en statut %q : %w", brd.Reference, brd.Statut, ErrTransitionBordereau)
				}
				return err
			}
			brd.Statut = bordereau.StatutValide
			return e.basculerStatutCommissions(tx, brd.ID, statut.CodeEnAttentePaiement)
		})
}

// ExporterBordereau attache les artefacts d'export à un bordereau validé et
// marque ses commissions payées.
func (e *Engine) ExporterBordereau(organisationID, bordereauID uint, pdfURL, xlsURL, acteur string) (*bordereau.Bordereau, error) {
	return e.transitionBordereau(organisationID, bordereauID, acteur, audit.ActionBordereauExporte,
		func(tx *gorm.DB, brd *bordereau.Bordereau) error {
			if err := e.Bordereaux.WithDB(tx).Exporter(brd.ID, pdfURL, xlsURL, e.horloge()); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("bordereau %s en statut %q : %w", brd.Reference, brd.Statut, ErrTransitionBordereau)
				}
				return err
			}
			brd.Statut = bordereau.StatutExporte
			brd.FichierPdfURL = pdfURL
			brd.FichierXlsURL = xlsURL
			return e.basculerStatutCommissions(tx, brd.ID, statut.CodePayee)
		})
}

// ArchiverBordereau clôt un bordereau exporté.
func (e *Engine) ArchiverBordereau(organisationID, bordereauID uint, acteur string) (*bordereau.Bordereau, error) {
	return e.transitionBordereau(organisationID, bordereauID, acteur, audit.ActionBordereauArchive,
		func(tx *gorm.DB, brd *bordereau.Bordereau) error {
			if err := e.Bordereaux.WithDB(tx).Archiver(brd.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("bordereau %s en statut %q : %w", brd.Reference, brd.Statut, ErrTransitionBordereau)
				}
				return err
			}
			brd.Statut = bordereau.StatutArchive
			return nil
		})
}

func (e *Engine) transitionBordereau(organisationID, bordereauID uint, acteur, action string,
	appliquer func(tx *gorm.DB, brd *bordereau.Bordereau) error) (*bordereau.Bordereau, error) {

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	brd, err := e.Bordereaux.WithDB(tx).FindByID(bordereauID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bordereau %d : %w", bordereauID, ErrIntrouvable)
		}
		return nil, err
	}
	if brd.OrganisationID != organisationID {
		return nil, fmt.Errorf("bordereau %d : %w", bordereauID, ErrIntrouvable)
	}

	avant := *brd
	if err := appliquer(tx, brd); err != nil {
		return nil, err
	}

	e.Audit.WithDB(tx).Enregistrer(audit.Entree{
		OrganisationID: organisationID,
		Scope:          audit.ScopeBordereau,
		Action:         action,
		RefID:          &brd.ID,
		Avant:          avant,
		Apres:          brd,
		Acteur:         acteur,
		ApporteurID:    &brd.ApporteurID,
		Periode:        brd.Periode,
		MontantCalcule: &brd.TotalNetAPayer,
	})

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	e.Logger.Info("transition de bordereau",
		zap.String("reference", brd.Reference),
		zap.String("statut", brd.Statut))
	return brd, nil
}

// basculerStatutCommissions propage un changement de statut aux commissions
// portées par les lignes d'un bordereau.
func (e *Engine) basculerStatutCommissions(tx *gorm.DB, bordereauID uint, code string) error {
	s, err := e.Statuts.WithDB(tx).FindByCode(code)
	if err != nil {
		return fmt.Errorf("référentiel des statuts non initialisé : %w", err)
	}
	lignesBordereau, err := e.Lignes.WithDB(tx).ListByBordereau(bordereauID)
	if err != nil {
		return err
	}
	commissions := e.Commissions.WithDB(tx)
	for i := range lignesBordereau {
		l := &lignesBordereau[i]
		if l.CommissionID == nil {
			continue
		}
		if err := commissions.UpdateStatut(*l.CommissionID, s.ID); err != nil {
			return err
		}
	}
	return nil
}
