package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/bareme"
	"github.com/assurneo/api-commission/internal/bordereau"
	"github.com/assurneo/api-commission/internal/commission"
	"github.com/assurneo/api-commission/internal/contrat"
	"github.com/assurneo/api-commission/internal/lignebordereau"
	"github.com/assurneo/api-commission/internal/palier"
	"github.com/assurneo/api-commission/internal/recurrence"
	"github.com/assurneo/api-commission/internal/report"
	"github.com/assurneo/api-commission/internal/reprise"
	"github.com/assurneo/api-commission/internal/statut"
)

// horlogeTest fige le temps des scénarios au 15 août 2026.
var horlogeTest = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func baseTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	for _, m := range []func(*gorm.DB) error{
		statut.Migrate, contrat.Migrate, bareme.Migrate, palier.Migrate,
		commission.Migrate, recurrence.Migrate, reprise.Migrate,
		report.Migrate, bordereau.Migrate, lignebordereau.Migrate, audit.Migrate,
	} {
		require.NoError(t, m(db))
	}
	require.NoError(t, statut.Seed(db))
	return db
}

func moteurTest(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := baseTest(t)
	e := New(db, zap.NewNop())
	e.horloge = func() time.Time { return horlogeTest }
	return e, db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func creerBareme(t *testing.T, db *gorm.DB, modifier func(*bareme.Bareme)) *bareme.Bareme {
	t.Helper()
	taux := dec("10")
	b := &bareme.Bareme{
		OrganisationID:    1,
		Code:              "BAR-TEST",
		Nom:               "Barème de test",
		TypeCalcul:        bareme.TypeCalculPourcentage,
		BaseCalcul:        bareme.BaseCotisationHT,
		TauxPourcentage:   &taux,
		DureeReprisesMois: 3,
		TauxReprise:       dec("100"),
		Version:           1,
		DateEffet:         horlogeTest.AddDate(-1, 0, 0),
		Actif:             true,
	}
	if modifier != nil {
		modifier(b)
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func creerContrat(t *testing.T, db *gorm.DB, apporteurID uint, cotisation string) *contrat.Contrat {
	t.Helper()
	c := &contrat.Contrat{
		OrganisationID:      1,
		ApporteurID:         apporteurID,
		Reference:           fmt.Sprintf("CTR-%s-%d", t.Name(), time.Now().UnixNano()),
		TypeProduit:         "sante",
		CotisationMensuelle: dec(cotisation),
		DateSouscription:    horlogeTest.AddDate(0, -1, 0),
		DateEffet:           horlogeTest.AddDate(0, -1, 0),
		Statut:              contrat.StatutEnCours,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func calculer(t *testing.T, e *Engine, contratID uint, base string) *ResultatCalcul {
	t.Helper()
	res, err := e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1,
		ContratID:      contratID,
		MontantBase:    dec(base),
		Acteur:         "tests",
	})
	require.NoError(t, err)
	return res
}

func TestCalculPourcentage(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")

	res := calculer(t, e, ctr.ID, "1000")

	require.Equal(t, "100.00", res.MontantTotal.StringFixed(2))
	require.Equal(t, "100.00", res.Commission.MontantBrut.StringFixed(2))
	require.Equal(t, "100.00", res.Commission.MontantNetAPayer.StringFixed(2))
	require.Equal(t, "2026-08", res.Commission.Periode)
	require.NotEmpty(t, res.Commission.Reference)

	s, err := statut.NewRepository(db).FindByID(res.Commission.StatutID)
	require.NoError(t, err)
	require.Equal(t, statut.CodeEnAttente, s.Code)

	logs, err := audit.NewRecorder(db, zap.NewNop()).FindByRef(1, audit.ScopeCommission, res.Commission.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, audit.ActionCommissionCalculee, logs[0].Action)
}

func TestCalculMixteAvecPalier(t *testing.T) {
	e, db := moteurTest(t)
	b := creerBareme(t, db, func(b *bareme.Bareme) {
		fixe := dec("50")
		b.TypeCalcul = bareme.TypeCalculMixte
		b.MontantFixe = &fixe
	})
	require.NoError(t, db.Create(&palier.Palier{
		BaremeID:     b.ID,
		Nom:          "Prime volume",
		SeuilMin:     dec("1000"),
		MontantPrime: dec("25"),
		Cumulable:    true,
		Actif:        true,
	}).Error)
	ctr := creerContrat(t, db, 7, "1000")

	res := calculer(t, e, ctr.ID, "1000")

	// 10 % de 1000 + 50 fixe + 25 de prime
	require.Equal(t, "175.00", res.MontantTotal.StringFixed(2))
	require.Len(t, res.PrimesPaliers, 1)
}

func TestCalculSansBareme(t *testing.T) {
	e, db := moteurTest(t)
	ctr := creerContrat(t, db, 7, "1000")

	_, err := e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1,
		ContratID:      ctr.ID,
		MontantBase:    dec("1000"),
	})
	require.ErrorIs(t, err, ErrBaremeIntrouvable)
}

func TestRepriseTotaleEtBordereauANeuf(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	rep, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1,
		CommissionID:   res.Commission.ID,
		TypeReprise:    reprise.TypeResiliation,
		DateEvenement:  horlogeTest,
		Motif:          "résiliation à effet immédiat",
		Acteur:         "tests",
	})
	require.NoError(t, err)
	// La reprise porte sur le net à payer, pas sur la base d'origine.
	require.Equal(t, "100.00", rep.MontantReprise.StringFixed(2))
	require.Equal(t, "2026-09", rep.PeriodeApplication)

	c, err := e.Commissions.FindByID(res.Commission.ID)
	require.NoError(t, err)
	require.Equal(t, "0.00", c.MontantNetAPayer.StringFixed(2))

	brd, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08", Acteur: "tests",
	})
	require.NoError(t, err)
	require.Equal(t, "100.00", brd.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, "100.00", brd.Resume.TotalReprises.StringFixed(2))
	require.Equal(t, "0.00", brd.Resume.TotalNetAPayer.StringFixed(2))
	require.Nil(t, brd.Resume.NouveauReport)

	reports, err := e.Reports.ListByApporteur(1, 7)
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestBordereauDeuxCommissionsUneReprise(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, func(b *bareme.Bareme) {
		b.TauxReprise = dec("80")
	})
	ctrA := creerContrat(t, db, 7, "1000")
	ctrB := creerContrat(t, db, 7, "500")

	resA := calculer(t, e, ctrA.ID, "1000") // 100.00
	calculer(t, e, ctrB.ID, "500")          // 50.00

	_, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1,
		CommissionID:   resA.Commission.ID,
		TypeReprise:    reprise.TypeImpaye,
		DateEvenement:  horlogeTest,
	})
	require.NoError(t, err) // 80 % de 100

	brd, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, "150.00", brd.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, "80.00", brd.Resume.TotalReprises.StringFixed(2))
	require.Equal(t, "70.00", brd.Resume.TotalNetAPayer.StringFixed(2))
	require.Nil(t, brd.Resume.NouveauReport)
	require.Equal(t, 3, brd.Bordereau.NombreLignes)

	// La ligne de la commission reprise porte son net propre, le brut total
	// restant la base des totaux.
	var trouvee bool
	for _, l := range brd.Lignes {
		if l.CommissionID != nil && *l.CommissionID == resA.Commission.ID {
			trouvee = true
			require.Equal(t, "100.00", l.MontantBrut.StringFixed(2))
			require.Equal(t, "20.00", l.MontantNet.StringFixed(2))
		}
	}
	require.True(t, trouvee)
}

func TestFenetreReprise(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	limite := res.Commission.DateCreation.AddDate(0, 3, 0)

	// Le jour de la date limite passe encore.
	_, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1,
		CommissionID:   res.Commission.ID,
		TypeReprise:    reprise.TypeAnnulation,
		DateEvenement:  limite,
	})
	require.NoError(t, err)

	// Le lendemain est hors fenêtre.
	_, err = e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1,
		CommissionID:   res.Commission.ID,
		TypeReprise:    reprise.TypeAnnulation,
		DateEvenement:  limite.AddDate(0, 0, 1),
	})
	require.ErrorIs(t, err, ErrFenetreRepriseExpiree)
}

func TestReprisesSuccessivesSeComposent(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, func(b *bareme.Bareme) {
		b.TauxReprise = dec("50")
	})
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	r1, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		TypeReprise: reprise.TypeImpaye, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)
	require.Equal(t, "50.00", r1.MontantReprise.StringFixed(2))

	// La seconde reprise part du net restant (50), pas du brut d'origine.
	r2, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		TypeReprise: reprise.TypeImpaye, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)
	require.Equal(t, "25.00", r2.MontantReprise.StringFixed(2))

	c, err := e.Commissions.FindByID(res.Commission.ID)
	require.NoError(t, err)
	require.Equal(t, "25.00", c.MontantNetAPayer.StringFixed(2))
}

func TestRegularisationReprise(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, func(b *bareme.Bareme) {
		taux := dec("5")
		b.RecurrenceActive = true
		b.TauxRecurrence = &taux
		b.DureeRecurrenceMois = 12
	})
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	_, generee, err := e.GenererRecurrence(CommandeRecurrence{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		EcheanceRef: "ECH-1", DateEncaissement: horlogeTest,
	})
	require.NoError(t, err)
	require.True(t, generee)

	rep, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		TypeReprise: reprise.TypeImpaye, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)

	recs, err := e.Recurrences.ListByContrat(1, ctr.ID)
	require.NoError(t, err)
	require.Equal(t, recurrence.StatutSuspendue, recs[0].Statut)

	annulee, err := e.RegulariserReprise(1, rep.ID, "impayé soldé", "tests")
	require.NoError(t, err)
	require.Equal(t, reprise.StatutAnnulee, annulee.Statut)

	c, err := e.Commissions.FindByID(res.Commission.ID)
	require.NoError(t, err)
	require.Equal(t, "100.00", c.MontantNetAPayer.StringFixed(2))

	recs, err = e.Recurrences.ListByContrat(1, ctr.ID)
	require.NoError(t, err)
	require.Equal(t, recurrence.StatutActive, recs[0].Statut)

	// Une reprise annulée ne se régularise pas deux fois.
	_, err = e.RegulariserReprise(1, rep.ID, "", "tests")
	require.ErrorIs(t, err, ErrRepriseNonRegularisable)
}

func TestBordereauIdempotent(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	_, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		TypeReprise: reprise.TypeImpaye, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)

	premier, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.False(t, premier.Regenere)

	second, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.True(t, second.Regenere)
	require.Equal(t, premier.Bordereau.ID, second.Bordereau.ID)
	require.Equal(t, premier.Resume.TotalBrut.StringFixed(2), second.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, premier.Resume.TotalReprises.StringFixed(2), second.Resume.TotalReprises.StringFixed(2))
	require.Equal(t, premier.Resume.TotalNetAPayer.StringFixed(2), second.Resume.TotalNetAPayer.StringFixed(2))
	require.Equal(t, len(premier.Lignes), len(second.Lignes))

	lignes, err := e.Lignes.ListByBordereau(second.Bordereau.ID)
	require.NoError(t, err)
	require.Len(t, lignes, len(premier.Lignes))
}

func TestBordereauValideNonRegenerable(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	calculer(t, e, ctr.ID, "1000")

	premier, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)

	_, err = e.ValiderBordereau(1, premier.Bordereau.ID, 99, "tests")
	require.NoError(t, err)

	_, err = e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.ErrorIs(t, err, ErrBordereauNonBrouillon)
}

func TestCycleDeVieBordereau(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	brd, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)

	// Archiver un brouillon est refusé.
	_, err = e.ArchiverBordereau(1, brd.Bordereau.ID, "tests")
	require.ErrorIs(t, err, ErrTransitionBordereau)

	valide, err := e.ValiderBordereau(1, brd.Bordereau.ID, 99, "tests")
	require.NoError(t, err)
	require.Equal(t, bordereau.StatutValide, valide.Statut)

	s, err := statut.NewRepository(db).FindByCode(statut.CodeEnAttentePaiement)
	require.NoError(t, err)
	c, err := e.Commissions.FindByID(res.Commission.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, c.StatutID)

	exporte, err := e.ExporterBordereau(1, brd.Bordereau.ID, "s3://exports/brd.pdf", "s3://exports/brd.xlsx", "tests")
	require.NoError(t, err)
	require.Equal(t, bordereau.StatutExporte, exporte.Statut)

	archive, err := e.ArchiverBordereau(1, brd.Bordereau.ID, "tests")
	require.NoError(t, err)
	require.Equal(t, bordereau.StatutArchive, archive.Statut)
}

func TestReportNegatifPorteEtApure(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")

	// Commission de juillet, déjà payée par un bordereau validé.
	resJuillet, err := e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1, ContratID: ctr.ID,
		MontantBase: dec("1000"), Periode: "2026-07",
	})
	require.NoError(t, err)
	brdJuillet, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-07",
	})
	require.NoError(t, err)
	_, err = e.ValiderBordereau(1, brdJuillet.Bordereau.ID, 99, "tests")
	require.NoError(t, err)

	// Reprise totale en août : le bordereau d'août n'a rien à compenser.
	_, err = e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: resJuillet.Commission.ID,
		TypeReprise: reprise.TypeResiliation, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)

	brdAout, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, "0.00", brdAout.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, "100.00", brdAout.Resume.TotalReprises.StringFixed(2))
	require.Equal(t, "0.00", brdAout.Resume.TotalNetAPayer.StringFixed(2))
	require.NotNil(t, brdAout.Resume.NouveauReport)
	require.Equal(t, "100.00", brdAout.Resume.NouveauReport.MontantRestant.StringFixed(2))

	// Septembre : nouvelle commission de 150, le report de 100 est imputé.
	ctr2 := creerContrat(t, db, 7, "1500")
	_, err = e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1, ContratID: ctr2.ID,
		MontantBase: dec("1500"), Periode: "2026-09",
	})
	require.NoError(t, err)

	brdSept, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-09",
	})
	require.NoError(t, err)
	require.Equal(t, "150.00", brdSept.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, "100.00", brdSept.Resume.TotalReports.StringFixed(2))
	require.Equal(t, "50.00", brdSept.Resume.TotalNetAPayer.StringFixed(2))

	// Conservation : initial − restant = consommé, et le report est apuré.
	reports, err := e.Reports.ListByApporteur(1, 7)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, report.StatutApure, reports[0].Statut)
	require.Equal(t, "0.00", reports[0].MontantRestant.StringFixed(2))
}

func TestRegenerationRecrediteLesReports(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")

	// Report ouvert de 100 hérité d'une période antérieure.
	require.NoError(t, e.Reports.Create(&report.ReportNegatif{
		OrganisationID: 1,
		ApporteurID:    7,
		PeriodeOrigine: "2026-06",
		MontantInitial: dec("100"),
		MontantRestant: dec("100"),
		Statut:         report.StatutEnCours,
	}))

	_, err := e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1, ContratID: ctr.ID,
		MontantBase: dec("1000"), Periode: "2026-08",
	})
	require.NoError(t, err)

	premier, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, "100.00", premier.Resume.TotalReports.StringFixed(2))
	require.Equal(t, "0.00", premier.Resume.TotalNetAPayer.StringFixed(2))

	// La régénération recrédite l'imputation avant recalcul : les totaux ne
	// bougent pas et le report n'est pas consommé deux fois.
	second, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, "100.00", second.Resume.TotalReports.StringFixed(2))
	require.Equal(t, "0.00", second.Resume.TotalNetAPayer.StringFixed(2))

	reports, err := e.Reports.ListByApporteur(1, 7)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "0.00", reports[0].MontantRestant.StringFixed(2))
}

func TestRegenerationPreserveLaConsommationUlterieure(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")

	// Juillet payé puis repris en totalité : le brouillon d'août porte un
	// report de 100.
	resJuillet, err := e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1, ContratID: ctr.ID,
		MontantBase: dec("1000"), Periode: "2026-07",
	})
	require.NoError(t, err)
	brdJuillet, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-07",
	})
	require.NoError(t, err)
	_, err = e.ValiderBordereau(1, brdJuillet.Bordereau.ID, 99, "tests")
	require.NoError(t, err)
	_, err = e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: resJuillet.Commission.ID,
		TypeReprise: reprise.TypeResiliation, DateEvenement: horlogeTest,
	})
	require.NoError(t, err)

	brdAout, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, "100.00", brdAout.Resume.NouveauReport.MontantRestant.StringFixed(2))

	// Septembre absorbe la moitié du report d'août.
	ctr2 := creerContrat(t, db, 7, "500")
	_, err = e.CalculerCommission(CommandeCalcul{
		OrganisationID: 1, ContratID: ctr2.ID,
		MontantBase: dec("500"), Periode: "2026-09",
	})
	require.NoError(t, err)
	brdSept, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-09",
	})
	require.NoError(t, err)
	require.Equal(t, "50.00", brdSept.Resume.TotalReports.StringFixed(2))
	require.Equal(t, "0.00", brdSept.Resume.TotalNetAPayer.StringFixed(2))

	// Régénérer le brouillon d'août ne recrée pas la dette déjà recouvrée :
	// la part consommée par septembre reste acquise, seul le solde subsiste.
	brdAout2, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.True(t, brdAout2.Regenere)
	require.Equal(t, "100.00", brdAout2.Resume.TotalReprises.StringFixed(2))
	require.Equal(t, "0.00", brdAout2.Resume.TotalNetAPayer.StringFixed(2))

	reports, err := e.Reports.ListByApporteur(1, 7)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "100.00", reports[0].MontantInitial.StringFixed(2))
	require.Equal(t, "50.00", reports[0].MontantRestant.StringFixed(2))
	require.Equal(t, report.StatutEnCours, reports[0].Statut)
}

func TestReprisePeriodeApplicationSuitLaDateCourante(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, nil)
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	// Évènement daté dans la fenêtre mais postérieur à aujourd'hui : la
	// période d'application reste le mois qui suit la date courante.
	rep, err := e.DeclencherReprise(CommandeReprise{
		OrganisationID: 1, CommissionID: res.Commission.ID,
		TypeReprise:   reprise.TypeImpaye,
		DateEvenement: horlogeTest.AddDate(0, 2, 0),
	})
	require.NoError(t, err)
	require.Equal(t, "2026-09", rep.PeriodeApplication)
}

func TestRecurrencePlafonneeEtIdempotente(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, func(b *bareme.Bareme) {
		taux := dec("5")
		b.RecurrenceActive = true
		b.TauxRecurrence = &taux
		b.DureeRecurrenceMois = 3
	})
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000")

	for mois := 0; mois < 3; mois++ {
		rec, generee, err := e.GenererRecurrence(CommandeRecurrence{
			OrganisationID:   1,
			CommissionID:     res.Commission.ID,
			EcheanceRef:      fmt.Sprintf("ECH-%d", mois+1),
			DateEncaissement: horlogeTest.AddDate(0, mois, 0),
		})
		require.NoError(t, err)
		require.True(t, generee)
		require.Equal(t, mois+1, rec.NumeroMois)
		require.Equal(t, "50.00", rec.MontantCalcule.StringFixed(2))
	}

	// Rejouer une échéance déjà générée est un non-évènement.
	_, generee, err := e.GenererRecurrence(CommandeRecurrence{
		OrganisationID:   1,
		CommissionID:     res.Commission.ID,
		EcheanceRef:      "ECH-1",
		DateEncaissement: horlogeTest,
	})
	require.NoError(t, err)
	require.False(t, generee)

	// La 4e échéance dépasse la durée du barème : rien n'est généré.
	_, generee, err = e.GenererRecurrence(CommandeRecurrence{
		OrganisationID:   1,
		CommissionID:     res.Commission.ID,
		EcheanceRef:      "ECH-4",
		DateEncaissement: horlogeTest.AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	require.False(t, generee)
}

func TestBordereauIncluLesRecurrences(t *testing.T) {
	e, db := moteurTest(t)
	creerBareme(t, db, func(b *bareme.Bareme) {
		taux := dec("5")
		b.RecurrenceActive = true
		b.TauxRecurrence = &taux
		b.DureeRecurrenceMois = 12
	})
	ctr := creerContrat(t, db, 7, "1000")
	res := calculer(t, e, ctr.ID, "1000") // commission d'août : 100

	_, generee, err := e.GenererRecurrence(CommandeRecurrence{
		OrganisationID:   1,
		CommissionID:     res.Commission.ID,
		EcheanceRef:      "ECH-1",
		DateEncaissement: horlogeTest, // mensualité d'août : 50
	})
	require.NoError(t, err)
	require.True(t, generee)

	brd, err := e.GenererBordereau(CommandeBordereau{
		OrganisationID: 1, ApporteurID: 7, Periode: "2026-08",
	})
	require.NoError(t, err)
	require.Equal(t, 1, brd.Resume.NbCommissions)
	require.Equal(t, 1, brd.Resume.NbRecurrences)
	require.Equal(t, "150.00", brd.Resume.TotalBrut.StringFixed(2))
	require.Equal(t, "150.00", brd.Resume.TotalNetAPayer.StringFixed(2))

	// La mensualité est rattachée au bordereau et ne sera plus re-sélectionnée.
	recs, err := e.Recurrences.ListByContrat(1, ctr.ID)
	require.NoError(t, err)
	require.NotNil(t, recs[0].BordereauID)
	require.Equal(t, brd.Bordereau.ID, *recs[0].BordereauID)
}
