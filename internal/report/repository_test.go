package report

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func baseTest(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewRepository(db)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func creerReport(t *testing.T, repo *Repository, periode, montant string) *ReportNegatif {
	t.Helper()
	r := &ReportNegatif{
		OrganisationID: 1,
		ApporteurID:    7,
		PeriodeOrigine: periode,
		MontantInitial: d(montant),
		MontantRestant: d(montant),
		Statut:         StatutEnCours,
	}
	require.NoError(t, repo.Create(r))
	return r
}

func TestAppliquerSurMontantFIFO(t *testing.T) {
	repo := baseTest(t)
	ancien := creerReport(t, repo, "2026-05", "60")
	recent := creerReport(t, repo, "2026-07", "50")

	residuel, consommes, err := repo.AppliquerSurMontant(1, 7, d("80"), "2026-08", 0)
	require.NoError(t, err)
	require.Equal(t, "0.00", residuel.StringFixed(2))
	require.Len(t, consommes, 2)

	// Le plus ancien est soldé d'abord, le récent absorbe le reste.
	require.Equal(t, ancien.ID, consommes[0].Report.ID)
	require.Equal(t, "60.00", consommes[0].MontantApplique.StringFixed(2))
	require.Equal(t, StatutApure, consommes[0].Report.Statut)

	require.Equal(t, recent.ID, consommes[1].Report.ID)
	require.Equal(t, "20.00", consommes[1].MontantApplique.StringFixed(2))
	require.Equal(t, "30.00", consommes[1].Report.MontantRestant.StringFixed(2))
	require.Equal(t, StatutEnCours, consommes[1].Report.Statut)
}

func TestAppliquerSurMontantResidu(t *testing.T) {
	repo := baseTest(t)
	creerReport(t, repo, "2026-05", "30")

	residuel, consommes, err := repo.AppliquerSurMontant(1, 7, d("100"), "2026-08", 0)
	require.NoError(t, err)
	require.Equal(t, "70.00", residuel.StringFixed(2))
	require.Len(t, consommes, 1)
}

func TestAppliquerSurMontantNegatifOuNul(t *testing.T) {
	repo := baseTest(t)
	creerReport(t, repo, "2026-05", "30")

	residuel, consommes, err := repo.AppliquerSurMontant(1, 7, d("-10"), "2026-08", 0)
	require.NoError(t, err)
	require.Empty(t, consommes)
	require.Equal(t, "-10.00", residuel.StringFixed(2))

	residuel, consommes, err = repo.AppliquerSurMontant(1, 7, decimal.Zero, "2026-08", 0)
	require.NoError(t, err)
	require.Empty(t, consommes)
	require.Equal(t, "0.00", residuel.StringFixed(2))
}

func TestConservationDesMontants(t *testing.T) {
	repo := baseTest(t)
	creerReport(t, repo, "2026-04", "40")
	creerReport(t, repo, "2026-05", "25")
	creerReport(t, repo, "2026-06", "35")

	totalConsomme := decimal.Zero
	for _, dispo := range []string{"30", "20", "50"} {
		_, consommes, err := repo.AppliquerSurMontant(1, 7, d(dispo), "2026-08", 0)
		require.NoError(t, err)
		for _, c := range consommes {
			totalConsomme = totalConsomme.Add(c.MontantApplique)
		}
	}

	// Invariant : Σ initial − Σ restant = Σ consommé, à tout instant.
	reports, err := repo.ListByApporteur(1, 7)
	require.NoError(t, err)
	totalInitial, totalRestant := decimal.Zero, decimal.Zero
	for _, r := range reports {
		totalInitial = totalInitial.Add(r.MontantInitial)
		totalRestant = totalRestant.Add(r.MontantRestant)
	}
	require.Equal(t, totalConsomme.StringFixed(2), totalInitial.Sub(totalRestant).StringFixed(2))
	require.Equal(t, "100.00", totalConsomme.StringFixed(2))
}

func TestRecrediterPlafonneAuMontantInitial(t *testing.T) {
	repo := baseTest(t)
	r := creerReport(t, repo, "2026-05", "50")

	_, _, err := repo.AppliquerSurMontant(1, 7, d("50"), "2026-08", 0)
	require.NoError(t, err)

	require.NoError(t, repo.Recrediter(r.ID, d("50")))
	apres, err := repo.FindByID(r.ID)
	require.NoError(t, err)
	require.Equal(t, "50.00", apres.MontantRestant.StringFixed(2))
	require.Equal(t, StatutEnCours, apres.Statut)

	// Un recrédit excessif ne dépasse jamais le montant initial.
	require.NoError(t, repo.Recrediter(r.ID, d("10")))
	apres, err = repo.FindByID(r.ID)
	require.NoError(t, err)
	require.Equal(t, "50.00", apres.MontantRestant.StringFixed(2))
}

func TestAppliquerSurMontantExclutSonOrigine(t *testing.T) {
	repo := baseTest(t)
	bordereauID := uint(11)

	propre := creerReport(t, repo, "2026-06", "40")
	require.NoError(t, repo.DB.Model(propre).Update("bordereau_origine_id", bordereauID).Error)
	autre := creerReport(t, repo, "2026-07", "30")

	residuel, consommes, err := repo.AppliquerSurMontant(1, 7, d("100"), "2026-08", bordereauID)
	require.NoError(t, err)
	require.Len(t, consommes, 1)
	require.Equal(t, autre.ID, consommes[0].Report.ID)
	require.Equal(t, "70.00", residuel.StringFixed(2))

	// Le report du bordereau exclu reste intact.
	apres, err := repo.FindByID(propre.ID)
	require.NoError(t, err)
	require.Equal(t, "40.00", apres.MontantRestant.StringFixed(2))
}

func TestReconcilierOrigineConserveLaPartConsommee(t *testing.T) {
	repo := baseTest(t)
	bordereauID := uint(11)

	origine := creerReport(t, repo, "2026-07", "100")
	require.NoError(t, repo.DB.Model(origine).Update("bordereau_origine_id", bordereauID).Error)

	// Une période ultérieure a déjà absorbé 50 du report.
	_, _, err := repo.AppliquerSurMontant(1, 7, d("50"), "2026-09", 0)
	require.NoError(t, err)

	// Même déficit recalculé : seul le solde non consommé reste dû.
	rep, err := repo.ReconcilierOrigine(bordereauID, d("100"))
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Equal(t, "100.00", rep.MontantInitial.StringFixed(2))
	require.Equal(t, "50.00", rep.MontantRestant.StringFixed(2))
	require.Equal(t, StatutEnCours, rep.Statut)

	// Déficit recalculé sous la part déjà consommée : plus rien à recouvrer.
	rep, err = repo.ReconcilierOrigine(bordereauID, d("30"))
	require.NoError(t, err)
	require.NotNil(t, rep)
	require.Equal(t, "50.00", rep.MontantInitial.StringFixed(2))
	require.Equal(t, "0.00", rep.MontantRestant.StringFixed(2))
	require.Equal(t, StatutApure, rep.Statut)
}

func TestReconcilierOrigineSupprimeLIntactSansDeficit(t *testing.T) {
	repo := baseTest(t)
	bordereauID := uint(11)

	origine := creerReport(t, repo, "2026-07", "80")
	require.NoError(t, repo.DB.Model(origine).Update("bordereau_origine_id", bordereauID).Error)

	rep, err := repo.ReconcilierOrigine(bordereauID, decimal.Zero)
	require.NoError(t, err)
	require.Nil(t, rep)

	reports, err := repo.ListByApporteur(1, 7)
	require.NoError(t, err)
	require.Empty(t, reports)

	// Aucun report d'origine : la réconciliation est un no-op.
	rep, err = repo.ReconcilierOrigine(99, d("10"))
	require.NoError(t, err)
	require.Nil(t, rep)
}
