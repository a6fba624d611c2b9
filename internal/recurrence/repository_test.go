package recurrence

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

func creerMensualite(t *testing.T, repo *Repository, contratID uint, numero int, periode string) *CommissionRecurrente {
	t.Helper()
	rec := &CommissionRecurrente{
		OrganisationID:       1,
		CommissionInitialeID: 1,
		ContratID:            contratID,
		EcheanceRef:          fmt.Sprintf("ECH-%d", numero),
		ApporteurID:          7,
		BaremeID:             1,
		BaremeVersion:        1,
		Periode:              periode,
		NumeroMois:           numero,
		MontantBase:          decimal.NewFromInt(1000),
		TauxRecurrence:       decimal.NewFromInt(5),
		MontantCalcule:       decimal.NewFromInt(50),
		Statut:               StatutActive,
	}
	require.NoError(t, repo.Create(rec))
	return rec
}

func TestExistePourEcheance(t *testing.T) {
	repo := baseTest(t)
	creerMensualite(t, repo, 3, 1, "2026-08")

	existe, err := repo.ExistePourEcheance(1, 3, "ECH-1", "2026-08")
	require.NoError(t, err)
	require.True(t, existe)

	existe, err = repo.ExistePourEcheance(1, 3, "ECH-1", "2026-09")
	require.NoError(t, err)
	require.False(t, existe)
}

func TestDernierNumeroMois(t *testing.T) {
	repo := baseTest(t)

	dernier, err := repo.DernierNumeroMois(1, 3)
	require.NoError(t, err)
	require.Zero(t, dernier)

	creerMensualite(t, repo, 3, 1, "2026-07")
	creerMensualite(t, repo, 3, 2, "2026-08")

	dernier, err = repo.DernierNumeroMois(1, 3)
	require.NoError(t, err)
	require.Equal(t, 2, dernier)
}

func TestSuspendreEtReprendreEnLot(t *testing.T) {
	repo := baseTest(t)
	libre := creerMensualite(t, repo, 3, 1, "2026-07")
	incluse := creerMensualite(t, repo, 3, 2, "2026-08")

	// Une mensualité déjà payée par un bordereau ne se suspend pas.
	bordereauID := uint(9)
	require.NoError(t, repo.MarquerIncluses([]uint{incluse.ID}, bordereauID))

	n, err := repo.Suspendre(3)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	apres, err := repo.FindByID(libre.ID)
	require.NoError(t, err)
	require.Equal(t, StatutSuspendue, apres.Statut)

	apresIncluse, err := repo.FindByID(incluse.ID)
	require.NoError(t, err)
	require.Equal(t, StatutActive, apresIncluse.Statut)

	n, err = repo.Reprendre(3)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	apres, err = repo.FindByID(libre.ID)
	require.NoError(t, err)
	require.Equal(t, StatutActive, apres.Statut)
}

func TestListNonIncluses(t *testing.T) {
	repo := baseTest(t)
	creerMensualite(t, repo, 3, 1, "2026-08")
	autres := creerMensualite(t, repo, 4, 1, "2026-08")
	horsPeriode := creerMensualite(t, repo, 3, 2, "2026-09")

	require.NoError(t, repo.MarquerIncluses([]uint{autres.ID}, 9))

	list, err := repo.ListNonIncluses(1, 7, "2026-08")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotEqual(t, horsPeriode.ID, list[0].ID)
}

func TestDetacherDuBordereau(t *testing.T) {
	repo := baseTest(t)
	rec := creerMensualite(t, repo, 3, 1, "2026-08")
	require.NoError(t, repo.MarquerIncluses([]uint{rec.ID}, 9))

	require.NoError(t, repo.DetacherDuBordereau(9))

	apres, err := repo.FindByID(rec.ID)
	require.NoError(t, err)
	require.Nil(t, apres.BordereauID)
}

func TestTerminerEstDefinitif(t *testing.T) {
	repo := baseTest(t)
	active := creerMensualite(t, repo, 3, 1, "2026-08")
	suspendue := creerMensualite(t, repo, 3, 2, "2026-09")
	require.NoError(t, repo.DB.Model(suspendue).Update("statut", StatutSuspendue).Error)

	n, err := repo.Terminer(3)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	for _, id := range []uint{active.ID, suspendue.ID} {
		apres, err := repo.FindByID(id)
		require.NoError(t, err)
		require.Equal(t, StatutTerminee, apres.Statut)
	}
}
