package bareme

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assurneo/api-commission/internal/palier"
)

var ancrage = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func baseTest(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, palier.Migrate(db))
	return NewRepository(db)
}

func creer(t *testing.T, repo *Repository, modifier func(*Bareme)) *Bareme {
	t.Helper()
	taux := decimal.NewFromInt(10)
	b := &Bareme{
		OrganisationID:    1,
		Code:              "BAR",
		Nom:               "Barème",
		TypeCalcul:        TypeCalculPourcentage,
		BaseCalcul:        BaseCotisationHT,
		TauxPourcentage:   &taux,
		DureeReprisesMois: 3,
		TauxReprise:       decimal.NewFromInt(100),
		Version:           1,
		DateEffet:         ancrage.AddDate(-1, 0, 0),
		Actif:             true,
	}
	if modifier != nil {
		modifier(b)
	}
	require.NoError(t, repo.Create(b))
	return b
}

func ptr(s string) *string { return &s }

func TestFindApplicablePlusSpecifiqueGagne(t *testing.T) {
	repo := baseTest(t)

	generique := creer(t, repo, nil)
	specifique := creer(t, repo, func(b *Bareme) {
		b.TypeProduit = ptr("sante")
		b.ProfilRemuneration = ptr("courtier")
	})

	b, err := repo.FindApplicable(1, Criteres{
		TypeProduit:        "sante",
		ProfilRemuneration: "courtier",
		Date:               ancrage,
	})
	require.NoError(t, err)
	require.Equal(t, specifique.ID, b.ID)

	// Un contexte qui ne matche pas le filtre retombe sur le joker.
	b, err = repo.FindApplicable(1, Criteres{
		TypeProduit: "prevoyance",
		Date:        ancrage,
	})
	require.NoError(t, err)
	require.Equal(t, generique.ID, b.ID)
}

func TestFindApplicableVersionDepartage(t *testing.T) {
	repo := baseTest(t)

	creer(t, repo, func(b *Bareme) {
		b.TypeProduit = ptr("sante")
		b.Version = 1
	})
	v2 := creer(t, repo, func(b *Bareme) {
		b.TypeProduit = ptr("sante")
		b.Version = 2
	})

	b, err := repo.FindApplicable(1, Criteres{TypeProduit: "sante", Date: ancrage})
	require.NoError(t, err)
	require.Equal(t, v2.ID, b.ID)
}

func TestFindApplicableBornesDeDates(t *testing.T) {
	repo := baseTest(t)

	fin := ancrage.AddDate(0, -1, 0)
	creer(t, repo, func(b *Bareme) {
		b.DateFin = &fin
	})

	_, err := repo.FindApplicable(1, Criteres{Date: ancrage})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	b, err := repo.FindApplicable(1, Criteres{Date: ancrage.AddDate(0, -2, 0)})
	require.NoError(t, err)
	require.NotZero(t, b.ID)
}

func TestFindApplicableIgnoreInactifsEtAutresOrganisations(t *testing.T) {
	repo := baseTest(t)

	creer(t, repo, func(b *Bareme) { b.Actif = false })
	creer(t, repo, func(b *Bareme) { b.OrganisationID = 2 })

	_, err := repo.FindApplicable(1, Criteres{Date: ancrage})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindApplicableFiltreSociete(t *testing.T) {
	repo := baseTest(t)

	societe := uint(42)
	cible := creer(t, repo, func(b *Bareme) { b.SocieteID = &societe })
	joker := creer(t, repo, nil)

	b, err := repo.FindApplicable(1, Criteres{SocieteID: &societe, Date: ancrage})
	require.NoError(t, err)
	require.Equal(t, cible.ID, b.ID)

	// Sans société demandée, seul le joker est candidat.
	b, err = repo.FindApplicable(1, Criteres{Date: ancrage})
	require.NoError(t, err)
	require.Equal(t, joker.ID, b.ID)
}
