package palier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestEvaluerSeuilsInclusifs(t *testing.T) {
	paliers := []Palier{
		{ID: 1, Nom: "P1", SeuilMin: d("1000"), MontantPrime: d("25"), Cumulable: true, Actif: true},
	}

	// Pile au seuil : inclus.
	primes := Evaluer(paliers, d("1000"))
	require.Len(t, primes, 1)
	require.Equal(t, "25.00", primes[0].Montant.StringFixed(2))

	// Juste en dessous : exclu.
	require.Empty(t, Evaluer(paliers, d("999.99")))
}

func TestEvaluerSeuilMaxInclusif(t *testing.T) {
	max := d("2000")
	paliers := []Palier{
		{ID: 1, SeuilMin: d("1000"), SeuilMax: &max, MontantPrime: d("25"), Cumulable: true, Actif: true},
	}

	require.Len(t, Evaluer(paliers, d("2000")), 1)
	require.Empty(t, Evaluer(paliers, d("2000.01")))
}

func TestEvaluerIgnoreInactifs(t *testing.T) {
	paliers := []Palier{
		{ID: 1, SeuilMin: d("0"), MontantPrime: d("10"), Cumulable: true, Actif: false},
	}
	require.Empty(t, Evaluer(paliers, d("500")))
}

func TestEvaluerNonCumulableGardeLePlusHaut(t *testing.T) {
	paliers := []Palier{
		{ID: 1, Nom: "Bronze", SeuilMin: d("500"), MontantPrime: d("10"), Actif: true},
		{ID: 2, Nom: "Argent", SeuilMin: d("1000"), MontantPrime: d("20"), Actif: true},
		{ID: 3, Nom: "Bonus", SeuilMin: d("0"), MontantPrime: d("5"), Cumulable: true, Actif: true},
	}

	primes := Evaluer(paliers, d("1500"))
	require.Len(t, primes, 2)

	total := decimal.Zero
	for _, p := range primes {
		total = total.Add(p.Montant)
	}
	// Argent (20) écrase Bronze ; le bonus cumulable s'ajoute.
	require.Equal(t, "25.00", total.StringFixed(2))
}

func TestEvaluerTauxBonus(t *testing.T) {
	taux := d("2.5")
	paliers := []Palier{
		{ID: 1, SeuilMin: d("1000"), TauxBonus: &taux, Cumulable: true, Actif: true},
	}

	primes := Evaluer(paliers, d("1000"))
	require.Len(t, primes, 1)
	require.Equal(t, "25.00", primes[0].Montant.StringFixed(2))
}

func TestEvaluerEstPure(t *testing.T) {
	paliers := []Palier{
		{ID: 1, SeuilMin: d("100"), MontantPrime: d("5"), Cumulable: true, Actif: true},
	}
	base := d("250")

	premier := Evaluer(paliers, base)
	second := Evaluer(paliers, base)
	require.Equal(t, premier, second)
	require.Equal(t, "250", base.String())
}
