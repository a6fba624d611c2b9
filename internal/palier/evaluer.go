package palier

import (
	"sort"

	"github.com/shopspring/decimal"
)

var cent = decimal.NewFromInt(100)

// PrimeApplicable décrit une prime retenue lors de l'évaluation des paliers.
type PrimeApplicable struct {
	PalierID   uint            `json:"palierId"`
	PalierNom  string          `json:"palierNom"`
	Montant    decimal.Decimal `json:"montant"`
	TypePalier string          `json:"typePalier"`
}

// Evaluer retourne les primes des paliers actifs dont l'intervalle contient
// montantBase. Fonction pure : elle ne touche ni base ni état global.
//
// Un palier dont MontantPrime est nul mais TauxBonus renseigné rapporte
// round2(montantBase × tauxBonus / 100). Parmi les paliers non cumulables
// atteints, seul celui au seuil le plus élevé est retenu ; les paliers
// cumulables s'ajoutent tous.
func Evaluer(paliers []Palier, montantBase decimal.Decimal) []PrimeApplicable {
	var atteints []Palier
	for _, p := range paliers {
		if !p.Actif {
			continue
		}
		if montantBase.LessThan(p.SeuilMin) {
			continue
		}
		if p.SeuilMax != nil && montantBase.GreaterThan(*p.SeuilMax) {
			continue
		}
		atteints = append(atteints, p)
	}

	sort.SliceStable(atteints, func(i, j int) bool {
		if atteints[i].Ordre != atteints[j].Ordre {
			return atteints[i].Ordre < atteints[j].Ordre
		}
		return atteints[i].SeuilMin.LessThan(atteints[j].SeuilMin)
	})

	var meilleurNonCumulable *Palier
	for i := range atteints {
		p := atteints[i]
		if p.Cumulable {
			continue
		}
		if meilleurNonCumulable == nil || p.SeuilMin.GreaterThan(meilleurNonCumulable.SeuilMin) {
			meilleurNonCumulable = &atteints[i]
		}
	}

	var primes []PrimeApplicable
	for i := range atteints {
		p := atteints[i]
		if !p.Cumulable && meilleurNonCumulable != nil && p.ID != meilleurNonCumulable.ID {
			continue
		}
		primes = append(primes, PrimeApplicable{
			PalierID:   p.ID,
			PalierNom:  p.Nom,
			Montant:    montantPrime(p, montantBase),
			TypePalier: p.TypePalier,
		})
	}
	return primes
}

func montantPrime(p Palier, montantBase decimal.Decimal) decimal.Decimal {
	if !p.MontantPrime.IsZero() || p.TauxBonus == nil {
		return p.MontantPrime.Round(2)
	}
	return montantBase.Mul(*p.TauxBonus).Div(cent).Round(2)
}
