package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/bareme"
	"github.com/assurneo/api-commission/internal/bordereau"
	"github.com/assurneo/api-commission/internal/commission"
	"github.com/assurneo/api-commission/internal/contrat"
	"github.com/assurneo/api-commission/internal/lignebordereau"
	"github.com/assurneo/api-commission/internal/recurrence"
	"github.com/assurneo/api-commission/internal/report"
	"github.com/assurneo/api-commission/internal/reprise"
	"github.com/assurneo/api-commission/internal/statut"
)

// Engine orchestre le cycle de vie financier des commissions : calcul,
// récurrences, reprises, reports négatifs et bordereaux. Toute mutation passe
// par une transaction unique ; l'écriture d'audit accompagne chaque transition.
type Engine struct {
	DB     *gorm.DB
	Logger *zap.Logger

	Baremes     *bareme.Repository
	Commissions *commission.Repository
	Recurrences *recurrence.Repository
	Reprises    *reprise.Repository
	Reports     *report.Repository
	Bordereaux  *bordereau.Repository
	Lignes      *lignebordereau.Repository
	Statuts     *statut.Repository
	Contrats    *contrat.Repository
	Audit       *audit.Recorder

	verrous *verrouPeriode
	horloge func() time.Time
}

// New construit un moteur branché sur la base donnée.
func New(db *gorm.DB, logger *zap.Logger) *Engine {
	return &Engine{
		DB:          db,
		Logger:      logger,
		Baremes:     bareme.NewRepository(db),
		Commissions: commission.NewRepository(db),
		Recurrences: recurrence.NewRepository(db),
		Reprises:    reprise.NewRepository(db),
		Reports:     report.NewRepository(db),
		Bordereaux:  bordereau.NewRepository(db),
		Lignes:      lignebordereau.NewRepository(db),
		Statuts:     statut.NewRepository(db),
		Contrats:    contrat.NewRepository(db),
		Audit:       audit.NewRecorder(db, logger),
		verrous:     nouveauVerrouPeriode(),
		horloge:     time.Now,
	}
}

// Periode formate une date en période comptable YYYY-MM.
func Periode(t time.Time) string {
	return t.Format("2006-01")
}

// PeriodeSuivante retourne la période du mois calendaire suivant la date.
func PeriodeSuivante(t time.Time) string {
	debut := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return debut.AddDate(0, 1, 0).Format("2006-01")
}

// periodeSuivanteDe avance une période YYYY-MM d'un mois.
func periodeSuivanteDe(periode string) (string, error) {
	t, err := time.Parse("2006-01", periode)
	if err != nil {
		return "", fmt.Errorf("période invalide %q : %w", periode, err)
	}
	return t.AddDate(0, 1, 0).Format("2006-01"), nil
}

var compteurReference uint64

// nouvelleReference fabrique une référence lisible et unique : préfixe,
// période compacte, horodatage et compteur de désambiguïsation.
func nouvelleReference(prefixe string, quand time.Time) string {
	n := atomic.AddUint64(&compteurReference, 1)
	return fmt.Sprintf("%s-%s-%d%03d", prefixe, quand.Format("200601"), quand.Unix(), n%1000)
}
