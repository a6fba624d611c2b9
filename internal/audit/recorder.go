package audit

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entree porte les champs d'une écriture d'audit avant sérialisation.
type Entree struct {
	OrganisationID uint
	Scope          string
	Action         string
	RefID          *uint
	Avant          interface{}
	Apres          interface{}
	Metadata       map[string]interface{}
	Acteur         string
	Motif          string
	BaremeID       *uint
	BaremeVersion  int
	ContratID      *uint
	ApporteurID    *uint
	Periode        string
	MontantCalcule *decimal.Decimal
}

// Recorder écrit le journal d'audit. L'écriture est best-effort : un puits
// d'audit dégradé est signalé dans les logs mais ne doit jamais faire échouer
// la mutation financière qu'il trace. Une commission payée ne se perd pas
// parce que l'audit est indisponible.
type Recorder struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewRecorder instancie un Recorder.
func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{DB: db, Logger: logger}
}

// WithDB retourne une copie du recorder utilisant un *gorm.DB spécifique.
func (rec *Recorder) WithDB(db *gorm.DB) *Recorder {
	if db == nil {
		db = rec.DB
	}
	return &Recorder{DB: db, Logger: rec.Logger}
}

// Enregistrer sérialise et persiste une entrée. Ne retourne jamais d'erreur.
func (rec *Recorder) Enregistrer(e Entree) {
	entry := LogAudit{
		OrganisationID: e.OrganisationID,
		Scope:          e.Scope,
		Action:         e.Action,
		RefID:          e.RefID,
		AvantJSON:      versJSON(e.Avant),
		ApresJSON:      versJSON(e.Apres),
		MetadataJSON:   versJSON(e.Metadata),
		Acteur:         e.Acteur,
		Motif:          e.Motif,
		BaremeID:       e.BaremeID,
		BaremeVersion:  e.BaremeVersion,
		ContratID:      e.ContratID,
		ApporteurID:    e.ApporteurID,
		Periode:        e.Periode,
		MontantCalcule: e.MontantCalcule,
	}

	if err := rec.DB.Create(&entry).Error; err != nil {
		rec.Logger.Error("écriture audit impossible",
			zap.String("scope", e.Scope),
			zap.String("action", e.Action),
			zap.Error(err))
		return
	}
	rec.Logger.Debug("audit enregistré",
		zap.String("scope", e.Scope),
		zap.String("action", e.Action))
}

// FindByRef retourne l'historique d'audit d'une entité donnée, du plus
// récent au plus ancien.
func (rec *Recorder) FindByRef(orgID uint, scope string, refID uint) ([]LogAudit, error) {
	var logs []LogAudit
	err := rec.DB.
		Where("organisation_id = ? AND scope = ? AND ref_id = ?", orgID, scope, refID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}

// ListByOrganisation retourne le journal d'une organisation avec filtres
// optionnels sur le scope et la période.
func (rec *Recorder) ListByOrganisation(orgID uint, scope, periode string, limit int) ([]LogAudit, error) {
	q := rec.DB.Where("organisation_id = ?", orgID)
	if scope != "" {
		q = q.Where("scope = ?", scope)
	}
	if periode != "" {
		q = q.Where("periode = ?", periode)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []LogAudit
	err := q.Order("created_at DESC, id DESC").Find(&logs).Error
	return logs, err
}

func versJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
