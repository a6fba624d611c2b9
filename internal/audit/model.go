package audit

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Périmètres audités.
const (
	ScopeCommission = "commission"
	ScopeRecurrence = "recurrence"
	ScopeReprise    = "reprise"
	ScopeReport     = "report"
	ScopeBordereau  = "bordereau"
	ScopeLigne      = "ligne"
	ScopeBareme     = "bareme"
	ScopeEngine     = "engine"
)

// Actions auditées.
const (
	ActionCommissionCalculee   = "commission_calculated"
	ActionCommissionReprise    = "commission_clawed_back"
	ActionRecurrenceGeneree    = "recurrence_generated"
	ActionRecurrenceSuspendue  = "recurrence_stopped"
	ActionRecurrenceReactivee  = "recurrence_resumed"
	ActionRepriseCreee         = "reprise_created"
	ActionRepriseAppliquee     = "reprise_applied"
	ActionRepriseRegularisee   = "reprise_regularized"
	ActionReportCree           = "report_negatif_created"
	ActionReportAjuste         = "report_negatif_adjusted"
	ActionReportApplique       = "report_negatif_applied"
	ActionReportApure          = "report_negatif_cleared"
	ActionBordereauCree        = "bordereau_created"
	ActionBordereauRegenere    = "bordereau_regenerated"
	ActionBordereauValide      = "bordereau_validated"
	ActionBordereauExporte     = "bordereau_exported"
	ActionBordereauArchive     = "bordereau_archived"
)

// LogAudit est une entrée immuable du journal d'audit : toute transition
// financière du moteur y laisse une trace avec ses états avant/après.
// Table en append-only, jamais mise à jour ni purgée par le code.
type LogAudit struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganisationID uint   `gorm:"not null;index:idx_audit_org_created" json:"organisationId"`
	Scope          string `gorm:"size:20;not null;index:idx_audit_scope_ref" json:"scope"`
	Action         string `gorm:"size:50;not null;index" json:"action"`
	RefID          *uint  `gorm:"index:idx_audit_scope_ref" json:"refId"`

	AvantJSON    string `gorm:"type:text" json:"avant,omitempty"`
	ApresJSON    string `gorm:"type:text" json:"apres,omitempty"`
	MetadataJSON string `gorm:"type:text" json:"metadata,omitempty"`

	Acteur string `gorm:"size:255" json:"acteur"`
	Motif  string `json:"motif"`

	BaremeID      *uint  `json:"baremeId"`
	BaremeVersion int    `json:"baremeVersion"`
	ContratID     *uint  `json:"contratId"`
	ApporteurID   *uint  `json:"apporteurId"`
	Periode       string `gorm:"size:7" json:"periode"`

	MontantCalcule *decimal.Decimal `gorm:"type:decimal(12,2)" json:"montantCalcule"`

	CreatedAt time.Time `gorm:"index:idx_audit_org_created" json:"createdAt"`
}

// Migrate crée la table du journal d'audit.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&LogAudit{})
}
