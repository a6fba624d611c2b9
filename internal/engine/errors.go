package engine

import "errors"

// Erreurs métier du moteur. Fatales pour l'opération en cours ; aucune
// n'appelle de retry côté client.
var (
	// ErrBaremeIntrouvable : aucun barème actif ne matche le contexte de
	// calcul. La configuration doit être corrigée avant de recalculer.
	ErrBaremeIntrouvable = errors.New("aucun barème applicable")

	// ErrFenetreRepriseExpiree : l'évènement déclencheur est postérieur à la
	// date limite de reprise de la commission.
	ErrFenetreRepriseExpiree = errors.New("fenêtre de reprise expirée")

	// ErrBordereauNonBrouillon : seul un bordereau en brouillon peut être
	// régénéré.
	ErrBordereauNonBrouillon = errors.New("bordereau non régénérable : statut différent de brouillon")

	// ErrTransitionBordereau : le bordereau n'est pas dans le statut attendu
	// par la transition demandée (valider, exporter, archiver).
	ErrTransitionBordereau = errors.New("transition de statut impossible")

	// ErrRepriseNonRegularisable : seule une reprise en attente peut être
	// annulée ; une reprise déjà consommée par un bordereau ne se défait pas.
	ErrRepriseNonRegularisable = errors.New("reprise non régularisable : déjà appliquée ou annulée")

	// ErrIntrouvable : entité absente pour l'ID demandé.
	ErrIntrouvable = errors.New("entité introuvable")
)
