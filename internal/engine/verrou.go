package engine

import (
	"fmt"
	"sync"
)

// verrouPeriode sérialise les écritures par triplet (organisation, apporteur,
// période). Deux générations simultanées du même bordereau s'exécutent donc
// l'une après l'autre ; la seconde retrouve le brouillon créé par la première.
type verrouPeriode struct {
	mu      sync.Mutex
	entrees map[string]*sync.Mutex
}

func nouveauVerrouPeriode() *verrouPeriode {
	return &verrouPeriode{entrees: make(map[string]*sync.Mutex)}
}

func (v *verrouPeriode) verrouiller(organisationID, apporteurID uint, periode string) func() {
	cle := fmt.Sprintf("%d/%d/%s", organisationID, apporteurID, periode)

	v.mu.Lock()
	m, ok := v.entrees[cle]
	if !ok {
		m = &sync.Mutex{}
		v.entrees[cle] = m
	}
	v.mu.Unlock()

	m.Lock()
	return m.Unlock
}
