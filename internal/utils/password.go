package utils

import "golang.org/x/crypto/bcrypt"

// HashMotDePasse génère un hash bcrypt pour le mot de passe donné.
func HashMotDePasse(motDePasse string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(motDePasse), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifierMotDePasse compare un hash bcrypt avec le mot de passe en clair.
func VerifierMotDePasse(hash, motDePasse string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(motDePasse))
	return err == nil
}
