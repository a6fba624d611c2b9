package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// Claims du token : identité de l'apporteur et organisation de rattachement.
// Le scoping organisationnel lui-même reste la responsabilité de l'appelant,
// le token ne fait que le transporter.
type Claims struct {
	UserID         uint `json:"userId"`
	OrganisationID uint `json:"organisationId"`
	jwt.RegisteredClaims
}

// GenererToken génère un JWT HS256 avec une validité de 24h.
func GenererToken(userID, organisationID uint) (string, error) {
	claims := &Claims{
		UserID:         userID,
		OrganisationID: organisationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ValiderToken valide le token et retourne les claims.
func ValiderToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token invalide ou expiré: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("impossible d'extraire les claims")
	}
	return claims, nil
}
