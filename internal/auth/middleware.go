package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	// CtxUserID est la clé de contexte portant l'ID de l'utilisateur courant.
	CtxUserID ctxKey = "utilisateurID"
	// CtxOrganisationID porte l'organisation du token.
	CtxOrganisationID ctxKey = "organisationID"
)

// Middleware vérifie le bearer token et propage les claims dans le contexte.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "token absent", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ValiderToken(raw)
		if err != nil {
			http.Error(w, "token invalide", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxOrganisationID, claims.OrganisationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
