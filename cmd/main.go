package main

import (
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/assurneo/api-commission/internal/apporteur"
	"github.com/assurneo/api-commission/internal/audit"
	"github.com/assurneo/api-commission/internal/auth"
	"github.com/assurneo/api-commission/internal/bareme"
	"github.com/assurneo/api-commission/internal/bordereau"
	"github.com/assurneo/api-commission/internal/commission"
	"github.com/assurneo/api-commission/internal/contrat"
	"github.com/assurneo/api-commission/internal/engine"
	"github.com/assurneo/api-commission/internal/lignebordereau"
	"github.com/assurneo/api-commission/internal/palier"
	"github.com/assurneo/api-commission/internal/recurrence"
	"github.com/assurneo/api-commission/internal/report"
	"github.com/assurneo/api-commission/internal/reprise"
	"github.com/assurneo/api-commission/internal/statut"
	"github.com/assurneo/api-commission/internal/utils/db"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	conn, err := db.GetDB()
	if err != nil {
		logger.Fatal("connexion à la base impossible", zap.Error(err))
	}

	if err := migrer(conn); err != nil {
		logger.Fatal("migration impossible", zap.Error(err))
	}
	if err := statut.Seed(conn); err != nil {
		logger.Fatal("seed des statuts impossible", zap.Error(err))
	}

	validate := validator.New()
	moteur := engine.New(conn, logger)

	apporteurHandler := apporteur.NewHandler(conn)
	contratHandler := contrat.NewHandler(contrat.NewRepository(conn))
	baremeHandler := bareme.NewHandler(bareme.NewRepository(conn), validate)
	commissionHandler := commission.NewHandler(commission.NewRepository(conn))
	repriseHandler := reprise.NewHandler(reprise.NewRepository(conn))
	recurrenceHandler := recurrence.NewHandler(recurrence.NewRepository(conn))
	reportHandler := report.NewHandler(report.NewRepository(conn))
	bordereauHandler := bordereau.NewHandler(bordereau.NewRepository(conn), lignebordereau.NewRepository(conn))
	auditHandler := audit.NewHandler(audit.NewRecorder(conn, logger))
	engineHandler := engine.NewHandler(moteur, validate)

	r := mux.NewRouter()
	r.HandleFunc("/login", apporteurHandler.Login).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)

	// Apporteurs
	api.HandleFunc("/apporteurs", apporteurHandler.Creer).Methods("POST")
	api.HandleFunc("/apporteurs", apporteurHandler.Lister).Methods("GET")
	api.HandleFunc("/apporteurs/{id}", apporteurHandler.Get).Methods("GET")
	api.HandleFunc("/apporteurs/{id}", apporteurHandler.Supprimer).Methods("DELETE")

	// Contrats
	api.HandleFunc("/contrats", contratHandler.Creer).Methods("POST")
	api.HandleFunc("/contrats", contratHandler.Lister).Methods("GET")
	api.HandleFunc("/contrats/{id}", contratHandler.Get).Methods("GET")
	api.HandleFunc("/contrats/{id}/statut", contratHandler.ChangerStatut).Methods("PATCH")
	api.HandleFunc("/contrats/{id}/recurrences", recurrenceHandler.ListerParContrat).Methods("GET")
	api.HandleFunc("/contrats/{id}/recurrences/terminer", recurrenceHandler.TerminerParContrat).Methods("POST")

	// Barèmes
	api.HandleFunc("/baremes", baremeHandler.Create).Methods("POST")
	api.HandleFunc("/baremes", baremeHandler.List).Methods("GET")
	api.HandleFunc("/baremes/applicable", baremeHandler.Applicable).Methods("GET")
	api.HandleFunc("/baremes/{id}", baremeHandler.Get).Methods("GET")
	api.HandleFunc("/baremes/{id}/desactiver", baremeHandler.Desactiver).Methods("PATCH")

	// Moteur de commission
	api.HandleFunc("/commissions/calculer", engineHandler.CalculerCommission).Methods("POST")
	api.HandleFunc("/commissions", commissionHandler.List).Methods("GET")
	api.HandleFunc("/commissions/{id}", commissionHandler.Get).Methods("GET")
	api.HandleFunc("/recurrences/generer", engineHandler.GenererRecurrence).Methods("POST")

	// Reprises
	api.HandleFunc("/reprises", engineHandler.DeclencherReprise).Methods("POST")
	api.HandleFunc("/reprises", repriseHandler.Lister).Methods("GET")
	api.HandleFunc("/reprises/{id}", repriseHandler.Get).Methods("GET")
	api.HandleFunc("/reprises/{id}/regulariser", engineHandler.RegulariserReprise).Methods("POST")

	// Reports négatifs
	api.HandleFunc("/reports", reportHandler.Lister).Methods("GET")

	// Bordereaux
	api.HandleFunc("/bordereaux/generer", engineHandler.GenererBordereau).Methods("POST")
	api.HandleFunc("/bordereaux", bordereauHandler.Lister).Methods("GET")
	api.HandleFunc("/bordereaux/{id}", bordereauHandler.Get).Methods("GET")
	api.HandleFunc("/bordereaux/{id}/valider", engineHandler.ValiderBordereau).Methods("POST")
	api.HandleFunc("/bordereaux/{id}/exporter", engineHandler.ExporterBordereau).Methods("POST")
	api.HandleFunc("/bordereaux/{id}/archiver", engineHandler.ArchiverBordereau).Methods("POST")

	// Audit
	api.HandleFunc("/audit", auditHandler.Lister).Methods("GET")
	api.HandleFunc("/audit/{scope}/{refId}", auditHandler.Historique).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("serveur démarré", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		logger.Fatal("arrêt du serveur", zap.Error(err))
	}
}

func migrer(conn *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		statut.Migrate,
		apporteur.Migrate,
		contrat.Migrate,
		bareme.Migrate,
		palier.Migrate,
		commission.Migrate,
		recurrence.Migrate,
		reprise.Migrate,
		report.Migrate,
		bordereau.Migrate,
		lignebordereau.Migrate,
		audit.Migrate,
	}
	for _, m := range migrations {
		if err := m(conn); err != nil {
			return err
		}
	}
	return nil
}
