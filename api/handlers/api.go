package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shakerpd/jail-roster-api/api"
	"github.com/shakerpd/jail-roster-api/api/scheduler"
	"github.com/shakerpd/jail-roster-api/config"
	"github.com/shakerpd/jail-roster-api/databases"
	"github.com/shakerpd/jail-roster-api/models"
	"github.com/shakerpd/jail-roster-api/mugshots"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Photos    mugshots.Store
	dbHelper  databases.DatabaseHelper
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.LoggingMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	auth := Auth{DB: databases.NewUserDatabase(a.dbHelper)}
	roster := Roster{DB: databases.NewRosterDatabase(a.dbHelper), Photos: a.Photos}
	photo := Photo{DB: databases.NewRosterDatabase(a.dbHelper), Store: a.Photos}
	export := Export{DB: databases.NewRosterDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api").Subrouter()

	apiCreate.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/logout", http.HandlerFunc(auth.LogoutHandler)).Methods("POST")
	apiCreate.Handle("/auth/me", api.RequireSession(http.HandlerFunc(auth.MeHandler))).Methods("GET")
	apiCreate.Handle("/auth/change-password", api.RequireSession(http.HandlerFunc(auth.ChangePasswordHandler))).Methods("POST")

	apiCreate.Handle("/roster/clear", api.RequireRole(models.RoleAdmin, http.HandlerFunc(roster.ClearRosterHandler))).Methods("POST")
	apiCreate.Handle("/roster/export/pdf", api.RequireSession(http.HandlerFunc(export.ExportPDFHandler))).Methods("GET")
	apiCreate.Handle("/roster/export/pdf/email", api.RequireSession(http.HandlerFunc(export.EmailReportHandler))).Methods("POST")
	apiCreate.Handle("/roster/export/xlsx", api.RequireSession(http.HandlerFunc(export.ExportExcelHandler))).Methods("GET")
	apiCreate.Handle("/roster/import/xlsx", api.RequireRole(models.RoleSupervisor, http.HandlerFunc(export.ImportExcelHandler))).Methods("POST")
	apiCreate.Handle("/roster/export/json", api.RequireSession(http.HandlerFunc(export.ExportJSONHandler))).Methods("GET")
	apiCreate.Handle("/roster/import/json", api.RequireRole(models.RoleAdmin, http.HandlerFunc(export.ImportJSONHandler))).Methods("POST")

	apiCreate.Handle("/roster", api.RequireSession(http.HandlerFunc(roster.RosterHandler))).Methods("GET")
	apiCreate.Handle("/roster", api.RequireSession(http.HandlerFunc(roster.CreateRosterHandler))).Methods("POST")
	apiCreate.Handle("/roster/{record_id}", api.RequireSession(http.HandlerFunc(roster.RosterByIDHandler))).Methods("GET")
	apiCreate.Handle("/roster/{record_id}", api.RequireSession(http.HandlerFunc(roster.UpdateRosterHandler))).Methods("PUT")
	apiCreate.Handle("/roster/{record_id}", api.RequireRole(models.RoleAdmin, http.HandlerFunc(roster.DeleteRosterHandler))).Methods("DELETE")
	apiCreate.Handle("/roster/{record_id}/photo", api.RequireSession(http.HandlerFunc(photo.UploadPhotoHandler))).Methods("POST")
	apiCreate.Handle("/roster/{record_id}/photo", api.RequireSession(http.HandlerFunc(photo.PhotoHandler))).Methods("GET")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("jail-roster-api has connected to the database")

	if cloudinaryURL := os.Getenv("CLOUDINARY_URL"); cloudinaryURL != "" {
		store, err := mugshots.NewCloudinaryStore(cloudinaryURL)
		if err != nil {
			zap.S().With(err).Error("failed to initialize cloudinary store")
			return err
		}
		a.Photos = store
		zap.S().Info("serving mugshots from cloudinary")
	} else {
		a.Photos = mugshots.NewMongoStore(databases.NewMugshotDatabase(a.dbHelper))
	}

	a.scheduler = scheduler.NewScheduler(databases.NewRosterDatabase(a.dbHelper))
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
