package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/api"
	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/databases"
	"github.com/linesmerrill/shift-handover/export"
	"github.com/linesmerrill/shift-handover/metrics"
	"github.com/linesmerrill/shift-handover/session"
)

// App stores the router and the report state, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Store    *databases.LocalStore
	Reports  databases.ReportDatabase
	Editor   *session.Editor
	Exporter *export.Exporter
}

// Today returns the local date in the form reports are keyed by
func Today() string {
	return time.Now().Format("2006-01-02")
}

// New creates a new mux router and all the routes
func (a *App) New(ctx context.Context) *mux.Router {
	// setup go-guardian for middleware
	g := api.NewGuard(ctx, a.Config.Auth)

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(a.Config.Server.RequestTimeout))

	rep := Report{
		Editor:    a.Editor,
		RDB:       a.Reports,
		Exporter:  a.Exporter,
		ExportDir: a.Config.Export.Dir,
	}

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	r.Handle("/metrics", metrics.Get().Handler()).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	if g.Enabled() {
		apiCreate.Handle("/auth/token", g.Middleware(http.HandlerFunc(g.CreateToken))).Methods("POST")
		apiCreate.Handle("/auth/logout", g.Middleware(http.HandlerFunc(g.RevokeToken))).Methods("DELETE")
	}

	apiCreate.Handle("/reports", g.Middleware(http.HandlerFunc(rep.ReportDatesHandler))).Methods("GET")
	apiCreate.Handle("/report", g.Middleware(http.HandlerFunc(rep.CurrentReportHandler))).Methods("GET")
	apiCreate.Handle("/report/date", g.Middleware(http.HandlerFunc(rep.SwitchDateHandler))).Methods("PUT")
	apiCreate.Handle("/report/fields/{field}", g.Middleware(http.HandlerFunc(rep.UpdateFieldHandler))).Methods("PUT")
	apiCreate.Handle("/report/team/{role}", g.Middleware(http.HandlerFunc(rep.UpdateTeamHandler))).Methods("PUT")
	apiCreate.Handle("/report/lists/{list}", g.Middleware(http.HandlerFunc(rep.AddItemHandler))).Methods("POST")
	apiCreate.Handle("/report/lists/{list}/{id}/{field}", g.Middleware(http.HandlerFunc(rep.UpdateItemHandler))).Methods("PUT")
	apiCreate.Handle("/report/lists/{list}/{id}", g.Middleware(http.HandlerFunc(rep.RemoveItemHandler))).Methods("DELETE")
	apiCreate.Handle("/report/save", g.Middleware(http.HandlerFunc(rep.SaveHandler))).Methods("POST")
	apiCreate.Handle("/report/export", g.Middleware(http.HandlerFunc(rep.ExportHandler))).Methods("POST")

	return r
}

// Initialize opens the local store, loads today's report and builds the router
func (a *App) Initialize(ctx context.Context) error {
	store, err := databases.NewLocalStore(a.Config.Storage)
	if err != nil {
		zap.S().With(err).Error("failed to open report store")
		return err
	}
	a.Store = store
	zap.S().Infow("shift-handover opened the report store", "path", store.Path())

	a.Reports = databases.NewReportDatabase(store)
	a.Editor = session.NewEditor(ctx, a.Reports, Today())
	a.Exporter = export.NewExporter(a.Config.Export)

	// initialize api router
	a.Router = a.New(ctx)
	return nil
}

// Close releases the store
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
