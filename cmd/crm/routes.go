package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	adminsweep "shift-crm/http-server/admin/sweep"
	getdirectory "shift-crm/http-server/directory/get"
	reportexcel "shift-crm/http-server/report/excel"
	getreport "shift-crm/http-server/report/get"
	"shift-crm/http-server/settings"
	deleteshift "shift-crm/http-server/shift/delete"
	getshift "shift-crm/http-server/shift/get"
	saveshift "shift-crm/http-server/shift/save"
	"shift-crm/http-server/shift/transition"
	"shift-crm/internal/config"
	"shift-crm/internal/constants"
	"shift-crm/internal/middleware/auth"
	"shift-crm/internal/storage/tiered"
)

func routes(cfg config.Config, log *slog.Logger, store *tiered.Store, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(api chi.Router) {
		api.Group(func(r chi.Router) {
			r.Use(auth.SessionAuth(cfg.Auth.JWTSecret))

			// чтение доступно всем ролям
			r.Get("/shifts", getshift.ListShifts(log, svc.shifts))
			r.Get("/shifts/{id}", getshift.GetShift(log, svc.shifts))
			r.Get("/directory/{kind}", getdirectory.GetDirectory(log, store))

			// смены ведут владелец и операторы
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(constants.RoleOwner, constants.RoleOperator))

				r.Post("/shifts", saveshift.CreateShift(log, svc.shifts))
				r.Put("/shifts/{id}/entries", saveshift.SaveEntries(log, svc.shifts))
				r.Post("/shifts/{id}/start", transition.Start(log, svc.shifts))
				r.Post("/shifts/{id}/complete", transition.Complete(log, svc.shifts))
				r.Put("/shifts/{id}/reconcile", transition.Reconcile(log, svc.shifts))
				r.Delete("/shifts/{id}", deleteshift.DeleteShift(log, svc.shifts))
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(constants.RoleOwner, constants.RoleResponsible))

				r.Get("/reports/responsible", getreport.GetResponsible(log, svc.reports))
				r.Get("/settings/exchange-rate", settings.GetExchangeRate(log, svc.reports))
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(constants.RoleOwner))

				r.Get("/reports/financial", getreport.GetFinancial(log, svc.reports))
				r.Get("/reports/excel", reportexcel.GenerateReportExcel(log, svc.excel))
				r.Put("/settings/exchange-rate", settings.UpdateExchangeRate(log, svc.reports))
			})
		})

		adminRouter := chi.NewRouter()
		adminRouter.Use(auth.BasicAuth(cfg.Auth.AdminLogin, cfg.Auth.AdminPass))
		adminRouter.Post("/sweep", adminsweep.RunSweep(log, svc.sweep))

		api.Mount("/admin", adminRouter)
	})

	return router
}
