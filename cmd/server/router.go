package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/clinicdesk/internal/api"
	apiMiddleware "github.com/phrazzld/clinicdesk/internal/api/middleware"
)

// setupRouter creates the router with middleware and every route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	inventoryHandler := api.NewInventoryHandler(app.clinic, app.logger)
	appointmentHandler := api.NewAppointmentHandler(app.clinic, app.logger)
	reminderHandler := api.NewReminderHandler(app.clinic, app.logger)
	ledgerHandler := api.NewLedgerHandler(app.clinic, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Inventory
		r.Get("/inventory/directories", inventoryHandler.ListDirectories)
		r.Post("/inventory/directories", inventoryHandler.CreateDirectory)
		r.Put("/inventory/directories/threshold", inventoryHandler.SetDirectoryThreshold)
		r.Get("/inventory/medicines", inventoryHandler.ListMedicines)
		r.Post("/inventory/medicines", inventoryHandler.CreateMedicine)
		r.Get("/inventory/medicines/{id}", inventoryHandler.GetMedicine)
		r.Post("/inventory/medicines/purchase", inventoryHandler.PurchaseMedicine)
		r.Post("/inventory/medicines/dispense", inventoryHandler.DispenseMedicine)
		r.Put("/inventory/medicines/threshold", inventoryHandler.SetMedicineThreshold)
		r.Put("/inventory/medicines/price", inventoryHandler.SetPrice)

		// Appointments
		r.Get("/appointments", appointmentHandler.ListAppointments)
		r.Post("/appointments", appointmentHandler.CreateAppointment)
		r.Get("/appointments/free-slots", appointmentHandler.FreeSlots)
		r.Get("/appointments/{id}", appointmentHandler.GetAppointment)
		r.Delete("/appointments/{id}", appointmentHandler.DeleteAppointment)

		// Reminders
		r.Get("/reminders", reminderHandler.ListReminders)
		r.Post("/reminders", reminderHandler.CreateReminder)
		r.Get("/reminders/{id}", reminderHandler.GetReminder)
		r.Delete("/reminders/{id}", reminderHandler.DeleteReminder)

		// Finances
		r.Post("/consultations", ledgerHandler.EndConsultation)
		r.Get("/consultation-fee", ledgerHandler.GetConsultationFee)
		r.Put("/consultation-fee", ledgerHandler.SetConsultationFee)
		r.Get("/records", ledgerHandler.Records)
		r.Get("/statistics", ledgerHandler.Statistics)
	})

	r.Handle("/metrics", app.metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
