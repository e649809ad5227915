package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/http/handlers"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Applicants     *handlers.ApplicantsHandler
	Staff          *handlers.StaffHandler
	Groups         *handlers.GroupsHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Queue          *handlers.QueueHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/applicants/register", cfg.Applicants.Register)
	authGroup.Post("/applicants/login", cfg.Applicants.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	// Applicant portal.
	applicants := app.Group("/applicants", cfg.AuthMiddleware.Handle, auth.RequireApplicant())
	applicants.Get("/me", cfg.Applicants.Profile)
	applicants.Post("/me/password", cfg.Applicants.ChangePassword)
	applicants.Post("/me/group", cfg.Applicants.RequestGroup)
	applicants.Get("/me/group", cfg.Applicants.MyGroup)
	applicants.Post("/me/group/confirm", cfg.Applicants.ConfirmJoin)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireApplicant())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	queue := app.Group("/queue", cfg.AuthMiddleware.Handle, auth.RequireApplicant())
	queue.Post("/tickets", cfg.Tickets.TakeQueueNumber)
	queue.Get("/tickets/:id", cfg.Tickets.GetQueueTicket)

	// Staff desk. Role checks narrow per route group; admin passes all.
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Get("/me", cfg.Staff.Profile)
	staff.Post("/auth/password/change", cfg.Staff.ChangePassword)

	staffTickets := staff.Group("/tickets", auth.RequireStaffRole(domain.StaffRoleHelpdesk, domain.StaffRoleHelpdeskOffline))
	staffTickets.Get("/", cfg.StaffTickets.List)
	staffTickets.Post("/balance", cfg.StaffTickets.Balance)
	staffTickets.Get("/:id", cfg.StaffTickets.Get)
	staffTickets.Post("/:id/messages", cfg.StaffTickets.AddMessage)
	staffTickets.Patch("/:id/status", cfg.StaffTickets.UpdateStatus)
	staffTickets.Patch("/:id/priority", cfg.StaffTickets.UpdatePriority)
	staffTickets.Patch("/:id/assignment", cfg.StaffTickets.Assign)
	staffTickets.Get("/:id/history", cfg.StaffTickets.History)

	staffQueue := staff.Group("/queue", auth.RequireStaffRole(domain.StaffRoleHelpdeskOffline))
	staffQueue.Get("/", cfg.Queue.ListToday)
	staffQueue.Post("/counters/:id/call-next", cfg.Queue.CallNext)
	staffQueue.Post("/counters/:id/recall", cfg.Queue.Recall)
	staffQueue.Post("/counters/:id/start-serving", cfg.Queue.StartServing)
	staffQueue.Post("/counters/:id/complete", cfg.Queue.Complete)
	staffQueue.Post("/counters/:id/skip", cfg.Queue.Skip)

	staffGroups := staff.Group("/groups", auth.RequireStaffRole(domain.StaffRoleContent))
	staffGroups.Get("/", cfg.Groups.List)
	staffGroups.Post("/", cfg.Groups.Create)
	staffGroups.Patch("/:id", cfg.Groups.Update)
	staffGroups.Delete("/:id", cfg.Groups.Delete)

	// Category catalog is readable by any staff role.
	staff.Get("/categories", auth.RequireStaffRole(), cfg.Admin.ListCategories)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/staff", cfg.Admin.CreateStaff)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Get("/staff/:id", cfg.Admin.GetStaff)
	admin.Patch("/staff/:id", cfg.Admin.UpdateStaff)
	admin.Put("/operators", cfg.Admin.RegisterOperator)
	admin.Get("/operators", cfg.Admin.ListOperators)
	admin.Post("/counters", cfg.Admin.CreateCounter)
	admin.Get("/counters", cfg.Admin.ListCounters)
	admin.Patch("/counters/:id", cfg.Admin.UpdateCounter)
	admin.Post("/counters/:id/claim", cfg.Admin.ClaimCounter)
	admin.Post("/counters/:id/release", cfg.Admin.ReleaseCounter)
	admin.Post("/categories", cfg.Admin.CreateCategory)
	admin.Get("/categories", cfg.Admin.ListCategories)
	admin.Delete("/categories/:id", cfg.Admin.DeleteCategory)
	admin.Get("/stats", cfg.Admin.Stats)
}
