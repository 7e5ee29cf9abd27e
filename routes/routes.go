package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/ocpipeline/handlers"
	"p9e.in/ocpipeline/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/api/v1/register", handlers.Register).Methods("POST")
	r.HandleFunc("/api/v1/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// User profile endpoint
	api.HandleFunc("/me", handlers.GetCurrentUser).Methods("GET")

	registerProjectRoutes(api)
	registerSubmittalRoutes(api)
	registerSpecificationRoutes(api)
	registerContractorRoutes(api)

	// Activity feed (admin and project managers)
	api.Handle("/activity",
		middleware.RequireRole([]string{"admin", "project_manager"},
			http.HandlerFunc(handlers.GetActivityLog))).Methods("GET")

	return r
}

func registerProjectRoutes(api *mux.Router) {
	h := handlers.NewProjectHandler()

	api.HandleFunc("/projects", h.ListProjects).Methods("GET")
	api.HandleFunc("/projects", h.CreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", h.UpdateProject).Methods("PUT")
	api.Handle("/projects/{id}",
		middleware.RequireRole([]string{"admin"},
			http.HandlerFunc(h.DeleteProject))).Methods("DELETE")
}

func registerSubmittalRoutes(api *mux.Router) {
	h := handlers.NewSubmittalHandler()
	intake := handlers.NewExtractionIntakeHandler()

	api.HandleFunc("/submittals", h.ListSubmittals).Methods("GET")
	api.HandleFunc("/submittals", h.CreateSubmittal).Methods("POST")
	api.HandleFunc("/submittals/stats", h.GetSubmittalStats).Methods("GET")
	api.HandleFunc("/submittals/{id}", h.GetSubmittal).Methods("GET")
	api.HandleFunc("/submittals/{id}", h.UpdateSubmittal).Methods("PUT", "PATCH")
	api.HandleFunc("/submittals/{id}/status", h.TransitionSubmittalStatus).Methods("PUT", "PATCH")
	api.HandleFunc("/submittals/{id}/reviews", h.GetSubmittalReviews).Methods("GET")
	api.Handle("/submittals/{id}",
		middleware.RequireRole([]string{"admin", "project_manager"},
			http.HandlerFunc(h.DeleteSubmittal))).Methods("DELETE")

	// Converts AI-extracted candidates into tracked submittals
	api.HandleFunc("/specifications/{id}/create-submittals", intake.CreateSubmittalsFromExtraction).Methods("POST")
}

func registerSpecificationRoutes(api *mux.Router) {
	h := handlers.NewSpecificationHandler()

	api.HandleFunc("/specifications", h.ListSpecifications).Methods("GET")
	api.HandleFunc("/specifications", h.CreateSpecification).Methods("POST")
	api.HandleFunc("/specifications/{id}", h.GetSpecification).Methods("GET")
	api.HandleFunc("/specifications/{id}/extract", h.ExtractSubmittals).Methods("POST")
	api.HandleFunc("/extractions/{id}", h.GetExtraction).Methods("GET")
}

func registerContractorRoutes(api *mux.Router) {
	h := handlers.NewContractorHandler()

	api.HandleFunc("/contractors", h.ListContractors).Methods("GET")
	api.Handle("/contractors",
		middleware.RequireRole([]string{"admin", "project_manager"},
			http.HandlerFunc(h.CreateContractor))).Methods("POST")
	api.HandleFunc("/contractors/{id}", h.GetContractor).Methods("GET")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
