package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/security"
	"gearbook-backend/internal/service"
	"gearbook-backend/internal/storage"
)

// Server wires the lifecycle services to their REST routes.
type Server struct {
	router *mux.Router

	tokens security.TokenManager
	perms  security.PermissionChecker

	reservations  service.ReservationService
	availability  service.AvailabilityService
	ledger        service.CreditLedger
	movements     service.MovementRecorder
	sections      service.SectionService
	products      service.ProductService
	notifications service.NotificationService
	audit         service.AuditService

	blobs         storage.BlobStore
	maxUploadSize int64
}

type Deps struct {
	Tokens security.TokenManager
	Perms  security.PermissionChecker

	Reservations  service.ReservationService
	Availability  service.AvailabilityService
	Ledger        service.CreditLedger
	Movements     service.MovementRecorder
	Sections      service.SectionService
	Products      service.ProductService
	Notifications service.NotificationService
	Audit         service.AuditService

	Blobs           storage.BlobStore
	MaxUploadSizeMB int64
}

func NewServer(deps Deps) *Server {
	maxUpload := deps.MaxUploadSizeMB
	if maxUpload <= 0 {
		maxUpload = 10
	}
	s := &Server{
		router:        mux.NewRouter(),
		tokens:        deps.Tokens,
		perms:         deps.Perms,
		reservations:  deps.Reservations,
		availability:  deps.Availability,
		ledger:        deps.Ledger,
		movements:     deps.Movements,
		sections:      deps.Sections,
		products:      deps.Products,
		notifications: deps.Notifications,
		audit:         deps.Audit,
		blobs:         deps.Blobs,
		maxUploadSize: maxUpload * 1024 * 1024,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Photo transfer endpoints authenticate by unguessable URL, the same
	// contract a presigned cloud URL would give.
	if s.blobs != nil {
		api.HandleFunc("/upload/{token}", s.handlePhotoUpload).Methods("PUT")
		api.HandleFunc("/download/{key}", s.handlePhotoDownload).Methods("GET")
	}

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	// Self-service
	authed.HandleFunc("/reservations", s.handleCreateReservation).Methods("POST")
	authed.HandleFunc("/reservations", s.handleListMyReservations).Methods("GET")
	authed.HandleFunc("/reservations/{id:[0-9]+}", s.handleGetReservation).Methods("GET")
	authed.HandleFunc("/reservations/{id:[0-9]+}/cancel", s.handleCancelReservation).Methods("POST")
	authed.HandleFunc("/reservations/{id:[0-9]+}/extension-check", s.handleCheckExtension).Methods("GET")
	authed.HandleFunc("/reservations/{id:[0-9]+}/extend", s.handleExtendReservation).Methods("POST")
	authed.HandleFunc("/reservations/{id:[0-9]+}/qrcode", s.handleReservationQRCode).Methods("GET")

	authed.HandleFunc("/products/{id:[0-9]+}/availability", s.handleCheckAvailability).Methods("GET")
	authed.HandleFunc("/products/{id:[0-9]+}/calendar", s.handleMonthlyCalendar).Methods("GET")
	authed.HandleFunc("/products/{id:[0-9]+}", s.handleGetProduct).Methods("GET")
	authed.HandleFunc("/sections", s.handleListSections).Methods("GET")
	authed.HandleFunc("/sections/{id:[0-9]+}", s.handleGetSection).Methods("GET")
	authed.HandleFunc("/sections/{id:[0-9]+}/products", s.handleListSectionProducts).Methods("GET")

	authed.HandleFunc("/credits/balance", s.handleGetBalance).Methods("GET")
	authed.HandleFunc("/credits/transactions", s.handleListTransactions).Methods("GET")
	authed.HandleFunc("/credits/summary", s.handleLedgerSummary).Methods("GET")

	authed.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", s.handleMarkNotificationRead).Methods("POST")

	// Desk operations
	authed.Handle("/reservations/{id:[0-9]+}/checkout",
		s.requirePermission(security.PermReservationManage, s.handleCheckout)).Methods("POST")
	authed.Handle("/reservations/{id:[0-9]+}/return",
		s.requirePermission(security.PermReservationManage, s.handleReturn)).Methods("POST")
	authed.Handle("/qr/resolve",
		s.requirePermission(security.PermReservationManage, s.handleResolveQRCode)).Methods("POST")
	authed.Handle("/products/{id:[0-9]+}/reservations",
		s.requirePermission(security.PermReservationManage, s.handleListProductReservations)).Methods("GET")
	authed.Handle("/reservations/{id:[0-9]+}/admin-notes",
		s.requirePermission(security.PermReservationManage, s.handleSetAdminNotes)).Methods("PUT")

	// Audit trail
	authed.Handle("/audit",
		s.requirePermission(security.PermAuditView, s.handleListAuditEntries)).Methods("GET")

	// Credit administration
	authed.Handle("/reservations/{id:[0-9]+}/refund",
		s.requirePermission(security.PermCreditManage, s.handleRefund)).Methods("POST")
	authed.Handle("/reservations/{id:[0-9]+}/penalty",
		s.requirePermission(security.PermCreditManage, s.handlePenalty)).Methods("POST")
	authed.Handle("/users/{id:[0-9]+}/credits",
		s.requirePermission(security.PermCreditManage, s.handleAdjustCredits)).Methods("POST")

	// Inventory administration
	authed.Handle("/products",
		s.requirePermission(security.PermInventoryManage, s.handleCreateProduct)).Methods("POST")
	authed.Handle("/products/{id:[0-9]+}",
		s.requirePermission(security.PermInventoryManage, s.handleUpdateProduct)).Methods("PUT")
	authed.Handle("/products/{id:[0-9]+}/status",
		s.requirePermission(security.PermInventoryManage, s.handleSetProductStatus)).Methods("POST")
	authed.Handle("/products/{id:[0-9]+}/movements",
		s.requirePermission(security.PermInventoryManage, s.handleListProductMovements)).Methods("GET")
	authed.Handle("/reservations/{id:[0-9]+}/movements",
		s.requirePermission(security.PermInventoryManage, s.handleListReservationMovements)).Methods("GET")
	authed.Handle("/movements",
		s.requirePermission(security.PermInventoryManage, s.handleRecordMovement)).Methods("POST")
	authed.Handle("/photos/upload-url",
		s.requirePermission(security.PermInventoryManage, s.handlePhotoUploadURL)).Methods("POST")

	// Section administration
	authed.Handle("/sections",
		s.requirePermission(security.PermSectionManage, s.handleCreateSection)).Methods("POST")
	authed.Handle("/sections/{id:[0-9]+}",
		s.requirePermission(security.PermSectionManage, s.handleUpdateSection)).Methods("PUT")
	authed.Handle("/sections/{id:[0-9]+}",
		s.requirePermission(security.PermSectionManage, s.handleDeleteSection)).Methods("DELETE")
	authed.Handle("/sections/{id:[0-9]+}/closures",
		s.requirePermission(security.PermSectionManage, s.handleAddClosure)).Methods("POST")
	authed.Handle("/sections/{id:[0-9]+}/closures/{closureID:[0-9]+}",
		s.requirePermission(security.PermSectionManage, s.handleRemoveClosure)).Methods("DELETE")
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	message := err.Error()
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindInvalidQRCode:
		status = http.StatusUnprocessableEntity
	default:
		logger.Error("Internal error", "error", err)
		kind = "INTERNAL"
		message = "internal server error"
	}
	respond(w, status, errorEnvelope{Error: errorBody{Kind: string(kind), Message: message}})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ValidationError("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("invalid %s %q", name, raw)
	}
	return int32(id), nil
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}

type pagedResponse struct {
	Items any   `json:"items"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}
