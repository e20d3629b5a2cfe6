package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/clinicdesk/internal/api/shared"
	"github.com/phrazzld/clinicdesk/internal/clinic"
	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryService is the part of the clinic the inventory endpoints use.
type InventoryService interface {
	AddDirectory(ctx context.Context, name string, path []string) (domain.Directory, error)
	AddMedicine(ctx context.Context, m inventory.NewMedicine) (clinic.MedicineResult, error)
	PurchaseMedicine(ctx context.Context, ref clinic.MedicineRef, quantity int, cost decimal.Decimal) (clinic.StockResult, error)
	DispenseMedicine(ctx context.Context, ref clinic.MedicineRef, quantity int) (clinic.StockResult, error)
	SetDirectoryThreshold(ctx context.Context, path []string, value int) (clinic.ThresholdResult, error)
	SetMedicineThreshold(ctx context.Context, path []string, value int) (clinic.MedicineResult, error)
	SetPrice(ctx context.Context, path []string, price decimal.Decimal) (domain.Medicine, error)
	FindMedicine(name string) (domain.Medicine, bool)
	FindMedicineByPath(path []string) (domain.Medicine, bool)
	FindMedicineByID(id uuid.UUID) (domain.Medicine, bool)
	FindDirectory(path []string) (domain.Directory, bool)
	Directories() []domain.Directory
	Medicines() []domain.Medicine
}

// InventoryHandler serves the medicine directory.
type InventoryHandler struct {
	service InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(service InventoryService, logger *slog.Logger) *InventoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryHandler{
		service: service,
		logger:  logger.With(slog.String("component", "inventory_handler")),
	}
}

// ListDirectories handles GET /api/inventory/directories. With ?path= it
// returns that directory alone.
func (h *InventoryHandler) ListDirectories(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("path"); raw != "" {
		dir, ok := h.service.FindDirectory(splitPath(raw))
		if !ok {
			HandleAPIError(w, r, domain.ErrPathNotFound)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, dir)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.service.Directories())
}

// CreateDirectory handles POST /api/inventory/directories.
func (h *InventoryHandler) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req CreateDirectoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dir, err := h.service.AddDirectory(r.Context(), req.Name, req.Path)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, dir)
}

// SetDirectoryThreshold handles PUT /api/inventory/directories/threshold.
func (h *InventoryHandler) SetDirectoryThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.SetDirectoryThreshold(r.Context(), req.Path, *req.Threshold)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	requestLogger(r, h.logger).Info("directory threshold changed",
		slog.Int("threshold", *req.Threshold),
		slog.Int("medicines", len(res.Medicines)),
		slog.Int("reminder_changes", len(res.Reminders)))
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// ListMedicines handles GET /api/inventory/medicines. With ?path= or ?name=
// it returns the single matching medicine.
func (h *InventoryHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		med domain.Medicine
		ok  bool
	)
	switch {
	case q.Get("path") != "":
		med, ok = h.service.FindMedicineByPath(splitPath(q.Get("path")))
	case q.Get("name") != "":
		med, ok = h.service.FindMedicine(q.Get("name"))
	default:
		shared.RespondWithJSON(w, r, http.StatusOK, h.service.Medicines())
		return
	}
	if !ok {
		HandleAPIError(w, r, domain.ErrMedicineNotFound)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, med)
}

// GetMedicine handles GET /api/inventory/medicines/{id}.
func (h *InventoryHandler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	med, ok := h.service.FindMedicineByID(id)
	if !ok {
		HandleAPIError(w, r, domain.ErrMedicineNotFound)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, med)
}

// CreateMedicine handles POST /api/inventory/medicines.
func (h *InventoryHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.AddMedicine(r.Context(), inventory.NewMedicine{
		Name:     req.Name,
		Quantity: req.Quantity,
		Path:     req.Path,
		Price:    req.Price,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, res)
}

// PurchaseMedicine handles POST /api/inventory/medicines/purchase.
func (h *InventoryHandler) PurchaseMedicine(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.PurchaseMedicine(r.Context(), req.toRef(), req.Quantity, *req.Cost)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	requestLogger(r, h.logger).Info("medicine purchased",
		slog.String("medicine_id", res.Medicine.ID.String()),
		slog.Int("quantity", req.Quantity),
		slog.String("cost", req.Cost.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// DispenseMedicine handles POST /api/inventory/medicines/dispense.
func (h *InventoryHandler) DispenseMedicine(w http.ResponseWriter, r *http.Request) {
	var req DispenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.DispenseMedicine(r.Context(), req.toRef(), req.Quantity)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// SetMedicineThreshold handles PUT /api/inventory/medicines/threshold.
func (h *InventoryHandler) SetMedicineThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.service.SetMedicineThreshold(r.Context(), req.Path, *req.Threshold)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}

// SetPrice handles PUT /api/inventory/medicines/price.
func (h *InventoryHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	med, err := h.service.SetPrice(r.Context(), req.Path, *req.Price)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, med)
}
