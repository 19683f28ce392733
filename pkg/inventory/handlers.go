package inventory

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/contextkeys"
	"github.com/smartsupplypro/inventory/pkg/httputil"
)

// Handler serves the inventory, supplier and analytics endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler for the inventory API.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the inventory API to the router. Authorization
// happens in the middleware gate before these handlers run; the only
// policy applied here is the field-level one inside the service.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory/items", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/api/inventory/items", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/api/inventory/items/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/api/inventory/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/api/inventory/items/{id}", h.DeleteItem).Methods(http.MethodDelete)

	router.HandleFunc("/api/suppliers", h.ListSuppliers).Methods(http.MethodGet)
	router.HandleFunc("/api/suppliers", h.CreateSupplier).Methods(http.MethodPost)
	router.HandleFunc("/api/suppliers/{id}", h.GetSupplier).Methods(http.MethodGet)
	router.HandleFunc("/api/suppliers/{id}", h.DeleteSupplier).Methods(http.MethodDelete)

	router.HandleFunc("/api/analytics/summary", h.GetSummary).Methods(http.MethodGet)
}

func authContext(r *http.Request) authz.Context {
	if authCtx, ok := r.Context().Value(contextkeys.AuthorizationKey).(authz.Context); ok {
		return authCtx
	}
	return authz.Anonymous(false)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if items == nil {
		items = []*Item{}
	}
	httputil.WriteSuccess(w, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathVar(w, r, "id")
	if !ok {
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var update ItemUpdate
	if !httputil.ParseJSONOrError(w, r, &update) {
		return
	}
	if err := update.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	item := &Item{
		Name:            update.Name,
		SupplierID:      update.SupplierID,
		Quantity:        update.Quantity,
		Price:           update.Price,
		MinimumQuantity: update.MinimumQuantity,
	}
	created, err := h.service.CreateItem(r.Context(), authContext(r), item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathVar(w, r, "id")
	if !ok {
		return
	}
	var update ItemUpdate
	if !httputil.ParseJSONOrError(w, r, &update) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), authContext(r), id, update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteItem(r.Context(), authContext(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if suppliers == nil {
		suppliers = []*Supplier{}
	}
	httputil.WriteSuccess(w, suppliers)
}

func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathVar(w, r, "id")
	if !ok {
		return
	}
	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, supplier)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier Supplier
	if !httputil.ParseJSONOrError(w, r, &supplier) {
		return
	}

	created, err := h.service.CreateSupplier(r.Context(), authContext(r), &supplier)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathVar(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSupplier(r.Context(), authContext(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, summary)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var restricted *ErrFieldsRestricted
	switch {
	case errors.As(err, &restricted):
		httputil.WriteFieldForbidden(w, restricted.Error(), restricted.Fields)
	case errors.Is(err, ErrNotFound):
		httputil.WriteNotFound(w, "not found")
	default:
		httputil.WriteInternalError(w, err)
	}
}
