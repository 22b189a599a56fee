package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/middleware"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/service"
	"djajbladi-console/internal/tokenstore"
	"djajbladi-console/pkg/apierror"
)

// AdminHandler relays the admin pages' API calls to the backend with the
// session's bearer token attached. The role gate runs in middleware before
// any of these; handlers only need the token.
type AdminHandler struct {
	backend  *client.Client
	store    *tokenstore.Store
	capacity *service.CapacityValidator
}

func NewAdminHandler(backend *client.Client, store *tokenstore.Store, capacity *service.CapacityValidator) *AdminHandler {
	return &AdminHandler{backend: backend, store: store, capacity: capacity}
}

func (h *AdminHandler) token(r *http.Request) (string, error) {
	sid, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return "", model.ErrNoSession
	}

	token, err := h.store.AccessToken(r.Context(), sid)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", model.ErrNoSession
	}

	return token, nil
}

func (h *AdminHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	buildings, err := h.backend.Buildings(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildings)
}

func (h *AdminHandler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	building, err := h.backend.Building(r.Context(), token, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, building)
}

func (h *AdminHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateBuildingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if err := validateBuilding(payload); err != nil {
		writeError(w, err)
		return
	}

	building, err := h.backend.CreateBuilding(r.Context(), token, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, building)
}

func (h *AdminHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	batches, err := h.backend.Batches(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batches)
}

// CreateBatch runs the capacity check before the request leaves the
// gateway: a batch assigned to a building must fit in the places that
// building still has. Unassigned batches skip the check.
func (h *AdminHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if err := validateBatch(payload); err != nil {
		writeError(w, err)
		return
	}

	if payload.BuildingID != nil {
		if err := h.capacity.Validate(r.Context(), token, *payload.BuildingID, payload.ChickenCount); err != nil {
			writeError(w, err)
			return
		}
	}

	batch, err := h.backend.CreateBatch(r.Context(), token, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, batch)
}

func (h *AdminHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	stock, err := h.backend.Stock(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stock)
}

func (h *AdminHandler) GetStockItem(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.backend.StockItem(r.Context(), token, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) CreateStockItem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.CreateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if err := validateStock(payload); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.backend.CreateStockItem(r.Context(), token, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.backend.Users(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	token, err := h.token(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if err := validateRegister(payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.backend.CreateUser(r.Context(), token, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New("BAD_REQUEST", "invalid id in path", "", http.StatusBadRequest)
	}
	return id, nil
}
