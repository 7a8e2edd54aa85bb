package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// CabinRequest is the body of cabin create and update requests.
type CabinRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=50"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Discount    float64  `json:"discount" validate:"gte=0"`
	Image       string   `json:"image" validate:"omitempty,url"`
	Amenities   []string `json:"amenities" validate:"dive,required,max=50"`
	Status      string   `json:"status" validate:"omitempty,oneof=available maintenance inactive"`
}

func (req CabinRequest) apply(cabin *models.Cabin) {
	cabin.Name = req.Name
	cabin.Description = req.Description
	cabin.Capacity = req.Capacity
	cabin.Price = req.Price
	cabin.Discount = req.Discount
	cabin.Image = req.Image
	cabin.Amenities = req.Amenities
	if req.Status != "" {
		cabin.Status = req.Status
	}
}

// BulkDiscountRequest applies one discount to several cabins.
type BulkDiscountRequest struct {
	CabinIDs []string `json:"cabinIds" validate:"required,min=1,dive,required"`
	Discount float64  `json:"discount" validate:"gte=0"`
}

// BulkDiscountResponse reports how many cabins were changed.
type BulkDiscountResponse struct {
	Updated int `json:"updated"`
}

// ListCabins returns all cabins.
func ListCabins(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cabins.List(r.Context())
		if err != nil {
			writeServiceError(w, logger, err, "Failed to list cabins")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, list)
	}
}

// GetCabin returns a single cabin.
func GetCabin(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cabin, err := cabins.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, logger, err, "Failed to get cabin")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, cabin)
	}
}

// CreateCabin creates a new cabin.
func CreateCabin(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CabinRequest
		if !decodeBody(w, r, &req) {
			return
		}

		cabin := &models.Cabin{}
		req.apply(cabin)
		if err := cabins.Create(r.Context(), cabin); err != nil {
			writeServiceError(w, logger, err, "Failed to create cabin")
			return
		}

		logger.Info("cabin created", zap.String("cabin_id", cabin.ID), zap.String("name", cabin.Name))
		middleware.WriteJSON(w, http.StatusCreated, cabin)
	}
}

// UpdateCabin replaces the editable fields of a cabin.
func UpdateCabin(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cabin, err := cabins.GetByID(ctx, mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, logger, err, "Failed to get cabin")
			return
		}

		var req CabinRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.apply(cabin)

		if err := cabins.Update(ctx, cabin); err != nil {
			writeServiceError(w, logger, err, "Failed to update cabin")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, cabin)
	}
}

// DeleteCabin removes a cabin that has no active bookings.
func DeleteCabin(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := cabins.Delete(r.Context(), id); err != nil {
			writeServiceError(w, logger, err, "Failed to delete cabin")
			return
		}

		logger.Info("cabin deleted", zap.String("cabin_id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// BulkDiscount sets one discount on many cabins, all or nothing.
func BulkDiscount(cabins *storage.CabinRepository, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkDiscountRequest
		if !decodeBody(w, r, &req) {
			return
		}

		updated, err := cabins.BulkDiscount(r.Context(), req.CabinIDs, req.Discount)
		if err != nil {
			writeServiceError(w, logger, err, "Failed to apply discount")
			return
		}

		logger.Info("bulk discount applied", zap.Int("cabins", updated), zap.Float64("discount", req.Discount))
		middleware.WriteJSON(w, http.StatusOK, BulkDiscountResponse{Updated: updated})
	}
}
