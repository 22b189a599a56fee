package model

import "time"

type Building struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	MaxCapacity int       `json:"maxCapacity"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateBuildingRequest struct {
	Name        string `json:"name"`
	MaxCapacity int    `json:"maxCapacity"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Batch struct {
	ID           int64     `json:"id"`
	BatchNumber  string    `json:"batchNumber"`
	Strain       string    `json:"strain"`
	ChickenCount int       `json:"chickenCount"`
	ArrivalDate  string    `json:"arrivalDate"`
	PurchasePrice float64  `json:"purchasePrice"`
	BuildingID   *int64    `json:"buildingId"`
	BuildingName *string   `json:"buildingName"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	CreatedByID  int64     `json:"createdById"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateBatchRequest struct {
	BatchNumber   string  `json:"batchNumber"`
	Strain        string  `json:"strain"`
	ChickenCount  int     `json:"chickenCount"`
	ArrivalDate   string  `json:"arrivalDate"`
	PurchasePrice float64 `json:"purchasePrice"`
	BuildingID    *int64  `json:"buildingId,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Stock item types accepted by the backend.
const (
	StockTypeFeed    = "Feed"
	StockTypeVaccine = "Vaccine"
	StockTypeVitamin = "Vitamin"
)

func ValidStockType(t string) bool {
	switch t {
	case StockTypeFeed, StockTypeVaccine, StockTypeVitamin:
		return true
	}
	return false
}

type StockItem struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Name      *string   `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateStockRequest struct {
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}
