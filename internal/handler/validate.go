package handler

import (
	"net/http"
	"regexp"
	"strings"

	"djajbladi-console/internal/model"
	"djajbladi-console/pkg/apierror"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Moroccan mobile/landline numbers, e.g. +212697110379.
	phonePattern = regexp.MustCompile(`^\+212[5-7]\d{8}$`)
)

type fieldErrors map[string]string

func (f fieldErrors) add(field string, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apierror.NewValidation(f, http.StatusBadRequest)
}

func validateLogin(req model.LoginRequest) error {
	errs := fieldErrors{}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs.add("email", "Email is required")
	case !emailPattern.MatchString(email):
		errs.add("email", "Please enter a valid email address")
	}

	if req.Password == "" {
		errs.add("password", "Password is required")
	}

	return errs.err()
}

func validateRegister(req model.RegisterRequest) error {
	errs := fieldErrors{}

	firstName := strings.TrimSpace(req.FirstName)
	switch {
	case firstName == "":
		errs.add("firstName", "First name is required")
	case len(firstName) > 100:
		errs.add("firstName", "First name must be less than 100 characters")
	}

	lastName := strings.TrimSpace(req.LastName)
	switch {
	case lastName == "":
		errs.add("lastName", "Last name is required")
	case len(lastName) > 100:
		errs.add("lastName", "Last name must be less than 100 characters")
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs.add("email", "Email is required")
	case len(email) > 255:
		errs.add("email", "Email must be less than 255 characters")
	case !emailPattern.MatchString(email):
		errs.add("email", "Please enter a valid email address")
	}

	if len(req.Password) < 8 {
		errs.add("password", "Password must be at least 8 characters")
	}

	if req.PhoneNumber != "" && !phonePattern.MatchString(req.PhoneNumber) {
		errs.add("phoneNumber", "Please enter a valid Moroccan phone number (e.g., +212697110379)")
	}

	if req.Role != "" && !model.ValidRole(req.Role) {
		errs.add("role", "Unknown role")
	}

	return errs.err()
}

func validateBuilding(req model.CreateBuildingRequest) error {
	errs := fieldErrors{}

	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "Name is required")
	}
	if req.MaxCapacity <= 0 {
		errs.add("maxCapacity", "Max capacity must be a positive number")
	}

	return errs.err()
}

func validateBatch(req model.CreateBatchRequest) error {
	errs := fieldErrors{}

	if strings.TrimSpace(req.BatchNumber) == "" {
		errs.add("batchNumber", "Batch number is required")
	}
	if strings.TrimSpace(req.Strain) == "" {
		errs.add("strain", "Strain is required")
	}
	if req.ChickenCount <= 0 {
		errs.add("chickenCount", "Chicken count must be a positive number")
	}
	if strings.TrimSpace(req.ArrivalDate) == "" {
		errs.add("arrivalDate", "Arrival date is required")
	}
	if req.PurchasePrice <= 0 {
		errs.add("purchasePrice", "Purchase price must be a positive number")
	}
	if req.BuildingID != nil && *req.BuildingID <= 0 {
		errs.add("buildingId", "Building is invalid")
	}

	return errs.err()
}

func validateStock(req model.CreateStockRequest) error {
	errs := fieldErrors{}

	if !model.ValidStockType(req.Type) {
		errs.add("type", "Type must be Feed, Vaccine or Vitamin")
	}
	if req.Quantity <= 0 {
		errs.add("quantity", "Quantity must be a positive number")
	}
	if strings.TrimSpace(req.Unit) == "" {
		errs.add("unit", "Unit is required")
	}

	return errs.err()
}
