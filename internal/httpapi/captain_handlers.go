package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"swiftride.org/internal/auth"
	"swiftride.org/internal/obs"
)

type registerCaptainRequest struct {
	Fullname auth.Fullname `json:"fullname"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Vehicle  auth.Vehicle  `json:"vehicle"`
}

func (a *API) handleCaptainRegister(w http.ResponseWriter, r *http.Request) {
	var req registerCaptainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	errs := validateCredentials(req.Fullname, req.Email, req.Password)
	errs = append(errs, validateVehicle(req.Vehicle)...)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	token, _, err := a.svc.RegisterCaptain(r.Context(), auth.RegisterCaptainInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Vehicle:  req.Vehicle,
	})
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			obs.AuthAttempt("captain", "register", "duplicate")
			writeMessage(w, http.StatusBadRequest, "Captain already exists")
			return
		}
		obs.AuthAttempt("captain", "register", "error")
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}
	obs.AuthAttempt("captain", "register", "success")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Captain registered successfully",
		"token":   token,
	})
}

func (a *API) handleCaptainLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, captain, err := a.svc.LoginCaptain(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.AuthAttempt("captain", "login", "rejected")
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		obs.AuthAttempt("captain", "login", "error")
		writeMessage(w, http.StatusInternalServerError, "Login failed.")
		return
	}
	obs.AuthAttempt("captain", "login", "success")
	setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"captain": captain,
	})
}

func (a *API) handleCaptainProfile(w http.ResponseWriter, r *http.Request) {
	captain, ok := auth.CaptainFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"captain": captain})
}

func (a *API) handleCaptainLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	if err := a.svc.Logout(r.Context(), token); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Logout failed.")
		return
	}
	obs.Revocation()
	clearTokenCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

var vehicleTypes = map[string]bool{
	"car":        true,
	"motorcycle": true,
	"auto":       true,
}

func validateVehicle(v auth.Vehicle) []fieldError {
	var errs []fieldError
	if len(strings.TrimSpace(v.Color)) < 3 {
		errs = append(errs, fieldError{Msg: "Color must be at least 3 characters long", Path: "vehicle.color"})
	}
	if len(strings.TrimSpace(v.Plate)) < 3 {
		errs = append(errs, fieldError{Msg: "Plate must be at least 3 characters long", Path: "vehicle.plate"})
	}
	if v.Capacity < 1 {
		errs = append(errs, fieldError{Msg: "Capacity must be at least 1", Path: "vehicle.capacity"})
	}
	if !vehicleTypes[v.VehicleType] {
		errs = append(errs, fieldError{Msg: "Invalid vehicle type", Path: "vehicle.vehicleType"})
	}
	return errs
}
