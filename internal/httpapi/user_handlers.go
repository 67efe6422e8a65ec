package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"swiftride.org/internal/auth"
	"swiftride.org/internal/obs"
)

type registerUserRequest struct {
	Fullname auth.Fullname `json:"fullname"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleUserRegister(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := validateCredentials(req.Fullname, req.Email, req.Password); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	token, _, err := a.svc.RegisterUser(r.Context(), auth.RegisterUserInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyExists) {
			obs.AuthAttempt("user", "register", "duplicate")
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		obs.AuthAttempt("user", "register", "error")
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}
	obs.AuthAttempt("user", "register", "success")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   token,
	})
}

func (a *API) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := a.svc.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.AuthAttempt("user", "login", "rejected")
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		obs.AuthAttempt("user", "login", "error")
		writeMessage(w, http.StatusInternalServerError, "Login failed.")
		return
	}
	obs.AuthAttempt("user", "login", "success")
	setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (a *API) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (a *API) handleUserLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	if err := a.svc.Logout(r.Context(), token); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Logout failed.")
		return
	}
	obs.Revocation()
	clearTokenCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func validateCredentials(fullname auth.Fullname, email, password string) []fieldError {
	var errs []fieldError
	if len(strings.TrimSpace(fullname.Firstname)) < 3 {
		errs = append(errs, fieldError{Msg: "First name must be at least 3 characters long", Path: "fullname.firstname"})
	}
	if !validEmail(email) {
		errs = append(errs, fieldError{Msg: "Invalid Email", Path: "email"})
	}
	if len(password) < 6 {
		errs = append(errs, fieldError{Msg: "Password must be at least 6 characters long", Path: "password"})
	}
	return errs
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	return len(email) >= 5 && strings.Count(email, "@") == 1
}
