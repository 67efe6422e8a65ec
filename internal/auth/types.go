package auth

import "time"

// Kind distinguishes the two principal namespaces. Email uniqueness is
// enforced per kind, never across kinds.
type Kind string

const (
	KindUser    Kind = "user"
	KindCaptain Kind = "captain"
)

// Fullname holds the name parts shared by both principal kinds.
type Fullname struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Vehicle describes the captain's registered vehicle. Inert payload as far
// as authentication is concerned.
type Vehicle struct {
	Color       string `json:"color"`
	Plate       string `json:"plate"`
	Capacity    int    `json:"capacity"`
	VehicleType string `json:"vehicleType"`
}

// User is a rider account.
type User struct {
	ID           string    `json:"_id"`
	Fullname     Fullname  `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Captain is a driver account.
type Captain struct {
	ID           string    `json:"_id"`
	Fullname     Fullname  `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Vehicle      Vehicle   `json:"vehicle"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RevocationEntry is one row of the append-only revocation ledger.
type RevocationEntry struct {
	Token     string
	RevokedAt time.Time
}
