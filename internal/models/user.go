package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Diet preferences.
const (
	DietNone        = "NONE"
	DietVegetarian  = "VEGETARIAN"
	DietVegan       = "VEGAN"
	DietPescatarian = "PESCATARIAN"
)

// ValidDiet reports whether s is one of the supported diet preferences.
func ValidDiet(s string) bool {
	switch s {
	case DietNone, DietVegetarian, DietVegan, DietPescatarian:
		return true
	}
	return false
}

// Address is an optional user address block.
type Address struct {
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	FullAddress string  `json:"fullAddress,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
}

// User represents a row in the PostgreSQL users table.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	Username       string    `json:"username,omitempty"`
	Password       string    `json:"-"` // never serialize
	DisplayName    string    `json:"displayName"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	Role           string    `json:"role"`
	Age            int       `json:"age,omitempty"`
	Address        *Address  `json:"address,omitempty"`
	Allergies      []string  `json:"allergies"`
	DietPreference string    `json:"dietPreference"`
	ActiveFridgeID *string   `json:"activeFridgeId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MemberProfile is the lightweight projection returned by member listings.
type MemberProfile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON body for POST /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse carries an issued token pair alongside the user.
type TokenResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// UpdateProfileRequest is the JSON body for PUT /users/me. Pointer fields
// distinguish "leave unchanged" from "set to zero value".
type UpdateProfileRequest struct {
	DisplayName    *string   `json:"displayName"`
	Username       *string   `json:"username"`
	Age            *int      `json:"age"`
	Address        *Address  `json:"address"`
	Allergies      *[]string `json:"allergies"`
	DietPreference *string   `json:"dietPreference"`
}
