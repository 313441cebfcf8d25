package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/payment"
)

// PublicProfile is the representation other users see. Contact details
// and payment history stay private.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Username  *string   `json:"username,omitempty"`
	FirstName *string   `json:"firstName,omitempty"`
	City      *string   `json:"city,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
}

// Profile is the full self view including payment history.
type Profile struct {
	User
	Payments []payment.Payment `json:"payments"`
}

// PublicOf builds the restricted representation of a user.
func PublicOf(u User) PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		City:      u.City,
		Avatar:    u.Avatar,
	}
}

// PublicOfAll maps a slice of users to their restricted representations.
func PublicOfAll(users []User) []PublicProfile {
	profiles := make([]PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, PublicOf(u))
	}
	return profiles
}

// ProfileOf builds the detailed self view with the user's payments attached.
func ProfileOf(db *gorm.DB, u User) (Profile, error) {
	payments, err := payment.ListForUser(db, u.ID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Payments: payments}, nil
}
