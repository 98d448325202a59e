package model

import (
	"strings"
	"time"
)

// Contact is a row of the contacts table.
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Notes     string    `json:"notes" db:"notes"`
	AvatarKey *string   `json:"avatarKey" db:"avatar_key"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ContactInput is the body accepted by the save action. A zero ID creates a
// new contact.
type ContactInput struct {
	ID    int64   `json:"id" validate:"omitempty,gt=0"`
	Name  string  `json:"name" validate:"required,max=120"`
	Email string  `json:"email" validate:"required,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,e164"`
	Notes string  `json:"notes" validate:"max=2000"`
}

// Normalize trims the input and lowercases the email.
func (in *ContactInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			in.Phone = nil
		} else {
			in.Phone = &phone
		}
	}
}

// ContactFilter narrows the contacts search.
type ContactFilter struct {
	// Term matches name or email, case-insensitive.
	Term string

	// CreatedBy restricts to contacts owned by a user. Empty means any owner.
	CreatedBy string

	// Sort is one of name, email, created_at; Desc flips the order.
	Sort string
	Desc bool
}
