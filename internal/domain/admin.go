package domain

import "time"

// AdminAccount binds clinic staff credentials to the one provider they manage.
type AdminAccount struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProviderName string    `json:"providerName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
