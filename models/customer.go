package models

import "time"

// Customer is a registered account holder.
type Customer struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CustomerAuthResponse is returned after a successful register or sign-in.
type CustomerAuthResponse struct {
	Customer Customer `json:"customer"`
	Token    string   `json:"token"`
}
