package models

import "time"

// Client is a salon customer identified by their Telegram account. The record
// is upserted when the user shares their contact.
type Client struct {
	ID          string    `bson:"id" json:"id"`
	TelegramID  int64     `bson:"telegramId" json:"telegramId"`
	Name        string    `bson:"name" json:"name"`
	PhoneNumber string    `bson:"phoneNumber" json:"phoneNumber"`
	Username    string    `bson:"username,omitempty" json:"username,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
