package models

import (
	"time"
)

// Deck is a user-built commander deck list. Only the list itself is
// persisted; card records always come from the catalog client at read time.
type Deck struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	Name      string      `json:"name" gorm:"not null"`
	Commander string      `json:"commander"`
	Partner   string      `json:"partner"`
	Entries   []DeckEntry `json:"entries" gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type DeckEntry struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	DeckID   string `json:"deck_id" gorm:"not null;index"`
	CardName string `json:"card_name" gorm:"not null"`
	Quantity int    `json:"quantity" gorm:"default:1"`
}

type CreateDeckRequest struct {
	Name      string             `json:"name" binding:"required"`
	Commander string             `json:"commander"`
	Partner   string             `json:"partner"`
	Entries   []DeckEntryRequest `json:"entries"`
}

type UpdateDeckRequest struct {
	Name      *string            `json:"name"`
	Commander *string            `json:"commander"`
	Partner   *string            `json:"partner"`
	Entries   []DeckEntryRequest `json:"entries"`
}

type DeckEntryRequest struct {
	CardName string `json:"card_name" binding:"required"`
	Quantity int    `json:"quantity"`
}

type DeckStats struct {
	TotalDecks   int `json:"total_decks"`
	TotalEntries int `json:"total_entries"`
}
