package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardforge/deck-builder/backend/internal/database"
	"github.com/cardforge/deck-builder/backend/internal/models"
)

const maxEntryQuantity = 99

type DeckHandler struct{}

func NewDeckHandler() *DeckHandler {
	return &DeckHandler{}
}

func (h *DeckHandler) ListDecks(c *gin.Context) {
	db := database.GetDB()

	var decks []models.Deck
	if err := db.Preload("Entries").Order("updated_at DESC").Find(&decks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decks)
}

func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var req models.CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck := models.Deck{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Commander: req.Commander,
		Partner:   req.Partner,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Entries:   entriesFromRequest("", req.Entries),
	}
	for i := range deck.Entries {
		deck.Entries[i].DeckID = deck.ID
	}

	if err := database.GetDB().Create(&deck).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, deck)
}

func (h *DeckHandler) GetDeck(c *gin.Context) {
	var deck models.Deck
	err := database.GetDB().Preload("Entries").First(&deck, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, deck)
}

func (h *DeckHandler) UpdateDeck(c *gin.Context) {
	db := database.GetDB()

	var deck models.Deck
	if err := db.First(&deck, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req models.UpdateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		deck.Name = *req.Name
	}
	if req.Commander != nil {
		deck.Commander = *req.Commander
	}
	if req.Partner != nil {
		deck.Partner = *req.Partner
	}
	deck.UpdatedAt = time.Now()

	if req.Entries != nil {
		if err := db.Where("deck_id = ?", deck.ID).Delete(&models.DeckEntry{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		deck.Entries = entriesFromRequest(deck.ID, req.Entries)
	}

	if err := db.Save(&deck).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, deck)
}

func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	db := database.GetDB()

	result := db.Delete(&models.Deck{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}
	db.Where("deck_id = ?", c.Param("id")).Delete(&models.DeckEntry{})

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func entriesFromRequest(deckID string, reqs []models.DeckEntryRequest) []models.DeckEntry {
	entries := make([]models.DeckEntry, 0, len(reqs))
	for _, e := range reqs {
		quantity := e.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if quantity > maxEntryQuantity {
			quantity = maxEntryQuantity
		}
		entries = append(entries, models.DeckEntry{
			DeckID:   deckID,
			CardName: e.CardName,
			Quantity: quantity,
		})
	}
	return entries
}
