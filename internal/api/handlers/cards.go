package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardforge/deck-builder/backend/internal/models"
	"github.com/cardforge/deck-builder/backend/internal/services"
)

type CardHandler struct {
	scryfall     *services.ScryfallService
	resolver     *services.Resolver
	batch        *services.BatchResolver
	partners     *services.PartnerFinder
	gameChangers *services.GameChangerSet
	multiCopy    *services.MultiCopySet
}

func NewCardHandler(
	scryfall *services.ScryfallService,
	resolver *services.Resolver,
	batch *services.BatchResolver,
	partners *services.PartnerFinder,
	gameChangers *services.GameChangerSet,
	multiCopy *services.MultiCopySet,
) *CardHandler {
	return &CardHandler{
		scryfall:     scryfall,
		resolver:     resolver,
		batch:        batch,
		partners:     partners,
		gameChangers: gameChangers,
		multiCopy:    multiCopy,
	}
}

func (h *CardHandler) ResolveCard(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}

	record, err := h.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

type resolveManyRequest struct {
	Names []string `json:"names" binding:"required"`
}

type resolveManyResponse struct {
	Cards     map[string]*models.CardRecord `json:"cards"`
	Requested int                           `json:"requested"`
	Resolved  int                           `json:"resolved"`
}

func (h *CardHandler) ResolveManyCards(c *gin.Context) {
	var req resolveManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cards, err := h.batch.ResolveMany(c.Request.Context(), req.Names, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resolveManyResponse{
		Cards:     cards,
		Requested: len(req.Names),
		Resolved:  len(cards),
	})
}

func (h *CardHandler) FindPartners(c *gin.Context) {
	name := c.Query("commander")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'commander' is required"})
		return
	}

	commander, err := h.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if commander == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "commander not found"})
		return
	}

	mechanic, _ := services.ClassifyPartnerMechanic(commander)
	candidates, err := h.partners.FindPartners(c.Request.Context(), commander, c.Query("refine"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commander":  commander.Name,
		"mechanic":   mechanic.String(),
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (h *CardHandler) GetGameChangers(c *gin.Context) {
	names, err := h.gameChangers.Names(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"names": names,
		"count": len(names),
	})
}

func (h *CardHandler) GetMultiCopyAllowance(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}

	allowance, ok, err := h.multiCopy.Allowance(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"name":       name,
		"multi_copy": ok,
	}
	if ok && allowance.Cap != nil {
		resp["cap"] = *allowance.Cap
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CardHandler) AutocompleteCards(c *gin.Context) {
	partial := c.Query("q")
	if partial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	suggestions, err := h.scryfall.Autocomplete(c.Request.Context(), partial)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suggestions})
}
