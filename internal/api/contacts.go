package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"whatsapp-relay/internal/models"
	"whatsapp-relay/internal/recipient"
)

// ContactHandler manages the recipient address book. Numbers are stored in
// canonical form, so anything the parser rejects never reaches the database.
type ContactHandler struct {
	DB     *gorm.DB
	Parser *recipient.Parser
}

func NewContactHandler(db *gorm.DB, parser *recipient.Parser) *ContactHandler {
	return &ContactHandler{DB: db, Parser: parser}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := h.DB.Order("created_at desc").Find(&contacts).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	if contacts == nil {
		contacts = []models.Contact{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contacts": contacts})
}

type createContactRequest struct {
	Number string `json:"number" binding:"required"`
	Name   string `json:"name"`
	Tags   string `json:"tags"`
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "number is required")
		return
	}

	ids := h.Parser.Parse(req.Number)
	if len(ids) != 1 {
		fail(c, http.StatusBadRequest, "invalid phone number")
		return
	}

	contact := models.Contact{
		Phone: string(ids[0]),
		Name:  req.Name,
		Tags:  req.Tags,
	}
	if err := h.DB.Save(&contact).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to save contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "contact": contact})
}

type updateContactRequest struct {
	Name string `json:"name"`
	Tags string `json:"tags"`
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	phone := c.Param("phone")

	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var contact models.Contact
	if err := h.DB.First(&contact, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "contact not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to load contact")
		return
	}

	contact.Name = req.Name
	contact.Tags = req.Tags
	if err := h.DB.Save(&contact).Error; err != nil {
		fail(c, http.StatusInternalServerError, "failed to update contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "contact": contact})
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	phone := c.Param("phone")

	result := h.DB.Delete(&models.Contact{}, "phone = ?", phone)
	if result.Error != nil {
		fail(c, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "contact not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
