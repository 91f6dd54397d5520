package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	propertiesapp "staybook/internal/app/handlers/properties"
	"staybook/internal/app/queries"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/infra/storage/s3"
)

type PropertyHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Publish(c *gin.Context)
	Archive(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Photos   *s3.PhotoUploader
}

func (h PropertyHandler) List(c *gin.Context) {
	query := propertiesapp.ListPropertiesQuery{PublishedOnly: !isAdmin(c)}
	result, err := queries.Ask[propertiesapp.ListPropertiesQuery, []dto.PropertyView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

// Get resolves the path parameter as an ID first and falls back to the slug,
// so both /properties/<uuid> and /properties/river-loft work.
func (h PropertyHandler) Get(c *gin.Context) {
	ref := c.Param("id")
	query := propertiesapp.GetPropertyQuery{PropertyID: ref}
	result, err := queries.Ask[propertiesapp.GetPropertyQuery, dto.PropertyView](c.Request.Context(), h.Queries, query)
	if err != nil {
		bySlug := propertiesapp.GetPropertyQuery{Slug: ref}
		result, err = queries.Ask[propertiesapp.GetPropertyQuery, dto.PropertyView](c.Request.Context(), h.Queries, bySlug)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type propertyRequest struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Summary    string   `json:"summary"`
	Headline   string   `json:"headline"`
	MaxGuests  int      `json:"max_guests"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  int      `json:"bathrooms"`
	Amenities  []string `json:"amenities"`
	HouseRules []string `json:"house_rules"`
}

func (h PropertyHandler) Create(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := propertiesapp.CreatePropertyCommand{
		Slug:       req.Slug,
		Name:       req.Name,
		Summary:    req.Summary,
		Headline:   req.Headline,
		MaxGuests:  req.MaxGuests,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		Amenities:  req.Amenities,
		HouseRules: req.HouseRules,
	}
	result, err := commands.Dispatch[propertiesapp.CreatePropertyCommand, dto.PropertyView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PropertyHandler) Update(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := propertiesapp.UpdatePropertyCommand{
		PropertyID: c.Param("id"),
		Name:       req.Name,
		Summary:    req.Summary,
		Headline:   req.Headline,
		MaxGuests:  req.MaxGuests,
		Amenities:  req.Amenities,
		HouseRules: req.HouseRules,
	}
	result, err := commands.Dispatch[propertiesapp.UpdatePropertyCommand, dto.PropertyView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Publish(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	cmd := propertiesapp.PublishPropertyCommand{PropertyID: c.Param("id")}
	result, err := commands.Dispatch[propertiesapp.PublishPropertyCommand, dto.PropertyView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Archive(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	cmd := propertiesapp.ArchivePropertyCommand{PropertyID: c.Param("id")}
	result, err := commands.Dispatch[propertiesapp.ArchivePropertyCommand, dto.PropertyView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) UploadPhoto(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage unavailable"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	propertyID := domainproperties.PropertyID(c.Param("id"))
	url, err := h.Photos.UploadPhoto(c.Request.Context(), propertyID, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := propertiesapp.AttachPhotoCommand{PropertyID: string(propertyID), URL: url}
	result, err := commands.Dispatch[propertiesapp.AttachPhotoCommand, dto.PropertyView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ PropertyHTTP = PropertyHandler{}
