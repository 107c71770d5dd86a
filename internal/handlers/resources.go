package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/jsonapi"

	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
)

type userResource struct {
	ID            string  `jsonapi:"primary,user"`
	FirstName     string  `jsonapi:"attr,first_name"`
	LastName      string  `jsonapi:"attr,last_name"`
	DisplayName   string  `jsonapi:"attr,display_name"`
	Message       string  `jsonapi:"attr,a_message,omitempty"`
	ProfilePicURL *string `jsonapi:"attr,profile_pic_url,omitempty"`
}

// userPayload is what clients send. Email and password are write only.
type userPayload struct {
	ID            string  `jsonapi:"primary,user"`
	Email         *string `jsonapi:"attr,email"`
	Password      *string `jsonapi:"attr,password"`
	FirstName     *string `jsonapi:"attr,first_name"`
	LastName      *string `jsonapi:"attr,last_name"`
	ProfilePicURL *string `jsonapi:"attr,profile_pic_url"`
}

type categoryResource struct {
	ID        string    `jsonapi:"primary,category"`
	Name      string    `jsonapi:"attr,name"`
	OwnerID   string    `jsonapi:"attr,owner_id"`
	CreatedAt time.Time `jsonapi:"attr,timestamp,iso8601"`
}

type categoryPayload struct {
	ID   string  `jsonapi:"primary,category"`
	Name *string `jsonapi:"attr,name"`
}

type itemResource struct {
	ID          string    `jsonapi:"primary,item"`
	Name        string    `jsonapi:"attr,name"`
	Description string    `jsonapi:"attr,description"`
	OwnerID     string    `jsonapi:"attr,owner_id"`
	CategoryID  string    `jsonapi:"attr,category_id"`
	CreatedAt   time.Time `jsonapi:"attr,timestamp,iso8601"`
}

type itemPayload struct {
	ID          string  `jsonapi:"primary,item"`
	Name        *string `jsonapi:"attr,name"`
	Description *string `jsonapi:"attr,description"`
	CategoryID  *string `jsonapi:"attr,category_id"`
}

func newUserResource(a models.Account) *userResource {
	r := &userResource{
		ID:            a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		DisplayName:   a.DisplayName(),
		ProfilePicURL: a.ProfilePicURL,
	}
	if !a.Confirmed {
		r.Message = "Please check your email to activate your account."
	}
	return r
}

func newUserResources(accounts []models.Account) []*userResource {
	out := make([]*userResource, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newUserResource(a))
	}
	return out
}

func newCategoryResource(c models.Category) *categoryResource {
	return &categoryResource{ID: c.ID, Name: c.Name, OwnerID: c.OwnerID, CreatedAt: c.CreatedAt}
}

func newCategoryResources(categories []models.Category) []*categoryResource {
	out := make([]*categoryResource, 0, len(categories))
	for _, c := range categories {
		out = append(out, newCategoryResource(c))
	}
	return out
}

func newItemResource(i models.Item) *itemResource {
	return &itemResource{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		OwnerID:     i.OwnerID,
		CategoryID:  i.CategoryID,
		CreatedAt:   i.CreatedAt,
	}
}

func newItemResources(items []models.Item) []*itemResource {
	out := make([]*itemResource, 0, len(items))
	for _, i := range items {
		out = append(out, newItemResource(i))
	}
	return out
}

// render writes a JSON:API document for a resource pointer or a slice of
// resource pointers.
func (h HandlerSet) render(c *gin.Context, status int, payload any) {
	c.Header("Content-Type", jsonapi.MediaType)
	c.Status(status)
	if err := jsonapi.MarshalPayload(c.Writer, payload); err != nil {
		h.log.Error().Err(err).Str("route", c.FullPath()).Msg("marshal jsonapi payload failed")
	}
}

func (h HandlerSet) renderCreated(c *gin.Context, location string, payload any) {
	c.Header("Location", location)
	h.render(c, http.StatusCreated, payload)
}

// renderIdentifier writes a relationship document holding one resource
// identifier.
func renderIdentifier(c *gin.Context, kind, id string) {
	c.Header("Content-Type", jsonapi.MediaType)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"type": kind, "id": id}})
}

// bindPayload decodes a JSON:API request document into model.
func bindPayload(c *gin.Context, model any) bool {
	if err := jsonapi.UnmarshalPayload(c.Request.Body, model); err != nil {
		badRequest(c, fmt.Sprintf("invalid JSON:API document: %v", err))
		return false
	}
	return true
}

// pageFromQuery reads page[size] and page[number]. A size of 0 returns
// every row.
func pageFromQuery(c *gin.Context) (repository.Page, bool) {
	size, number := defaultPageSize, 1
	var err error
	if v := c.Query("page[size]"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 0 || size > maxPageSize {
			badRequest(c, fmt.Sprintf("page[size] must be between 0 and %d", maxPageSize))
			return repository.Page{}, false
		}
	}
	if v := c.Query("page[number]"); v != "" {
		if number, err = strconv.Atoi(v); err != nil || number < 1 {
			badRequest(c, "page[number] must be a positive integer")
			return repository.Page{}, false
		}
	}
	if size == 0 {
		return repository.Page{}, true
	}
	return repository.Page{Limit: size, Offset: (number - 1) * size}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
