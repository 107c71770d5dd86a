package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/middleware"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/service"
)

func (h HandlerSet) ListCategories(c *gin.Context) {
	h.listCategories(c, "")
}

func (h HandlerSet) ListUserCategories(c *gin.Context) {
	h.listCategories(c, c.Param("id"))
}

func (h HandlerSet) listCategories(c *gin.Context, ownerID string) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	categories, err := h.catalog.ListCategories(c.Request.Context(), repository.CategoryFilter{OwnerID: ownerID, Page: page})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newCategoryResources(categories))
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if !bindPayload(c, &payload) {
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), middleware.CurrentIdentity(c), service.CategoryInput{
		Name: deref(payload.Name),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderCreated(c, c.FullPath()+category.ID, newCategoryResource(category))
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newCategoryResource(category))
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	var payload categoryPayload
	if !bindPayload(c, &payload) {
		return
	}
	id := c.Param("id")
	if payload.ID != "" && payload.ID != id {
		badRequest(c, "Resource id does not match the URL")
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), middleware.CurrentIdentity(c), id, service.CategoryInput{
		Name: deref(payload.Name),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newCategoryResource(category))
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) CategoryOwner(c *gin.Context) {
	owner, err := h.catalog.CategoryOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	renderIdentifier(c, "user", owner.ID)
}

func (h HandlerSet) ListItems(c *gin.Context) {
	h.listItems(c, repository.ItemFilter{})
}

func (h HandlerSet) ListCategoryItems(c *gin.Context) {
	h.listItems(c, repository.ItemFilter{CategoryID: c.Param("id")})
}

func (h HandlerSet) ListUserItems(c *gin.Context) {
	h.listItems(c, repository.ItemFilter{OwnerID: c.Param("id")})
}

func (h HandlerSet) listItems(c *gin.Context, filter repository.ItemFilter) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	filter.Page = page
	items, err := h.catalog.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newItemResources(items))
}

// CreateCategoryItem adds an item to the category in the URL.
func (h HandlerSet) CreateCategoryItem(c *gin.Context) {
	var payload itemPayload
	if !bindPayload(c, &payload) {
		return
	}

	item, err := h.catalog.CreateItem(c.Request.Context(), middleware.CurrentIdentity(c), service.ItemInput{
		Name:        deref(payload.Name),
		Description: deref(payload.Description),
		CategoryID:  c.Param("id"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderCreated(c, "/api/v1/items/"+item.ID, newItemResource(item))
}

func (h HandlerSet) GetItem(c *gin.Context) {
	item, err := h.catalog.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newItemResource(item))
}

func (h HandlerSet) UpdateItem(c *gin.Context) {
	var payload itemPayload
	if !bindPayload(c, &payload) {
		return
	}
	id := c.Param("id")
	if payload.ID != "" && payload.ID != id {
		badRequest(c, "Resource id does not match the URL")
		return
	}

	item, err := h.catalog.UpdateItem(c.Request.Context(), middleware.CurrentIdentity(c), id, service.ItemPatch{
		Name:        payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newItemResource(item))
}

func (h HandlerSet) DeleteItem(c *gin.Context) {
	if err := h.catalog.DeleteItem(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ItemOwner(c *gin.Context) {
	owner, err := h.catalog.ItemOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	renderIdentifier(c, "user", owner.ID)
}
