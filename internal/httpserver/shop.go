package httpserver

import (
	"net/http"

	"socialshop/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listItems(c *gin.Context) {
	items, err := h.deps.Catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	limit := queryInt(c.Query("limit"), 20)
	offset := queryInt(c.Query("offset"), 0)
	c.JSON(http.StatusOK, buildItemList(items, limit, offset))
}

func (h *handlers) getItem(c *gin.Context) {
	it, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemView(*it))
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"results": cats, "count": len(cats)})
}

func (h *handlers) getSeller(c *gin.Context) {
	s, err := h.deps.Catalog.Seller(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
