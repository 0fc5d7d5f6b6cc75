package hostapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes contributes the pack's query endpoints to a host's gin engine.
// Names yields the selectable preprocessor names, sentinel first, the same
// list the AIO node offers.
type Routes struct {
	Names func() []string
}

func (r *Routes) RegisterRoutes(e *gin.Engine) {
	e.GET("/Preprocessor", r.listPreprocessors)
}

func (r *Routes) listPreprocessors(c *gin.Context) {
	c.JSON(http.StatusOK, r.Names())
}
