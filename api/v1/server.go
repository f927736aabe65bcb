package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerInterface is implemented by the API handlers.
type ServerInterface interface {
	// (GET /forms)
	GetForms(c *gin.Context, params GetFormsParams)
	// (GET /imports)
	GetImports(c *gin.Context, params GetImportsParams)
	// (POST /imports)
	CreateImport(c *gin.Context)
	// (GET /imports/{id})
	GetImport(c *gin.Context, id string)
	// (DELETE /imports/{id})
	DeleteImport(c *gin.Context, id string)
	// (GET /scheduler)
	GetScheduler(c *gin.Context)
}

// ServerInterfaceWrapper binds the path and query parameters before calling
// the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) GetForms(c *gin.Context) {
	var params GetFormsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid query parameters: " + err.Error()})
		return
	}
	w.Handler.GetForms(c, params)
}

func (w *ServerInterfaceWrapper) GetImports(c *gin.Context) {
	var params GetImportsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, Error{Error: "invalid query parameters: " + err.Error()})
		return
	}
	w.Handler.GetImports(c, params)
}

func (w *ServerInterfaceWrapper) CreateImport(c *gin.Context) {
	w.Handler.CreateImport(c)
}

func (w *ServerInterfaceWrapper) GetImport(c *gin.Context) {
	w.Handler.GetImport(c, c.Param("id"))
}

func (w *ServerInterfaceWrapper) DeleteImport(c *gin.Context) {
	w.Handler.DeleteImport(c, c.Param("id"))
}

func (w *ServerInterfaceWrapper) GetScheduler(c *gin.Context) {
	w.Handler.GetScheduler(c)
}

// RegisterHandlers adds every API route to router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.GET("/forms", w.GetForms)
	router.GET("/imports", w.GetImports)
	router.POST("/imports", w.CreateImport)
	router.GET("/imports/:id", w.GetImport)
	router.DELETE("/imports/:id", w.DeleteImport)
	router.GET("/scheduler", w.GetScheduler)
}
