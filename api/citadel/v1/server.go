package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by Citadel servers, the development mock
// included.
type ServerInterface interface {
	// GET /aws/secrets/{id}
	GetAwsSecretsId(c *gin.Context, id string)
	// GET /ping
	GetPing(c *gin.Context)
}

type serverWrapper struct {
	handler ServerInterface
}

func (w *serverWrapper) GetAwsSecretsId(c *gin.Context) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Invalid format for parameter id: %s", err),
		})
		return
	}
	w.handler.GetAwsSecretsId(c, id)
}

func (w *serverWrapper) GetPing(c *gin.Context) {
	w.handler.GetPing(c)
}

// RegisterHandlers mounts every Citadel route on router.
func RegisterHandlers(router gin.IRoutes, si ServerInterface) {
	wrapper := &serverWrapper{handler: si}
	router.GET("/aws/secrets/:id", wrapper.GetAwsSecretsId)
	router.GET("/ping", wrapper.GetPing)
}
