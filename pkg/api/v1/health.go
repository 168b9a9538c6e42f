package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthGroup struct {
	routerGroup *echo.Group
}

func NewHealthGroup(g *echo.Group) *HealthGroup {
	group := &HealthGroup{routerGroup: g}

	g.GET("", group.HealthCheck)

	return group
}

func (h *HealthGroup) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
