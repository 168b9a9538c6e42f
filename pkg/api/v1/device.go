package apiv1

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/drivebay/drivebay/pkg/device"
)

type DeviceGroup struct {
	routerGroup *echo.Group
	enumerator  device.Enumerator
	controller  *device.MountController
	reporter    *device.StatusReporter
}

func NewDeviceGroup(g *echo.Group, enumerator device.Enumerator, controller *device.MountController, reporter *device.StatusReporter) *DeviceGroup {
	group := &DeviceGroup{
		routerGroup: g,
		enumerator:  enumerator,
		controller:  controller,
		reporter:    reporter,
	}

	g.GET("/devices", group.ListDevices)
	g.POST("/mount/:device", group.MountDevice)
	g.POST("/unmount", group.UnmountDevice)
	g.GET("/status", group.GetStatus)

	return group
}

func (g *DeviceGroup) ListDevices(ctx echo.Context) error {
	devices := g.enumerator.List(ctx.Request().Context())
	return success(ctx, map[string]any{"devices": devices})
}

func (g *DeviceGroup) MountDevice(ctx echo.Context) error {
	deviceName, err := url.QueryUnescape(ctx.Param("device"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid device name")
	}

	session, err := g.controller.Mount(ctx.Request().Context(), deviceName)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"mount_point": session.MountPoint,
		"message":     fmt.Sprintf("Device %s mounted successfully", session.DeviceName),
	})
}

func (g *DeviceGroup) UnmountDevice(ctx echo.Context) error {
	if err := g.controller.Unmount(ctx.Request().Context()); err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"message": "Device unmounted successfully",
	})
}

func (g *DeviceGroup) GetStatus(ctx echo.Context) error {
	status := g.reporter.Status(ctx.Request().Context())
	return success(ctx, map[string]any{"status": status})
}
