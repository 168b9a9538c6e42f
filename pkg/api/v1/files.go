package apiv1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drivebay/drivebay/pkg/files"
	"github.com/drivebay/drivebay/pkg/types"
)

type FileGroup struct {
	routerGroup *echo.Group
	catalog     *files.FileCatalog
	engine      *files.FileOperationsEngine
}

func NewFileGroup(g *echo.Group, catalog *files.FileCatalog, engine *files.FileOperationsEngine) *FileGroup {
	group := &FileGroup{
		routerGroup: g,
		catalog:     catalog,
		engine:      engine,
	}

	g.GET("/files", group.ListFiles)
	g.POST("/files", group.UploadFile)
	g.GET("/files/download", group.DownloadFile)
	g.DELETE("/files", group.DeleteFile)
	g.PATCH("/files/rename", group.RenameFile)
	g.POST("/folders", group.CreateFolder)

	return group
}

func (g *FileGroup) ListFiles(ctx echo.Context) error {
	entries, err := g.catalog.List(ctx.QueryParam("path"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{"files": entries})
}

func (g *FileGroup) UploadFile(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read uploaded file")
	}
	defer src.Close()

	entry, err := g.engine.Upload(ctx.Request().Context(), types.UploadRequest{
		TargetDir:    ctx.FormValue("path"),
		Filename:     fileHeader.Filename,
		Content:      src,
		DeclaredSize: fileHeader.Size,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"message":   fmt.Sprintf("File %s uploaded successfully", entry.Name),
		"file_info": entry,
	})
}

func (g *FileGroup) DownloadFile(ctx echo.Context) error {
	stream, entry, err := g.engine.Download(ctx.QueryParam("path"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	defer stream.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", entry.Name))
	return ctx.Stream(http.StatusOK, "application/octet-stream", stream)
}

func (g *FileGroup) DeleteFile(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if err := g.engine.Delete(path); err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"message": fmt.Sprintf("File %s deleted successfully", path),
	})
}

type renameRequest struct {
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

func (g *FileGroup) RenameFile(ctx echo.Context) error {
	var req renameRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	entry, err := g.engine.Rename(req.Path, req.NewName)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"message":   fmt.Sprintf("File renamed to %s successfully", entry.Name),
		"file_info": entry,
	})
}

type createFolderRequest struct {
	ParentPath string `json:"parent_path"`
	FolderName string `json:"folder_name"`
}

func (g *FileGroup) CreateFolder(ctx echo.Context) error {
	var req createFolderRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	entry, err := g.engine.CreateFolder(req.ParentPath, req.FolderName)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return success(ctx, map[string]any{
		"message":     fmt.Sprintf("Folder %s created successfully", entry.Name),
		"folder_info": entry,
	})
}
