package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"contextly/internal/service"
	"contextly/internal/session"
	"contextly/internal/validation"
)

// HealthProbe reports whether a dependency is reachable.
type HealthProbe interface {
	Ping(ctx context.Context) error
}

// StatusResponse is returned by the health endpoint.
type StatusResponse struct {
	Status string `json:"status" example:"healthy"`
}

// SessionResponse is a session id with its current view.
type SessionResponse struct {
	ID string `json:"id"`
	session.View
}

// UploadResponse lists the files the backend acknowledged.
type UploadResponse struct {
	Uploaded []FileResponse `json:"uploaded"`
	Session  session.View   `json:"session"`
}

type FileResponse struct {
	Name       string `json:"name"`
	DocumentID int    `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
}

// AskRequest is the body of a question submission.
type AskRequest struct {
	Question string `json:"question" validate:"notblank,max=4000" example:"What is the notice period?"`
}

// ToggleResponse is the selection flag after a toggle.
type ToggleResponse struct {
	Index    int  `json:"index"`
	Selected bool `json:"selected"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. probe may be nil.
func RegisterRoutes(app *fiber.App, sessions service.SessionService, v *validation.Validator, probe HealthProbe) {
	app.Get("/health", HealthCheck(probe))
	app.Get("/healthz", LivenessProbe())

	s := app.Group("/sessions")
	s.Post("/", CreateSession(sessions))
	s.Get("/:id", GetSession(sessions))
	s.Delete("/:id", EndSession(sessions))
	s.Post("/:id/files", UploadFiles(sessions))
	s.Delete("/:id/files/:name", RemoveFile(sessions))
	s.Post("/:id/questions", AskQuestion(sessions, v))
	s.Post("/:id/selection/:index", ToggleSelection(sessions))
	s.Get("/:id/export", ExportSelection(sessions))
}

// HealthCheck godoc
// @Summary      Health check
// @Description  Reports whether the answer backend is reachable
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func HealthCheck(probe HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if probe != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := probe.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(StatusResponse{Status: "healthy"})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateSession godoc
// @Summary      Start a session
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  SessionResponse
// @Router       /sessions [post]
func CreateSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, view, err := svc.Create(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(SessionResponse{ID: id, View: view})
	}
}

// GetSession godoc
// @Summary      Show a session
// @Description  Files, question/answer pairs with their selection flags, and which actions are available
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  SessionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [get]
func GetSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		view, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(SessionResponse{ID: id, View: view})
	}
}

// EndSession godoc
// @Summary      End a session
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [delete]
func EndSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.End(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadFiles godoc
// @Summary      Upload documents
// @Description  Sends every "file" part to the backend, in order. Files join the session once the backend acknowledges them.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Session ID"
// @Param        file  formData  file    true  "Document (repeatable)"
// @Success      201   {object}  UploadResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /sessions/{id}/files [post]
func UploadFiles(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form expected")
		}

		headers := form.File["file"]
		files := make([]session.UploadFile, 0, len(headers))
		opened := make([]multipart.File, 0, len(headers))
		defer func() {
			for _, f := range opened {
				f.Close()
			}
		}()
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			opened = append(opened, f)
			files = append(files, session.UploadFile{Name: fh.Filename, Content: f})
		}

		descs, err := svc.Upload(c.UserContext(), c.Params("id"), files)
		if err != nil {
			return writeServiceError(c, err)
		}
		view, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		res := UploadResponse{Uploaded: make([]FileResponse, 0, len(descs)), Session: view}
		for _, d := range descs {
			res.Uploaded = append(res.Uploaded, FileResponse{Name: d.Name, DocumentID: d.DocumentID, Chunks: d.Chunks})
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// RemoveFile godoc
// @Summary      Remove a document
// @Description  Drops the file from the session list. Existing answers are kept.
// @Tags         Documents
// @Produce      json
// @Param        id    path      string  true  "Session ID"
// @Param        name  path      string  true  "File name"
// @Success      200   {object}  SessionResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /sessions/{id}/files/{name} [delete]
func RemoveFile(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid file name")
		}
		id := c.Params("id")
		view, err := svc.RemoveFile(c.UserContext(), id, name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(SessionResponse{ID: id, View: view})
	}
}

// AskQuestion godoc
// @Summary      Ask a question
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "Session ID"
// @Param        request  body      AskRequest  true  "Question"
// @Success      201      {object}  session.PairView
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse  "No documents uploaded"
// @Failure      502      {object}  ErrorResponse
// @Router       /sessions/{id}/questions [post]
func AskQuestion(svc service.SessionService, v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AskRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := v.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUESTION", err.Error())
		}

		pair, err := svc.Ask(c.UserContext(), c.Params("id"), req.Question)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pair)
	}
}

// ToggleSelection godoc
// @Summary      Toggle selection
// @Description  Flips whether the pair at index is included in the export
// @Tags         Questions
// @Produce      json
// @Param        id     path      string  true  "Session ID"
// @Param        index  path      int     true  "Pair index"
// @Success      200    {object}  ToggleResponse
// @Failure      404    {object}  ErrorResponse
// @Router       /sessions/{id}/selection/{index} [post]
func ToggleSelection(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INDEX", "index must be an integer")
		}
		selected, err := svc.Toggle(c.UserContext(), c.Params("id"), index)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ToggleResponse{Index: index, Selected: selected})
	}
}

// ExportSelection godoc
// @Summary      Export selected pairs
// @Description  Renders the selected pairs, in the order they were asked, as a PDF download
// @Tags         Export
// @Produce      application/pdf
// @Param        id   path      string  true  "Session ID"
// @Success      200  {file}    binary
// @Failure      409  {object}  ErrorResponse  "Nothing selected"
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions/{id}/export [get]
func ExportSelection(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		art := res.Artifact
		c.Set(fiber.HeaderContentType, art.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", art.Name))
		c.Set("X-Export-Pages", strconv.Itoa(art.Pages))
		if res.URL != "" {
			c.Set("X-Export-URL", res.URL)
		}
		return c.Status(fiber.StatusOK).Send(art.Data)
	}
}
