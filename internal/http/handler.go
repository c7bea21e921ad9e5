package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"palmsgig.com/palmsgig/internal/constants"
	dto "palmsgig.com/palmsgig/internal/data_models"
	apperrors "palmsgig.com/palmsgig/internal/errors"
	"palmsgig.com/palmsgig/internal/http/validators"
	model "palmsgig.com/palmsgig/internal/models"
	repository "palmsgig.com/palmsgig/internal/repositories"
	"palmsgig.com/palmsgig/internal/services"
)

const (
	userIDHeader    = "X-User-ID"
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	taskService *services.TaskService
}

func NewHandler(taskService *services.TaskService) *Handler {
	return &Handler{
		taskService: taskService,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	platform := constants.Platform(req.Platform)
	taskType := constants.TaskType(req.TaskType)

	task, err := h.taskService.CreateTask(c.Request().Context(), userID, services.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		Platform:       platform,
		TaskType:       taskType,
		Budget:         req.Budget,
		MaxPerformers:  req.MaxPerformers,
		TargetCriteria: req.TargetCriteria,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) CreateDraft(c echo.Context) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return err
	}

	var req dto.CreateDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateDraftRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateDraft(c.Request().Context(), userID, services.DraftInput{
		Title:          req.Title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		Platform:       optionalPlatform(req.Platform),
		TaskType:       optionalTaskType(req.TaskType),
		Budget:         req.Budget,
		MaxPerformers:  req.MaxPerformers,
		TargetCriteria: req.TargetCriteria,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) PublishTask(c echo.Context) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	var req dto.PublishTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidatePublishTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.PublishTask(c.Request().Context(), id, userID, services.PublishInput{
		Title:          req.Title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		Platform:       optionalPlatform(req.Platform),
		TaskType:       optionalTaskType(req.TaskType),
		Budget:         req.Budget,
		MaxPerformers:  req.MaxPerformers,
		TargetCriteria: req.TargetCriteria,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateUpdateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, userID, services.TaskPatch{
		Title:          req.Title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		Platform:       optionalPlatform(req.Platform),
		TaskType:       optionalTaskType(req.TaskType),
		Budget:         req.Budget,
		MaxPerformers:  req.MaxPerformers,
		TargetCriteria: req.TargetCriteria,
		ExpiresAt:      req.ExpiresAt,
		Status:         optionalStatus(req.Status),
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	deleted, err := h.taskService.DeleteTask(c.Request().Context(), id, userID)
	if err != nil {
		return serviceError(err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTasks(c echo.Context) error {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	filter := repository.TaskFilter{
		Search: c.QueryParam("search"),
		Skip:   (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if v := c.QueryParam("creator_id"); v != "" {
		filter.CreatorID = &v
	}
	if v := c.QueryParam("status"); v != "" {
		status := constants.TaskStatus(v)
		filter.Status = &status
	}
	if v := c.QueryParam("platform"); v != "" {
		platform := constants.Platform(v)
		filter.Platform = &platform
	}

	tasks, total, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return serviceError(err)
	}

	if tasks == nil {
		tasks = []model.Task{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      tasks,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func userIDFromRequest(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(userIDHeader)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}

// serviceError translates service failures into transport responses without
// leaking internals.
func serviceError(err error) error {
	var appErr *apperrors.Exception
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(appErr.StatusCode, appErr.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func optionalPlatform(v *string) *constants.Platform {
	if v == nil {
		return nil
	}
	p := constants.Platform(*v)
	return &p
}

func optionalTaskType(v *string) *constants.TaskType {
	if v == nil {
		return nil
	}
	t := constants.TaskType(*v)
	return &t
}

func optionalStatus(v *string) *constants.TaskStatus {
	if v == nil {
		return nil
	}
	s := constants.TaskStatus(*v)
	return &s
}
