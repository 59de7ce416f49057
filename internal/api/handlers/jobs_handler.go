package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	job "github.com/maheshrc27/instaflow/internal/jobs"
	"github.com/maheshrc27/instaflow/internal/transfer"
)

type Dispatcher interface {
	Run(ctx context.Context) (*transfer.DispatchResult, error)
}

type TokenRefresher interface {
	Run(ctx context.Context) (*transfer.RefreshResult, error)
}

type Snapshotter interface {
	Run(ctx context.Context) (*transfer.SnapshotResult, error)
}

type JobsHandler struct {
	dispatch Dispatcher
	refresh  TokenRefresher
	snapshot Snapshotter
}

func NewJobsHandler(dispatch Dispatcher, refresh TokenRefresher, snapshot Snapshotter) *JobsHandler {
	return &JobsHandler{
		dispatch: dispatch,
		refresh:  refresh,
		snapshot: snapshot,
	}
}

func (h *JobsHandler) ProcessScheduledPosts(c *fiber.Ctx) error {
	result, err := h.dispatch.Run(c.UserContext())
	if err != nil {
		return jobError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *JobsHandler) RefreshInstagramTokens(c *fiber.Ctx) error {
	result, err := h.refresh.Run(c.UserContext())
	if err != nil {
		return jobError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *JobsHandler) DailyAnalyticsSnapshot(c *fiber.Ctx) error {
	result, err := h.snapshot.Run(c.UserContext())
	if err != nil {
		return jobError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func jobError(c *fiber.Ctx, err error) error {
	if errors.Is(err, job.ErrJobRunning) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	slog.Error("job run failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
