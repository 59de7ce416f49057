package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/instaflow/internal/service"
	"github.com/maheshrc27/instaflow/internal/transfer"
)

type PlatformHandler struct {
	ts service.TokenService
}

func NewPlatformHandler(ts service.TokenService) *PlatformHandler {
	return &PlatformHandler{ts: ts}
}

// ConnectInstagram sends the browser to the login dialog for the workspace
// given in the query string. flavor=instagram picks Instagram Login; the
// default is Facebook Login.
func (h *PlatformHandler) ConnectInstagram(c *fiber.Ctx) error {
	authURL, err := h.ts.AuthURL(c.UserContext(), c.Query("workspace_id"), c.Query("redirect_uri"), c.Query("flavor"))
	if err != nil {
		return oauthError(c, err)
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ExchangeInstagram(c *fiber.Ctx) error {
	var req transfer.ExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	account, err := h.ts.Exchange(c.UserContext(), &req)
	if err != nil {
		return oauthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.ExchangeResponse{
		Success: true,
		Account: account,
	})
}

func oauthError(c *fiber.Ctx, err error) error {
	if !service.IsInputError(err) {
		slog.Error("instagram connect failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	slog.Info("instagram connect rejected", "error", err)
	body := fiber.Map{"error": err.Error()}

	var exErr *service.OAuthExchangeError
	if errors.As(err, &exErr) {
		body["step"] = exErr.Step
		if exErr.Payload != nil {
			body["details"] = exErr.Payload
		}
	}

	return c.Status(fiber.StatusBadRequest).JSON(body)
}
