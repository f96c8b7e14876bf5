package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/identity"
	"github.com/courselab/activity-server-api/internal/utils"
)

// Locals keys populated by RequireIdentity.
const (
	LocalIdentityEmail = "identity_email"
	LocalIdentityName  = "identity_name"
)

// RequireIdentity verifies the bearer credential and binds the resulting
// email/name to the request. Verifier rejections surface as Unauthorized to
// the caller and are logged distinctly.
func RequireIdentity(verifier identity.Verifier, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "identity_middleware").Logger()

	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendFailure(c, fiber.StatusUnauthorized, utils.KindUnauthorized, "", "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendFailure(c, fiber.StatusUnauthorized, utils.KindUnauthorized, "", "invalid authorization header")
		}

		credential := strings.TrimSpace(authorization[len(bearer):])
		if credential == "" {
			return utils.SendFailure(c, fiber.StatusUnauthorized, utils.KindUnauthorized, "", "invalid credential")
		}

		id, err := verifier.Verify(c.Context(), credential)
		if err != nil {
			log.Warn().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("identity verification failed")
			return utils.SendFailure(c, fiber.StatusUnauthorized, utils.KindUnauthorized, "", "invalid credential")
		}

		c.Locals(LocalIdentityEmail, id.Email)
		c.Locals(LocalIdentityName, id.Name)

		return c.Next()
	}
}

// IdentityEmail returns the verified email bound to the request, if any.
func IdentityEmail(c *fiber.Ctx) string {
	if value := c.Locals(LocalIdentityEmail); value != nil {
		if email, ok := value.(string); ok {
			return email
		}
	}
	return ""
}

// IdentityName returns the verified display name bound to the request, if any.
func IdentityName(c *fiber.Ctx) string {
	if value := c.Locals(LocalIdentityName); value != nil {
		if name, ok := value.(string); ok {
			return name
		}
	}
	return ""
}
