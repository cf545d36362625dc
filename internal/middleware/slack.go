package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// VerifySlack rejects requests that do not carry a valid Slack signature
// for signingSecret. An empty secret disables the check.
func VerifySlack(signingSecret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if signingSecret == "" {
			return c.Next()
		}

		header := http.Header{}
		for k, values := range c.GetReqHeaders() {
			for _, v := range values {
				header.Add(k, v)
			}
		}

		verifier, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			log.Ctx(c.Context()).Warn().Err(err).Msg("rejected slack request")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid slack signature")
		}
		if _, err := verifier.Write(c.Body()); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid slack signature")
		}
		if err := verifier.Ensure(); err != nil {
			log.Ctx(c.Context()).Warn().Err(err).Msg("rejected slack request")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid slack signature")
		}
		return c.Next()
	}
}
