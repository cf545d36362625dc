package handlers

import "github.com/gofiber/fiber/v3"

// Home renders the landing page.
func Home(installEnabled bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"Title":          "GiphyGetter",
			"InstallEnabled": installEnabled,
		})
	}
}
