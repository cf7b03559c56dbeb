package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/api/handlers"
	"skill-map/internal/api/presenter"
)

const uploadLimit = 32 << 20

// New builds the Fiber app with middleware but no routes.
// origins lists the browser origins allowed to call the API with credentials;
// with none, no CORS headers are sent.
func New(origins []string, logger log.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "skill-map",
		BodyLimit:             uploadLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))
	if len(origins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(origins, ","),
			AllowCredentials: true,
		}))
	}
	return app
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, health *handlers.HealthHandler, process *handlers.ProcessHandler, skills *handlers.SkillsHandler, coursera *handlers.CourseraHandler) {
	app.Get("/health", health.Health)

	app.Post("/process/lightcast", process.Lightcast)
	app.Post("/process/coursera", coursera.Process)

	app.Get("/skills", skills.List)
	sg := app.Group("/skills")
	sg.Put("/update", skills.Update)
	sg.Delete("/delete", skills.Delete)
	sg.Get("/lightcast-ready", skills.LightcastReady)

	cg := app.Group("/coursera")
	cg.Get("/mapped-skills", coursera.MappedSkills)
	cg.Post("/publish", coursera.Publish)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return presenter.Error(c, fe.Code, fe.Message)
	}
	return presenter.Fail(c, err)
}

func requestLogger(logger log.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		entry := logger.WithFields(log.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Info("request")
		}
		return err
	}
}
