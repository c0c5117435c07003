package controllers

import (
	"fmt"

	"skillchain/logger"
	"skillchain/middleware"
	"skillchain/services/catalog"
	"skillchain/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminImportCatalog upserts courses, modules and lessons from an uploaded CSV file
func (h *CourseHandler) AdminImportCatalog(c *fiber.Ctx) error {
	log := logger.For("catalog")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is required!"})
	}

	// Keep a copy of every import for audit
	archived := ""
	if h.UploadDir != "" {
		if archived, err = utils.ArchiveUpload(fileHeader, h.UploadDir, "catalog"); err != nil {
			log.Error().Err(err).Msg("failed to archive catalog upload")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Unable to store uploaded file!", nil)
		}
	}
	file, err := fileHeader.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to read uploaded file!", nil)
	}
	defer file.Close()

	rows, skipped, err := catalog.ReadCSV(file)
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"file": err.Error()})
	}

	report, err := catalog.Import(c.UserContext(), h.DB, rows)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	skippedLines := make([]string, 0, len(skipped))
	for _, e := range skipped {
		skippedLines = append(skippedLines, e.Error())
	}
	log.Info().Int("courses", report.Courses).Int("lessons", report.Lessons).Int("skipped", len(skipped)).Msg("catalog imported")

	return middleware.JsonResponse(c, fiber.StatusOK, true, fmt.Sprintf("Imported %d lessons.", report.Lessons), fiber.Map{
		"report":   report,
		"skipped":  skippedLines,
		"archived": archived,
	})
}
