package server

import (
	"errors"
	"strconv"

	"shadospace/internal/models"
	"shadospace/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// listContentPreview is how many runes of content survive in list views.
const listContentPreview = 300

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts the :id route parameter as a positive uint. On failure it
// writes a 400 JSON response and returns errResponseWritten; callers should
// check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondServiceError maps an AppError code to its HTTP status and writes the
// response. Unknown errors come back as a sanitized 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		observability.RecordErrorInContext(c.UserContext(), err)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case models.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case models.CodeForbidden:
		status = fiber.StatusForbidden
	case models.CodeNotFound:
		status = fiber.StatusNotFound
	case models.CodeValidation:
		status = fiber.StatusBadRequest
	case models.CodeInvalidState:
		status = fiber.StatusUnprocessableEntity
	}
	return models.RespondWithError(c, status, appErr)
}

// truncateContent shortens post content for list views, by runes so
// multi-byte text is never cut mid-character.
func truncateContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}

// visitorKey identifies an anonymous-or-authenticated caller for view
// dedup: the user ID when known, the remote IP otherwise.
func (s *Server) visitorKey(c *fiber.Ctx) string {
	if userID, ok := s.optionalUserID(c); ok {
		return "user:" + strconv.FormatUint(uint64(userID), 10)
	}
	return "ip:" + c.IP()
}
