package server

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Page is the envelope returned by every list endpoint.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseListQuery reads page, page_size, ordering and search.
func parseListQuery(c *fiber.Ctx) repository.ListQuery {
	return repository.ListQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", repository.DefaultPageSize),
		Ordering: c.Query("ordering"),
		Search:   c.Query("search"),
	}.Normalize()
}

// queryBool parses an optional boolean filter. Absent yields nil; an
// unparsable value writes a 400 and returns errResponseWritten.
func queryBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		v := true
		return &v, nil
	case "false", "0", "no", "off":
		v := false
		return &v, nil
	}
	_ = models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError(name+": enter a valid boolean"))
	return nil, errResponseWritten
}

// queryID parses an optional positive id filter. Absent yields 0.
func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(name+": select a valid choice"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dest, writing a 400 on failure.
func bindJSON(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// callerID returns the authenticated account. Only called behind
// TokenAuth.Required, so a missing caller is a wiring bug.
func callerID(c *fiber.Ctx) uint {
	id, _ := middleware.CallerID(c)
	return id
}

// respondPage writes the paginated envelope with absolute next/previous links.
func respondPage(c *fiber.Ctx, q repository.ListQuery, count int64, results interface{}) error {
	page := Page{Count: count, Results: results}
	if int64(q.Page)*int64(q.PageSize) < count {
		page.Next = pageLink(c, q.Page+1)
	}
	if q.Page > 1 {
		page.Previous = pageLink(c, q.Page-1)
	}
	return c.JSON(page)
}

// pageLink rewrites the page parameter of the request URL. Proxies and
// test clients may send an absolute request target, which is used as is.
func pageLink(c *fiber.Ctx, page int) *string {
	u, err := url.Parse(c.OriginalURL())
	if err != nil {
		return nil
	}
	if !u.IsAbs() {
		base, err := url.Parse(c.BaseURL())
		if err != nil {
			return nil
		}
		u = base.ResolveReference(u)
	}
	values := u.Query()
	if page <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = values.Encode()
	link := u.String()
	return &link
}
