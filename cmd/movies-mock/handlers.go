package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/movies"
)

type message struct {
	Message string `json:"message"`
}

func sendMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(message{Message: msg})
}

func healthHandler(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// createMoviesHandler creates a handler for listing movies.
// Query params: "page" (default 1), "q" (title search, optional) and "per_page" (default and max from config).
func createMoviesHandler(cat *catalog, defaultPerPage int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := intQuery(c, "page", 1)
		if err != nil || page < 1 {
			return sendMessage(c, fiber.StatusBadRequest, "Invalid page")
		}
		perPage, err := intQuery(c, "per_page", defaultPerPage)
		if err != nil || perPage < 1 || perPage > defaultPerPage {
			return sendMessage(c, fiber.StatusBadRequest, "Invalid per_page")
		}
		query := c.Query("q")

		found := cat.search(query)
		totalPages := (len(found) + perPage - 1) / perPage
		if totalPages < 1 {
			totalPages = 1
		}
		if page > totalPages {
			return sendMessage(c, fiber.StatusNotFound, "Page not found")
		}
		start := (page - 1) * perPage
		end := start + perPage
		if end > len(found) {
			end = len(found)
		}
		data := append([]movies.Movie{}, found[start:end]...)

		res := movies.PaginatedResponse[movies.Movie]{
			Data: data,
			Pagination: movies.Pagination{
				Total:       len(found),
				Count:       len(data),
				PerPage:     perPage,
				CurrentPage: page,
				TotalPages:  totalPages,
				Links:       pageLinks(c, page, totalPages),
			},
		}
		logger.Debug("Serving movies", zap.Int("page", page), zap.String("query", query), zap.Int("count", len(data)))
		return c.JSON(res)
	}
}

func createMovieHandler(cat *catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return sendMessage(c, fiber.StatusBadRequest, "Invalid movie ID")
		}
		movie, ok := cat.get(id)
		if !ok {
			return sendMessage(c, fiber.StatusNotFound, "Movie not found")
		}
		return c.JSON(fiber.Map{"data": movie})
	}
}

func pageLinks(c *fiber.Ctx, page, totalPages int) movies.Links {
	links := movies.Links{}
	if page < totalPages {
		links.Next = pageURL(c, page+1)
	}
	if page > 1 {
		links.Prev = pageURL(c, page-1)
	}
	return links
}

func pageURL(c *fiber.Ctx, page int) string {
	args := c.Context().QueryArgs()
	q := args.Peek("q")
	perPage := args.Peek("per_page")
	result := c.BaseURL() + c.Path() + "?page=" + strconv.Itoa(page)
	if len(q) > 0 {
		result += "&q=" + escapeQuery(string(q))
	}
	if len(perPage) > 0 {
		result += "&per_page=" + escapeQuery(string(perPage))
	}
	return result
}

func intQuery(c *fiber.Ctx, key string, defaultValue int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(val)
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
