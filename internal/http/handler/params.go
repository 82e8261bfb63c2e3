package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"propcatalog/internal/query"
)

// paramError names the query parameter that failed to parse.
type paramError struct {
	param string
}

func (e *paramError) Error() string {
	return "invalid " + e.param
}

// parseSearchRequest reads GET /properties query parameters. Empty values
// are treated as absent. Range and paging checks happen in the query package.
func parseSearchRequest(c *fiber.Ctx) (query.SearchRequest, error) {
	req := query.SearchRequest{
		Name:          optionalText(c, "name"),
		Address:       optionalText(c, "address"),
		OwnerID:       optionalText(c, "ownerId"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
	}

	var err error
	if req.PriceMin, err = optionalDecimal(c, "priceMin"); err != nil {
		return req, err
	}
	if req.PriceMax, err = optionalDecimal(c, "priceMax"); err != nil {
		return req, err
	}
	if req.YearMin, err = optionalInt(c, "yearMin"); err != nil {
		return req, err
	}
	if req.YearMax, err = optionalInt(c, "yearMax"); err != nil {
		return req, err
	}
	if req.Page, err = optionalInt(c, "page"); err != nil {
		return req, err
	}
	if req.PageSize, err = optionalInt(c, "pageSize"); err != nil {
		return req, err
	}
	return req, nil
}

func optionalText(c *fiber.Ctx, name string) *string {
	v := c.Query(name)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func optionalDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &paramError{param: name}
	}
	return &d, nil
}

func optionalInt(c *fiber.Ctx, name string) (*int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &paramError{param: name}
	}
	return &n, nil
}
