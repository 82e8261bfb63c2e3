package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"propcatalog/internal/service"
)

// SearchProperties handles GET /properties.
//
//	@Summary		Search properties
//	@Description	Filters by literal name/address text, price and year ranges and owner; results are paged.
//	@Description	Prices are exact decimals serialized as JSON strings.
//	@Tags			properties
//	@Produce		json
//	@Param			name			query		string	false	"Name contains (case-insensitive)"
//	@Param			address			query		string	false	"Address contains (case-insensitive)"
//	@Param			priceMin		query		string	false	"Minimum price, inclusive"
//	@Param			priceMax		query		string	false	"Maximum price, inclusive"
//	@Param			yearMin			query		int		false	"Minimum year, inclusive"
//	@Param			yearMax			query		int		false	"Maximum year, inclusive"
//	@Param			ownerId			query		string	false	"Owner id"
//	@Param			sortBy			query		string	false	"name, price or year"
//	@Param			sortDirection	query		string	false	"asc or desc"
//	@Param			page			query		int		false	"Page, from 1"
//	@Param			pageSize		query		int		false	"Page size, 1 to 100"
//	@Success		200				{object}	query.PagedResult[query.PropertyListItem]
//	@Failure		400				{object}	errorPayload
//	@Failure		500				{object}	errorPayload
//	@Router			/properties [get]
func SearchProperties(svc service.PropertyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseSearchRequest(c)
		if err != nil {
			var pe *paramError
			if errors.As(err, &pe) {
				return writeError(c, fiber.StatusBadRequest, invalidCode(pe.param), pe.Error())
			}
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", "invalid query")
		}

		res, err := svc.Search(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetProperty handles GET /properties/:id.
//
//	@Summary	Get property detail
//	@Tags		properties
//	@Produce	json
//	@Param		id	path		string	true	"Property id"
//	@Success	200	{object}	query.PropertyDetail
//	@Failure	404	{object}	errorPayload
//	@Failure	500	{object}	errorPayload
//	@Router		/properties/{id} [get]
func GetProperty(svc service.PropertyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(d)
	}
}
