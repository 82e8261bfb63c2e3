package handler

import (
	"github.com/gofiber/fiber/v2"

	"propcatalog/internal/service"
)

// CreateOwner handles POST /owners.
//
//	@Summary	Create owner
//	@Tags		owners
//	@Accept		json
//	@Produce	json
//	@Param		owner	body		service.CreateOwnerInput	true	"Owner"
//	@Success	201		{object}	model.Owner
//	@Failure	400		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Router		/owners [post]
func CreateOwner(svc service.OwnerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateOwnerInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON owner")
		}

		owner, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Location("/owners/" + owner.IDOwner)
		return c.Status(fiber.StatusCreated).JSON(owner)
	}
}
