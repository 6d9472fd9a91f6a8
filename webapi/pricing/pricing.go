// Package pricing exposes the pricing session over HTTP.
package pricing

import (
	"errors"

	"github.com/amirasaad/pricer/pkg/currency"
	"github.com/amirasaad/pricer/pkg/session"
	"github.com/amirasaad/pricer/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errItemNotFound = fiber.NewError(fiber.StatusNotFound, "line item not found")

// Routes registers the line item, currency selection and view endpoints.
func Routes(app *fiber.App, s *session.Session, registry *currency.Registry) {
	api := app.Group("/api")

	api.Get("/items", ListItems(s))
	api.Post("/items", AddItem(s))
	api.Patch("/items/:id", UpdateItem(s))
	api.Delete("/items/:id", RemoveItem(s))
	api.Put("/currency", SetCurrency(s))
	api.Get("/view", GetView(s, registry))
	api.Post("/calculate", Calculate(s, registry))
}

// ListItems returns the line items in insertion order.
func ListItems(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Line items fetched", s.Items())
	}
}

// AddItem appends a consultant with default inputs.
func AddItem(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item := s.AddLineItem()
		c.Location("/api/items/" + item.ID.String())
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Line item added", item)
	}
}

// UpdateItem applies the fields present in the body. Each field is
// validated before it is applied; a rejected field leaves the item as it
// was after the preceding fields.
func UpdateItem(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c, s)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Line item not found", err)
		}
		input, err := common.BindAndValidate[UpdateItemRequest](c)
		if input == nil {
			return err
		}
		for _, ch := range input.changes() {
			if err := s.UpdateLineItem(id, ch.field, ch.value); err != nil {
				return common.ProblemDetailsJSON(c, "Invalid line item", err)
			}
		}
		item, _ := s.Item(id)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Line item updated", item)
	}
}

// RemoveItem deletes a line item.
func RemoveItem(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c, s)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Line item not found", err)
		}
		s.RemoveLineItem(id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetCurrency selects the display currency. It may wait for a rate refresh.
func SetCurrency(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SetCurrencyRequest](c)
		if input == nil {
			return err
		}
		if err := s.SetSelectedCurrency(c.UserContext(), input.Currency); err != nil {
			return common.ProblemDetailsJSON(c, "Unsupported currency", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency selected", fiber.Map{
			"currency": s.SelectedCurrency(),
		})
	}
}

// GetView returns the priced view. It is available while items are
// incomplete.
func GetView(s *session.Session, registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view := ToViewResponse(s.ComputeView(), registry)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "View computed", view)
	}
}

// Calculate returns the priced view, or 422 when any item is incomplete.
func Calculate(s *session.Session, registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := s.Calculate()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Selection incomplete", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Calculation complete", ToViewResponse(view, registry))
	}
}

func itemID(c *fiber.Ctx, s *session.Session) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.Join(errItemNotFound, err)
	}
	if _, ok := s.Item(id); !ok {
		return uuid.Nil, errItemNotFound
	}
	return id, nil
}
