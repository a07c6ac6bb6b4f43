package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/services"
	"shopkart/internal/validate"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// GET /api/reviews?productId=
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "product ID is required")
	}
	out, err := h.Reviews.ForProduct(productID)
	if err != nil {
		applog.Error(c, "reviews.list.fail", err, map[string]any{"product_id": productID})
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(out)
}

type reviewBody struct {
	ProductID string  `json:"productId"`
	ReviewID  string  `json:"reviewId"`
	Rating    *int    `json:"rating"`
	Comment   *string `json:"comment"`
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.ProductID == "" || body.Rating == nil {
		return jsonError(c, fiber.StatusBadRequest, "product ID and rating are required")
	}

	comment := ""
	if body.Comment != nil {
		comment = *body.Comment
	}
	rv, err := h.Reviews.Create(userID(c), body.ProductID, *body.Rating, comment)
	switch err {
	case nil:
	case services.ErrBadRating, services.ErrAlreadyReviewed:
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case services.ErrProductNotFound:
		return jsonError(c, fiber.StatusNotFound, "product not found")
	default:
		applog.Error(c, "reviews.create.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "review.create", map[string]any{"review_id": rv.ID, "product_id": rv.ProductID})
	return c.Status(fiber.StatusCreated).JSON(rv)
}

// PUT /api/reviews
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.ReviewID == "" {
		return jsonError(c, fiber.StatusBadRequest, "review ID is required")
	}

	rv, err := h.Reviews.Update(userID(c), body.ReviewID, body.Rating, body.Comment)
	switch err {
	case nil:
	case services.ErrBadRating:
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case services.ErrReviewNotFound:
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case services.ErrNotOwner:
		applog.Security(c, "reviews.update.denied", map[string]any{"review_id": body.ReviewID})
		return jsonError(c, fiber.StatusForbidden, "you can only edit your own reviews")
	default:
		applog.Error(c, "reviews.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(rv)
}

// DELETE /api/reviews?reviewId=
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	reviewID, ok := validate.ID(c.Query("reviewId"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "review ID is required")
	}

	err := h.Reviews.Delete(userID(c), reviewID)
	switch err {
	case nil:
	case services.ErrReviewNotFound:
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case services.ErrNotOwner:
		applog.Security(c, "reviews.delete.denied", map[string]any{"review_id": reviewID})
		return jsonError(c, fiber.StatusForbidden, "you can only delete your own reviews")
	default:
		applog.Error(c, "reviews.delete.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "review.delete", map[string]any{"review_id": reviewID})
	return c.JSON(fiber.Map{"message": "review deleted"})
}
