package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mycine/api/internal/model"
	"github.com/mycine/api/internal/repository"
)

// AdminSnackHandler serves snack catalog management.
type AdminSnackHandler struct {
	Snacks *repository.SnackRepo
}

func NewAdminSnackHandler(sn *repository.SnackRepo) *AdminSnackHandler {
	return &AdminSnackHandler{Snacks: sn}
}

type snackReq struct {
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Description string `json:"description"`
	InStock     *bool  `json:"in_stock"`
}

func (req *snackReq) toModel() (*model.Snack, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.Validationf("name required")
	}
	if req.PriceCents == 0 {
		return nil, model.Validationf("price_cents required")
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	return &model.Snack{
		Name:        name,
		PriceCents:  req.PriceCents,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		InStock:     inStock,
	}, nil
}

// List returns the full catalog, out-of-stock items included.
func (h *AdminSnackHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	snacks, err := h.Snacks.List(ctx, false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"snacks": snacks})
}

// Create adds a snack to the catalog.
func (h *AdminSnackHandler) Create(c echo.Context) error {
	var req snackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	id, err := h.Snacks.Create(ctx, s)
	if err != nil {
		return writeError(c, err)
	}
	s.ID = id
	return c.JSON(http.StatusCreated, s)
}

// Update overwrites a snack.  Existing bookings keep their snapshotted
// lines.
func (h *AdminSnackHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req snackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}
	s.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Snacks.Update(ctx, s); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete removes a snack from the catalog.
func (h *AdminSnackHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Snacks.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
