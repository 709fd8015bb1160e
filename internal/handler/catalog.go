package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// CatalogHandler serves products, brands and categories.  Reads are
// public; mutations sit behind the admin guard in the router.
type CatalogHandler struct {
	Products   *repository.ProductRepo
	Brands     *repository.BrandRepo
	Categories *repository.CategoryRepo
}

func NewCatalogHandler(products *repository.ProductRepo, brands *repository.BrandRepo, categories *repository.CategoryRepo) *CatalogHandler {
	return &CatalogHandler{Products: products, Brands: brands, Categories: categories}
}

type productReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  uint32   `json:"price_cents"`
	Stock       uint32   `json:"stock"`
	BrandID     string   `json:"brand_id"`
	Image       *string  `json:"image"`
	CategoryIDs []string `json:"category_ids"`
}

type nameReq struct {
	Name string `json:"name"`
}

// ----- products -----

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	products, err := h.Products.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	if req.Name == "" || req.BrandID == "" || req.PriceCents == 0 {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Brands.GetByID(ctx, req.BrandID); errors.Is(err, repository.ErrNotFound) {
		return apperr.BadRequest(apperr.CodeBrandNotFound, "Brand not found.")
	} else if err != nil {
		return err
	}
	for _, catID := range req.CategoryIDs {
		if _, err := h.Categories.GetByID(ctx, catID); errors.Is(err, repository.ErrNotFound) {
			return apperr.BadRequest(apperr.CodeCategoryNotFound, "Category not found.")
		} else if err != nil {
			return err
		}
	}

	p, err := h.Products.Create(ctx, model.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		BrandID:     req.BrandID,
		Image:       req.Image,
	}, req.CategoryIDs)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}
	if req.Name == "" || req.BrandID == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Products.Update(ctx, model.Product{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		BrandID:     req.BrandID,
		Image:       req.Image,
	}, req.CategoryIDs)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	}
	if err != nil {
		return err
	}
	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Products.Delete(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Product deleted.")
}

// ----- brands -----

func (h *CatalogHandler) ListBrands(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	brands, err := h.Brands.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, brands)
}

func (h *CatalogHandler) CreateBrand(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Brands.Create(ctx, req.Name)
	if errors.Is(err, repository.ErrNameExists) {
		return apperr.BadRequest(apperr.CodeBrandAlreadyExists, "Brand already exists.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, b)
}

func (h *CatalogHandler) UpdateBrand(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Brands.Update(ctx, c.Param("id"), req.Name)
	if errors.Is(err, repository.ErrNameExists) {
		return apperr.BadRequest(apperr.CodeBrandAlreadyExists, "Brand already exists.")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeBrandNotFound, "Brand not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, model.Brand{ID: c.Param("id"), Name: req.Name})
}

func (h *CatalogHandler) DeleteBrand(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Brands.Delete(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeBrandNotFound, "Brand not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Brand deleted.")
}

// ----- categories -----

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	categories, err := h.Categories.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	cat, err := h.Categories.Create(ctx, req.Name)
	if errors.Is(err, repository.ErrNameExists) {
		return apperr.BadRequest(apperr.CodeCategoryAlreadyExists, "Category already exists.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, cat)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	var req nameReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return apperr.BadRequest(apperr.CodeUnprocessableEntity, "Unprocessable entity.")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Categories.Update(ctx, c.Param("id"), req.Name)
	if errors.Is(err, repository.ErrNameExists) {
		return apperr.BadRequest(apperr.CodeCategoryAlreadyExists, "Category already exists.")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeCategoryNotFound, "Category not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, model.Category{ID: c.Param("id"), Name: req.Name})
}

func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Categories.Delete(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(apperr.CodeCategoryNotFound, "Category not found.")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category deleted.")
}

// reqContext derives a bounded context from the request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}
