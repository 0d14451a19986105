package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Listing queries tried in order for bestsellers; the first non-empty
// result wins.
var bestsellerQueries = []string{
	"averageRating[gte]=4.5",
	"averageRating[gte]=4.0",
	"averageRating[gte]=3.5",
	"limit=10&sort=rating",
	"limit=10",
}

// Category listing endpoints tried in order; the first successful response
// wins even when it is empty.
var categoryPaths = []string{
	"/categories",
	"/category",
	"/categories/all",
	"/category/all",
}

// FeaturedQuery selects highly rated products.
const FeaturedQuery = "averageRating[gte]=4"

// Products lists products matching a backend listing query such as the one
// filter.Builder.BuildQuery renders.
func (c *Client) Products(ctx context.Context, query string) ([]domain.RawProduct, error) {
	raw, err := c.call(ctx, "products.list", http.MethodGet, "/product", query, nil)
	if err != nil {
		return nil, err
	}
	return productList(raw), nil
}

// Product fetches one product by id.
func (c *Client) Product(ctx context.Context, id string) (domain.RawProduct, error) {
	if id == "" {
		return domain.RawProduct{}, apperrors.InvalidInput("product id is required")
	}
	raw, err := c.call(ctx, "products.get", http.MethodGet, "/product/"+url.PathEscape(id), "", nil)
	if err != nil {
		return domain.RawProduct{}, err
	}

	doc := unwrapData(raw)
	if v, ok := member(doc, "product"); ok && truthy(v) {
		doc = v
	}
	var p domain.RawProduct
	if err := json.Unmarshal(doc, &p); err != nil {
		return domain.RawProduct{}, apperrors.Malformed("product", err)
	}
	return p, nil
}

// Featured lists highly rated products.
func (c *Client) Featured(ctx context.Context) ([]domain.RawProduct, error) {
	return c.Products(ctx, FeaturedQuery)
}

// Bestsellers walks descending rating thresholds and returns the first
// non-empty listing. Individual failures move on to the next query; only
// when every query fails is the last error returned.
func (c *Client) Bestsellers(ctx context.Context) ([]domain.RawProduct, error) {
	var lastErr error
	for _, q := range bestsellerQueries {
		products, err := c.Products(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(products) > 0 {
			return products, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all bestseller queries failed: %w", lastErr)
	}
	return []domain.RawProduct{}, nil
}

// Brands lists brands from "brands" or the unwrapped body itself.
func (c *Client) Brands(ctx context.Context) ([]domain.RawBrand, error) {
	raw, err := c.call(ctx, "brands.list", http.MethodGet, "/brand", "", nil)
	if err != nil {
		return nil, err
	}
	doc := unwrapData(raw)
	if v, ok := member(doc, "brands"); ok && truthy(v) {
		doc = v
	}
	return domain.DecodeList[domain.RawBrand](doc), nil
}

// Categories tries each known category endpoint in turn.
func (c *Client) Categories(ctx context.Context) ([]domain.RawCategory, error) {
	var errs []error
	for _, p := range categoryPaths {
		raw, err := c.call(ctx, "categories.list", http.MethodGet, p, "", nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		doc := unwrapData(raw)
		if v, ok := member(doc, "categories"); ok && truthy(v) {
			doc = v
		}
		return domain.DecodeList[domain.RawCategory](doc), nil
	}
	return nil, fmt.Errorf("all category endpoints failed: %w", errors.Join(errs...))
}

// productList extracts a product array from a listing body: the unwrapped
// body itself, or its "products" or "docs" member.
func productList(raw json.RawMessage) []domain.RawProduct {
	doc := unwrapData(raw)
	if isArray(doc) {
		return domain.DecodeList[domain.RawProduct](doc)
	}
	if v, ok := firstArray(doc, []string{"products"}, []string{"docs"}); ok {
		return domain.DecodeList[domain.RawProduct](v)
	}
	return []domain.RawProduct{}
}
