package service

import (
	"context"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

// CatalogService exposes product reads for the storefront.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return s.products.FindByID(ctx, id)
}
