package products

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kioskworks/counter-backend/pkg/db"
	"github.com/kioskworks/counter-backend/pkg/db/models"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

// Deleter removes a product and every ordered unit referencing it.
type Deleter interface {
	DeleteProduct(ctx context.Context, productID int64) error
}

// Service owns the menu catalog.
type Service struct {
	repo    Repository
	deleter Deleter
	logg    *logger.Logger
}

// CreateInput is a new menu entry.
type CreateInput struct {
	ProductID int64
	Name      string
	Filename  string
	Price     int64
	NoStock   *int64
}

// NewService builds the catalog service.
func NewService(repo Repository, deleter Deleter, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if deleter == nil {
		return nil, fmt.Errorf("product deleter required")
	}
	return &Service{repo: repo, deleter: deleter, logg: logg}, nil
}

// List returns the full menu in product-id order.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

// ByID returns one menu entry.
func (s *Service) ByID(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Create adds a menu entry. Product ids are chosen by staff and must be
// unused.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.ProductID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	if _, err := s.repo.FindByID(ctx, input.ProductID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product id already taken")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product id")
	}

	product := models.Product{
		ProductID: input.ProductID,
		Name:      input.Name,
		Filename:  input.Filename,
		Price:     input.Price,
		NoStock:   input.NoStock,
	}
	if err := s.repo.CreateProducts(ctx, []models.Product{product}); err != nil {
		// Catches the create racing another create of the same id past
		// the existence check above.
		if db.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product id already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return &product, nil
}

// Delete removes the product and cascades into ordered items.
func (s *Service) Delete(ctx context.Context, productID int64) error {
	return s.deleter.DeleteProduct(ctx, productID)
}

// SeedIfEmpty loads the default menu into an empty catalog.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if count > 0 {
		return nil
	}
	catalog := defaultCatalog()
	if err := s.repo.CreateProducts(ctx, catalog); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed catalog")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "count", len(catalog)), "seeded default catalog")
	}
	return nil
}
