package service

import (
	"context"
	"fmt"
	"strings"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogService serves the public, read-only catalog
type CatalogService struct {
	repo   store.CatalogRepository
	cache  CategoryCache
	limits config.BusinessConfig
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(repo store.CatalogRepository, cache CategoryCache, limits config.BusinessConfig) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		limits: limits,
		logger: util.GetLogger(),
	}
}

type HomePage struct {
	Categories []models.Category
	Featured   []models.Medicine
}

type MedicineListing struct {
	Category   *models.Category
	Categories []models.Category
	Medicines  []models.Medicine
}

type MedicineDetail struct {
	Medicine *models.Medicine
	Category *models.Category
	Related  []models.Medicine
}

// Home returns the first categories and the featured medicines for the landing page
func (s *CatalogService) Home(ctx context.Context) (*HomePage, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Home")
	defer span.End()

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if n := s.limits.HomeCategoryLimit; n > 0 && len(categories) > n {
		categories = categories[:n]
	}

	featured, err := s.repo.ListMedicines(ctx, store.MedicineFilter{FeaturedOnly: true, Limit: s.limits.FeaturedLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load featured medicines: %w", err)
	}

	return &HomePage{Categories: categories, Featured: featured}, nil
}

// ListCategories returns all categories alphabetically, from cache when possible
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetCategories(ctx)
		switch {
		case err != nil:
			util.CategoryCacheTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Category cache read failed", zap.Error(err))
		case ok:
			util.CategoryCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			util.CategoryCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	categories, err := s.repo.ListCategories(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn("Category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// InvalidateCategories drops the cached category list after a change
func (s *CatalogService) InvalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
}

// ListMedicines lists medicines, optionally restricted to one category.
// categoryID <= 0 means all categories.
func (s *CatalogService) ListMedicines(ctx context.Context, categoryID int64) (*MedicineListing, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListMedicines")
	defer span.End()

	listing := &MedicineListing{}
	if categoryID > 0 {
		category, err := s.repo.GetCategory(ctx, categoryID)
		if err != nil {
			return nil, fromStore(err)
		}
		listing.Category = category
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	listing.Categories = categories

	medicines, err := s.repo.ListMedicines(ctx, store.MedicineFilter{CategoryID: categoryID})
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	listing.Medicines = medicines
	return listing, nil
}

// GetMedicine returns a medicine with its category and a few related medicines
func (s *CatalogService) GetMedicine(ctx context.Context, id int64) (*MedicineDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetMedicine")
	defer span.End()

	medicine, err := s.repo.GetMedicine(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}

	category, err := s.repo.GetCategory(ctx, medicine.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", medicine.CategoryID, err)
	}

	related, err := s.repo.ListMedicines(ctx, store.MedicineFilter{
		CategoryID: medicine.CategoryID,
		ExcludeID:  medicine.ID,
		Limit:      s.limits.RelatedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load related medicines: %w", err)
	}

	return &MedicineDetail{Medicine: medicine, Category: category, Related: related}, nil
}

// Search matches q against name and description, case-insensitively.
// A blank query matches nothing.
func (s *CatalogService) Search(ctx context.Context, q string) ([]models.Medicine, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Search")
	defer span.End()

	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Medicine{}, nil
	}

	medicines, err := s.repo.ListMedicines(ctx, store.MedicineFilter{Query: q})
	if err != nil {
		return nil, fmt.Errorf("failed to search medicines: %w", err)
	}
	return medicines, nil
}
