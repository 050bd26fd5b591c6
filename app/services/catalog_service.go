package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mogusu300/b2zi-merchant/app/models"
	"github.com/mogusu300/b2zi-merchant/app/repositories"
	"github.com/mogusu300/b2zi-merchant/pkg/apperr"
	"github.com/mogusu300/b2zi-merchant/pkg/cache"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name        string          `json:"name"        validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	Category    string          `json:"category"    validate:"required,max=100"`
	Images      []string        `json:"images"`
	Colors      []string        `json:"colors"`
	Types       []string        `json:"types"`
	Stock       int             `json:"stock"       validate:"gte=0"`
}

// MerchantStats summarises a merchant's shop.
type MerchantStats struct {
	TotalProducts  int64                        `json:"totalProducts"`
	TotalOrders    int64                        `json:"totalOrders"`
	TotalRevenue   decimal.Decimal              `json:"totalRevenue"`
	TotalViews     int64                        `json:"totalViews"`
	OrdersByStatus map[models.OrderStatus]int64 `json:"ordersByStatus"`
}

type CatalogService struct {
	products  *repositories.ProductRepository
	merchants *repositories.MerchantRepository
	orders    *repositories.OrderRepository
	views     cache.Counter
}

func NewCatalogService(db *gorm.DB, views cache.Counter) *CatalogService {
	return &CatalogService{
		products:  repositories.NewProductRepository(db),
		merchants: repositories.NewMerchantRepository(db),
		orders:    repositories.NewOrderRepository(db),
		views:     views,
	}
}

func viewKey(merchantID string) string { return "views:merchant:" + merchantID }

// ListProducts filters by exact category and by a case-insensitive substring
// of name or description. Results are newest first.
func (s *CatalogService) ListProducts(ctx context.Context, category, search string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	products, err := s.products.List(ctx, repositories.ProductFilter{Category: category, Search: search})
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product and counts a view for its seller.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if _, err := s.views.Incr(ctx, viewKey(p.SellerID), 1); err != nil {
		logger.WithCtx(ctx).Warn("catalog: count view", "product_id", p.ID, "error", err)
	}
	return p, nil
}

func (s *CatalogService) findProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if repositories.IsNotFound(err) {
		return models.Product{}, apperr.New(apperr.ErrNotFound, "Product not found")
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: load product %s: %w", id, err)
	}
	return p, nil
}

// CreateProduct adds a product for an approved merchant.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (models.Product, error) {
	if err := checkInput(in, msgMissingFields, "Invalid product data"); err != nil {
		return models.Product{}, err
	}

	seller, err := s.merchants.FindByID(ctx, sellerID)
	if err != nil && !repositories.IsNotFound(err) {
		return models.Product{}, fmt.Errorf("catalog: load seller %s: %w", sellerID, err)
	}
	if err != nil || seller.Status != models.MerchantApproved {
		return models.Product{}, apperr.New(apperr.ErrForbidden, "Only approved merchants can add products")
	}

	p := models.Product{SellerID: seller.ID}
	apply(&p, in)
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("catalog: create product: %w", err)
	}
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID, "seller_id", seller.ID)
	return s.findProduct(ctx, p.ID)
}

// UpdateProduct replaces the editable fields of a product owned by sellerID.
func (s *CatalogService) UpdateProduct(ctx context.Context, sellerID, productID string, in ProductInput) (models.Product, error) {
	if err := checkInput(in, msgMissingFields, "Invalid product data"); err != nil {
		return models.Product{}, err
	}
	p, err := s.owned(ctx, sellerID, productID)
	if err != nil {
		return models.Product{}, err
	}

	apply(&p, in)
	p.Seller = nil
	if err := s.products.Save(ctx, &p); err != nil {
		return models.Product{}, fmt.Errorf("catalog: save product %s: %w", p.ID, err)
	}
	return s.findProduct(ctx, p.ID)
}

// DeleteProduct soft-deletes a product owned by sellerID. Order lines keep
// pointing at it.
func (s *CatalogService) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	p, err := s.owned(ctx, sellerID, productID)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("catalog: delete product %s: %w", p.ID, err)
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", p.ID, "seller_id", sellerID)
	return nil
}

func (s *CatalogService) owned(ctx context.Context, sellerID, productID string) (models.Product, error) {
	p, err := s.findProduct(ctx, productID)
	if err != nil {
		return models.Product{}, err
	}
	if p.SellerID != sellerID {
		return models.Product{}, apperr.New(apperr.ErrForbidden, "You can only manage your own products")
	}
	return p, nil
}

func apply(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.Images = cleanList(in.Images)
	p.Colors = cleanList(in.Colors)
	p.Types = cleanList(in.Types)
	p.Stock = in.Stock
}

// cleanList trims entries and drops blanks and repeats, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ListMerchantProducts returns a merchant's live products, newest first.
func (s *CatalogService) ListMerchantProducts(ctx context.Context, merchantID string) ([]models.Product, error) {
	products, err := s.products.List(ctx, repositories.ProductFilter{SellerID: merchantID})
	if err != nil {
		return nil, fmt.Errorf("catalog: list merchant products: %w", err)
	}
	return products, nil
}

// ListMerchantOrders returns orders that include the merchant's products,
// each trimmed to the merchant's own lines.
func (s *CatalogService) ListMerchantOrders(ctx context.Context, merchantID string) ([]models.Order, error) {
	orders, err := s.orders.ListForMerchant(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list merchant orders: %w", err)
	}
	return orders, nil
}

// MerchantStats aggregates a merchant's products, orders, revenue and views.
func (s *CatalogService) MerchantStats(ctx context.Context, merchantID string) (MerchantStats, error) {
	if _, err := s.merchants.FindByID(ctx, merchantID); err != nil {
		if repositories.IsNotFound(err) {
			return MerchantStats{}, apperr.New(apperr.ErrNotFound, "Merchant not found")
		}
		return MerchantStats{}, fmt.Errorf("catalog: load merchant %s: %w", merchantID, err)
	}

	stats := MerchantStats{OrdersByStatus: map[models.OrderStatus]int64{
		models.OrderPending:    0,
		models.OrderProcessing: 0,
		models.OrderShipped:    0,
		models.OrderDelivered:  0,
		models.OrderCancelled:  0,
	}}

	var err error
	if stats.TotalProducts, err = s.products.CountBySeller(ctx, merchantID); err != nil {
		return MerchantStats{}, fmt.Errorf("catalog: count products: %w", err)
	}

	counts, err := s.orders.CountForMerchantByStatus(ctx, merchantID)
	if err != nil {
		return MerchantStats{}, fmt.Errorf("catalog: count orders: %w", err)
	}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
		stats.TotalOrders += c.Count
	}

	if stats.TotalRevenue, err = s.orders.RevenueForMerchant(ctx, merchantID); err != nil {
		return MerchantStats{}, fmt.Errorf("catalog: revenue: %w", err)
	}

	views, err := s.views.Get(ctx, viewKey(merchantID))
	if err != nil {
		logger.WithCtx(ctx).Warn("catalog: read views", "merchant_id", merchantID, "error", err)
	}
	stats.TotalViews = views
	return stats, nil
}
