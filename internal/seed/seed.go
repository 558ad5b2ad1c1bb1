package seed

import (
	"context"
	"errors"
	"fmt"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const AdminUsername = "admin"

type medicineSeed struct {
	name                 string
	category             string
	description          string
	price                string
	stock                int
	dosage               string
	manufacturer         string
	featured             bool
	requiresPrescription bool
}

var categories = []models.Category{
	{Name: "Pain Relief", Description: "Medicines for pain management and relief"},
	{Name: "Vitamins & Supplements", Description: "Essential vitamins and dietary supplements"},
	{Name: "Cold & Flu", Description: "Medicines for cold, flu, and respiratory issues"},
	{Name: "First Aid", Description: "First aid supplies and wound care products"},
	{Name: "Digestive Health", Description: "Products for digestive wellness"},
	{Name: "Skin Care", Description: "Dermatological products and skin treatments"},
}

var medicines = []medicineSeed{
	{
		name: "Paracetamol 500mg", category: "Pain Relief",
		description: "Fast-acting pain relief and fever reducer. Suitable for headaches, muscle aches, and mild to moderate pain.",
		price:       "150.00", stock: 100, dosage: "1-2 tablets every 4-6 hours", manufacturer: "GSK", featured: true,
	},
	{
		name: "Ibuprofen 400mg", category: "Pain Relief",
		description: "Anti-inflammatory pain reliever. Effective for joint pain, dental pain, and menstrual cramps.",
		price:       "200.00", stock: 80, dosage: "1 tablet every 6-8 hours with food", manufacturer: "Pfizer", featured: true,
	},
	{
		name: "Vitamin C 1000mg", category: "Vitamins & Supplements",
		description: "High-strength vitamin C supplement for immune support and overall health.",
		price:       "450.00", stock: 60, dosage: "1 tablet daily", manufacturer: "Nature Made", featured: true,
	},
	{
		name: "Multivitamin Complex", category: "Vitamins & Supplements",
		description: "Complete daily multivitamin with essential vitamins and minerals for optimal health.",
		price:       "850.00", stock: 45, dosage: "1 tablet daily with breakfast", manufacturer: "Centrum", featured: true,
	},
	{
		name: "Cold & Flu Relief", category: "Cold & Flu",
		description: "Multi-symptom relief for cold and flu. Relieves congestion, fever, and body aches.",
		price:       "350.00", stock: 70, dosage: "2 tablets every 6 hours", manufacturer: "Vicks",
	},
	{
		name: "Cough Syrup", category: "Cold & Flu",
		description: "Effective cough suppressant for dry and productive coughs. Soothes throat irritation.",
		price:       "280.00", stock: 55, dosage: "10ml every 4-6 hours", manufacturer: "Benylin",
	},
	{
		name: "Antiseptic Cream", category: "First Aid",
		description: "Antibacterial cream for minor cuts, burns, and skin infections.",
		price:       "180.00", stock: 90, dosage: "Apply thin layer 2-3 times daily", manufacturer: "Dettol", featured: true,
	},
	{
		name: "Bandage Pack", category: "First Aid",
		description: "Assorted sterile bandages for wound care and protection.",
		price:       "250.00", stock: 120, dosage: "As needed", manufacturer: "Johnson & Johnson",
	},
	{
		name: "Antacid Tablets", category: "Digestive Health",
		description: "Fast relief from heartburn, acid indigestion, and upset stomach.",
		price:       "220.00", stock: 65, dosage: "1-2 tablets as needed", manufacturer: "Tums",
	},
	{
		name: "Probiotic Capsules", category: "Digestive Health",
		description: "Daily probiotic supplement for digestive health and immune support.",
		price:       "780.00", stock: 40, dosage: "1 capsule daily", manufacturer: "Culturelle", featured: true,
	},
	{
		name: "Hydrocortisone Cream", category: "Skin Care",
		description: "Anti-itch cream for skin irritation, rashes, and eczema.",
		price:       "320.00", stock: 50, dosage: "Apply thin layer 2 times daily", manufacturer: "Cortizone",
		requiresPrescription: true,
	},
	{
		name: "Sunscreen SPF 50", category: "Skin Care",
		description: "High protection sunscreen for all skin types. Water resistant.",
		price:       "550.00", stock: 35, dosage: "Apply 15 minutes before sun exposure", manufacturer: "Nivea", featured: true,
	},
}

// Result counts the rows a Run created. Rows that already existed are not counted.
type Result struct {
	Users      int
	Categories int
	Medicines  int
}

// Run loads the staff account and the starter catalogue. It is safe to run
// repeatedly: existing usernames, category names and medicine names are skipped.
func Run(ctx context.Context, repo store.Repository, auth *service.AuthService, adminPassword string) (Result, error) {
	logger := util.GetLogger()
	var res Result

	created, err := seedAdmin(ctx, repo, auth, adminPassword)
	if err != nil {
		return res, err
	}
	if created {
		res.Users++
	}

	byName, n, err := seedCategories(ctx, repo)
	if err != nil {
		return res, err
	}
	res.Categories = n

	for _, ms := range medicines {
		_, err := repo.FindMedicineByName(ctx, ms.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("failed to look up medicine %q: %w", ms.name, err)
		}

		category, ok := byName[ms.category]
		if !ok {
			return res, fmt.Errorf("unknown category %q for medicine %q", ms.category, ms.name)
		}

		m := &models.Medicine{
			Name:                 ms.name,
			Description:          ms.description,
			CategoryID:           category.ID,
			Price:                decimal.RequireFromString(ms.price),
			Stock:                ms.stock,
			Dosage:               ms.dosage,
			Manufacturer:         ms.manufacturer,
			Featured:             ms.featured,
			RequiresPrescription: ms.requiresPrescription,
		}
		if err := repo.CreateMedicine(ctx, m); err != nil {
			return res, fmt.Errorf("failed to create medicine %q: %w", ms.name, err)
		}
		res.Medicines++
	}

	logger.Info("Seed data loaded",
		zap.Int("users", res.Users),
		zap.Int("categories", res.Categories),
		zap.Int("medicines", res.Medicines))
	return res, nil
}

func seedAdmin(ctx context.Context, repo store.UserRepository, auth *service.AuthService, password string) (bool, error) {
	_, err := repo.GetUserByUsername(ctx, AdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	admin := &models.User{
		Username:  AdminUsername,
		Email:     "admin@skypharma.com",
		FirstName: "Admin",
		LastName:  "User",
		IsStaff:   true,
	}
	if _, err := auth.CreateUser(ctx, admin, password); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}

// seedCategories returns every category by name, creating the missing ones.
func seedCategories(ctx context.Context, repo store.CatalogRepository) (map[string]models.Category, int, error) {
	existing, err := repo.ListCategories(ctx, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	byName := make(map[string]models.Category, len(existing)+len(categories))
	for _, c := range existing {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}

	created := 0
	for _, c := range categories {
		if _, ok := byName[c.Name]; ok {
			continue
		}
		c := c
		if err := repo.CreateCategory(ctx, &c); err != nil {
			return nil, created, fmt.Errorf("failed to create category %q: %w", c.Name, err)
		}
		byName[c.Name] = c
		created++
	}
	return byName, created, nil
}
