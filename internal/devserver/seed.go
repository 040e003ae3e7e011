package devserver

import "suju/storefront/internal/models"

// Seed loads a small browsable catalog and an admin account so the dev
// server is usable straight away. The admin credentials are for local
// development only.
func Seed(store *Store) {
	admin, err := store.Register("admin", "admin@suju.local", "admin123", "")
	if err == nil {
		store.mu.Lock()
		store.findUser(admin.ID).IsAdmin = true
		store.mu.Unlock()
	}

	tea := store.AddCategory(models.Category{Name: "Tea", Description: "Loose leaf and pressed teas", IsActive: true, SortOrder: 1})
	ware := store.AddCategory(models.Category{Name: "Teaware", Description: "Cups, pots and trays", IsActive: true, SortOrder: 2})

	newTag := models.Tag{ID: 1, Name: "new", Color: "#3b82f6"}
	hotTag := models.Tag{ID: 2, Name: "hot", Color: "#ef4444"}

	store.AddProduct(models.ProductDetail{
		Product: models.Product{
			Name:             "West Lake Longjing",
			ShortDescription: "Pre-Qingming spring pick",
			Price:            128,
			OriginalPrice:    168,
			Stock:            50,
			IsPublished:      true,
			Tags:             []models.Tag{newTag, hotTag},
			Category:         &tea,
		},
		Description: "Hand-fried green tea from the West Lake region.",
		Params: []models.ProductParam{
			{Name: "origin", Value: "Hangzhou"},
			{Name: "weight", Value: "100g"},
		},
	})
	store.AddProduct(models.ProductDetail{
		Product: models.Product{
			Name:             "Aged White Peony",
			ShortDescription: "2019 pressed cake",
			Price:            96,
			Stock:            30,
			IsPublished:      true,
			Tags:             []models.Tag{hotTag},
			Category:         &tea,
		},
		Description: "Mellow aged white tea, honeyed finish.",
		Params:      []models.ProductParam{{Name: "weight", Value: "300g"}},
	})
	store.AddProduct(models.ProductDetail{
		Product: models.Product{
			Name:             "Celadon Gaiwan",
			ShortDescription: "140ml lidded bowl",
			Price:            75,
			Stock:            5,
			IsPublished:      true,
			Tags:             []models.Tag{newTag},
			Category:         &ware,
		},
		Description: "Longquan celadon, ice-crackle glaze.",
		Params:      []models.ProductParam{{Name: "capacity", Value: "140ml"}},
	})
	store.AddProduct(models.ProductDetail{
		Product: models.Product{
			Name:        "Walnut Tea Tray",
			Price:       210,
			Stock:       12,
			IsPublished: true,
			Category:    &ware,
		},
		Description: "Solid walnut with drainage channel.",
	})
}
