package smoke

import (
	"github.com/corray333/order-lifecycle/internal/catalog"
)

// missingProductID is an id the catalog is not expected to have.
const missingProductID catalog.Int = 999999

func baseProduct() catalog.Product {
	return catalog.Product{
		CategoryID:  1,
		Title:       "valid_title",
		Content:     "content",
		Price:       catalog.NewPrice(10),
		OldPrice:    catalog.NewPrice(100),
		Status:      1,
		Keywords:    "keywords",
		Description: "desc",
		Hit:         0,
	}
}

func validAddProducts() []catalog.Product {
	return []catalog.Product{
		{
			CategoryID:  1,
			Title:       "title",
			Content:     "content",
			Price:       catalog.NewPrice(10),
			OldPrice:    catalog.NewPrice(100),
			Status:      1,
			Keywords:    "keywords",
			Description: "desc",
			Hit:         0,
		},
		{
			CategoryID:  14,
			Title:       "заголовок",
			Content:     "контент",
			Price:       catalog.NewPrice(100),
			OldPrice:    catalog.NewPrice(100),
			Status:      0,
			Keywords:    "ключ слова",
			Description: "описание",
			Hit:         1,
		},
	}
}

type variant struct {
	name    string
	product catalog.Product
}

// invalidVariants returns copies of p that each break one catalog rule.
func invalidVariants(p catalog.Product) []variant {
	modifiers := []struct {
		name   string
		modify func(*catalog.Product)
	}{
		{"category below range", func(p *catalog.Product) { p.CategoryID = 0 }},
		{"category above range", func(p *catalog.Product) { p.CategoryID = 16 }},
		{"negative status", func(p *catalog.Product) { p.Status = -1 }},
		{"status above one", func(p *catalog.Product) { p.Status = 2 }},
		{"negative hit", func(p *catalog.Product) { p.Hit = -1 }},
		{"hit above one", func(p *catalog.Product) { p.Hit = 2 }},
	}

	result := make([]variant, 0, len(modifiers))
	for _, m := range modifiers {
		v := p
		m.modify(&v)
		result = append(result, variant{name: m.name, product: v})
	}

	return result
}

func editedProduct() catalog.Product {
	return catalog.Product{
		CategoryID:  1,
		Title:       "new_title",
		Content:     "new_content",
		Price:       catalog.NewPrice(50),
		OldPrice:    catalog.NewPrice(100),
		Status:      0,
		Keywords:    "new_keywords",
		Description: "new_desc",
		Hit:         1,
	}
}
