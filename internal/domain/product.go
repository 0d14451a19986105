package domain

// DefaultProductName is shown when a product has no name in any language.
const DefaultProductName = "Product"

// Image is a display image resolved for one language.
type Image struct {
	URL      string `json:"url"`
	AltText  string `json:"altText,omitempty"`
	Featured bool   `json:"isFeatured,omitempty"`
}

// Option is one purchasable choice within a Variant. Stock is nil when the
// backend did not report option-level stock.
type Option struct {
	SKU                string  `json:"sku"`
	Value              string  `json:"value"`
	ColorHex           string  `json:"colorHex,omitempty"`
	ColorName          string  `json:"colorName,omitempty"`
	Price              float64 `json:"price,omitempty"`
	PriceAfterDiscount float64 `json:"priceAfterDiscount,omitempty"`
	Discount           float64 `json:"discount,omitempty"`
	Stock              *int    `json:"stock,omitempty"`
	Images             []Image `json:"images,omitempty"`
}

// Variant is a named product axis such as Color.
type Variant struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Product is the canonical, language-resolved product.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description,omitempty"`
	BrandName     string    `json:"brandName"`
	BrandSlug     string    `json:"brandSlug,omitempty"`
	CategoryName  string    `json:"categoryName"`
	CategorySlug  string    `json:"categorySlug,omitempty"`
	SKU           string    `json:"sku,omitempty"`
	Images        []Image   `json:"images"`
	BasePrice     float64   `json:"basePrice"`
	Price         float64   `json:"price"`
	Discount      float64   `json:"discount"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	Stock         int       `json:"stock"`
	Variants      []Variant `json:"variants,omitempty"`
}

// FeaturedImage returns the image flagged as featured, else the first
// image, else the zero Image.
func (p Product) FeaturedImage() Image {
	for _, img := range p.Images {
		if img.Featured {
			return img
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return Image{}
}

// Brand is a normalized facet brand.
type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Logo string `json:"logo,omitempty"`
}

// Category is a normalized facet category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}
