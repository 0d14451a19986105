package domain

import (
	"bytes"
	"encoding/json"
)

// ID is a backend identifier. It accepts a string, a number or a Mongo
// extended-JSON object {"$oid": "..."}.
type ID string

// UnmarshalJSON never fails: unsupported shapes decode to "".
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*id = ID(s)
		}
	case '{':
		var oid struct {
			OID string `json:"$oid"`
			ID  string `json:"_id"`
		}
		if err := json.Unmarshal(data, &oid); err == nil {
			if oid.OID != "" {
				*id = ID(oid.OID)
			} else {
				*id = ID(oid.ID)
			}
		}
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err == nil {
			*id = ID(num.String())
		}
	}
	return nil
}

// decodeFields decodes each listed key of a JSON object into its target,
// skipping keys that are absent or whose value has the wrong shape. It only
// fails when data is not an object at all.
func decodeFields(data []byte, fields map[string]any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, target := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		_ = json.Unmarshal(v, target)
	}
	return nil
}

// lenientSlice decodes a JSON array element by element, dropping elements
// that fail to decode. Non-arrays decode to nil.
type lenientSlice[T any] []T

func (s *lenientSlice[T]) UnmarshalJSON(data []byte) error {
	*s = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

// RawImage is an image as the backend sends it.
type RawImage struct {
	URL        string
	AltText    LocalizedText
	IsFeatured bool
}

// UnmarshalJSON accepts an image object or a bare URL string.
func (r *RawImage) UnmarshalJSON(data []byte) error {
	*r = RawImage{}
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		r.URL = url
		return nil
	}
	return decodeFields(data, map[string]any{
		"url":        &r.URL,
		"altText":    &r.AltText,
		"isFeatured": &r.IsFeatured,
	})
}

// MarshalJSON writes the backend's image shape.
func (r RawImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL        string        `json:"url"`
		AltText    LocalizedText `json:"altText"`
		IsFeatured bool          `json:"isFeatured,omitempty"`
	}{r.URL, r.AltText, r.IsFeatured})
}

// RawOption is one variant option as the backend sends it.
type RawOption struct {
	SKU                string
	Value              LocalizedText
	ColorHex           string
	ColorName          LocalizedText
	Price              Number
	PriceAfterDiscount Number
	Discount           Number
	Stock              Number
	VariantImages      []RawImage
}

func (r *RawOption) UnmarshalJSON(data []byte) error {
	*r = RawOption{}
	var images lenientSlice[RawImage]
	err := decodeFields(data, map[string]any{
		"sku":                &r.SKU,
		"value":              &r.Value,
		"colorHex":           &r.ColorHex,
		"colorName":          &r.ColorName,
		"price":              &r.Price,
		"priceAfterDiscount": &r.PriceAfterDiscount,
		"discount":           &r.Discount,
		"stock":              &r.Stock,
		"variantImages":      &images,
	})
	r.VariantImages = images
	return err
}

// RawVariant is a variant axis as the backend sends it.
type RawVariant struct {
	Name    LocalizedText
	Options []RawOption
}

func (r *RawVariant) UnmarshalJSON(data []byte) error {
	*r = RawVariant{}
	var options lenientSlice[RawOption]
	err := decodeFields(data, map[string]any{
		"name":    &r.Name,
		"options": &options,
	})
	r.Options = options
	return err
}

// RawBrand is a brand record, or a product's embedded brand reference.
type RawBrand struct {
	MongoID ID
	ID      ID
	Name    LocalizedText
	Slug    LocalizedText
	Logo    RawImage
}

// UnmarshalJSON accepts a brand object or a bare identifier string.
func (r *RawBrand) UnmarshalJSON(data []byte) error {
	*r = RawBrand{}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = ID(id)
		return nil
	}
	return decodeFields(data, map[string]any{
		"_id":  &r.MongoID,
		"id":   &r.ID,
		"name": &r.Name,
		"slug": &r.Slug,
		"logo": &r.Logo,
	})
}

// RawCategory is a category record, or a product's embedded category.
type RawCategory struct {
	MongoID ID
	ID      ID
	Name    LocalizedText
	Slug    LocalizedText
	Image   RawImage
}

// UnmarshalJSON accepts a category object or a bare identifier string.
func (r *RawCategory) UnmarshalJSON(data []byte) error {
	*r = RawCategory{}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = ID(id)
		return nil
	}
	return decodeFields(data, map[string]any{
		"_id":   &r.MongoID,
		"id":    &r.ID,
		"name":  &r.Name,
		"slug":  &r.Slug,
		"image": &r.Image,
	})
}

// RawProduct is the explicit schema of every product shape the backend has
// served. Fields with several historical names keep one field per alias;
// catalog.Normalize picks between them.
type RawProduct struct {
	MongoID          ID
	ID               ID
	Name             LocalizedText
	Slug             LocalizedText
	Details          LocalizedText
	ShortDescription LocalizedText
	Description      LocalizedText
	Brand            RawBrand
	Category         RawCategory
	Images           []RawImage
	Thumbnail        string
	SKU              string

	BasePrice              Number
	Price                  Number
	BestPriceAfterDiscount Number
	Discount               Number
	DiscountPercentage     Number
	AverageRating          Number
	NumOfReviews           Number
	ReviewCount            Number
	TotalStock             Number
	Stock                  Number

	Variants []RawVariant
}

func (r *RawProduct) UnmarshalJSON(data []byte) error {
	*r = RawProduct{}
	var (
		images   lenientSlice[RawImage]
		variants lenientSlice[RawVariant]
	)
	err := decodeFields(data, map[string]any{
		"_id":                    &r.MongoID,
		"id":                     &r.ID,
		"name":                   &r.Name,
		"slug":                   &r.Slug,
		"details":                &r.Details,
		"shortDescription":       &r.ShortDescription,
		"description":            &r.Description,
		"brand":                  &r.Brand,
		"category":               &r.Category,
		"images":                 &images,
		"thumbnail":              &r.Thumbnail,
		"sku":                    &r.SKU,
		"basePrice":              &r.BasePrice,
		"price":                  &r.Price,
		"bestPriceAfterDiscount": &r.BestPriceAfterDiscount,
		"discount":               &r.Discount,
		"discountPercentage":     &r.DiscountPercentage,
		"averageRating":          &r.AverageRating,
		"numOfReviews":           &r.NumOfReviews,
		"reviewCount":            &r.ReviewCount,
		"totalStock":             &r.TotalStock,
		"stock":                  &r.Stock,
		"variants":               &variants,
	})
	r.Images = images
	r.Variants = variants
	return err
}

// RawCartItem is a cart line as the backend sends it.
type RawCartItem struct {
	MongoID     ID
	ID          ID
	ProductID   ID
	Product     RawProduct
	SKU         string
	Quantity    Number
	Price       Number
	ProductName LocalizedText
	Image       string
	Images      []RawImage
	Brand       LocalizedText
	Category    LocalizedText
	Variant     struct {
		ColorHex string
		Color    LocalizedText
		Label    LocalizedText
	}
}

func (r *RawCartItem) UnmarshalJSON(data []byte) error {
	*r = RawCartItem{}
	var (
		images  lenientSlice[RawImage]
		variant json.RawMessage
		product json.RawMessage
	)
	err := decodeFields(data, map[string]any{
		"_id":         &r.MongoID,
		"id":          &r.ID,
		"productId":   &r.ProductID,
		"product":     &product,
		"sku":         &r.SKU,
		"quantity":    &r.Quantity,
		"price":       &r.Price,
		"productName": &r.ProductName,
		"image":       &r.Image,
		"images":      &images,
		"brand":       &r.Brand,
		"category":    &r.Category,
		"variant":     &variant,
	})
	r.Images = images

	// "product" is either the id or the populated product document.
	if len(product) > 0 {
		if product[0] == '{' {
			_ = json.Unmarshal(product, &r.Product)
		} else if r.ProductID == "" {
			_ = json.Unmarshal(product, &r.ProductID)
		}
	}
	if len(variant) > 0 {
		_ = decodeFields(variant, map[string]any{
			"colorHex": &r.Variant.ColorHex,
			"color":    &r.Variant.Color,
			"label":    &r.Variant.Label,
		})
	}
	return err
}

// DecodeList decodes a JSON array leniently: elements of the wrong shape are
// dropped, and anything that is not an array yields an empty slice.
func DecodeList[T any](data []byte) []T {
	var s lenientSlice[T]
	_ = s.UnmarshalJSON(data)
	if s == nil {
		return []T{}
	}
	return s
}
