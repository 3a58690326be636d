package models

import "time"

// Product is a resource record. ImageURL is empty when the product was
// created without an artifact; otherwise it locates the stored artifact.
type Product struct {
	ProductID          string    `json:"productId"`
	ProductName        string    `json:"productName"`
	ProductOrigin      string    `json:"productOrigin"`
	ProductCategory    string    `json:"productCategory"`
	ProductComposition string    `json:"productComposition"`
	NutritionFacts     string    `json:"nutritionFacts"`
	Owner              string    `json:"owner"`
	ImageURL           string    `json:"imageUrl"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ProductPatch is a partial update of a product's descriptive fields.
// Nil fields are left unchanged; owner and image are never patched.
type ProductPatch struct {
	ProductName        *string `json:"productName"`
	ProductOrigin      *string `json:"productOrigin"`
	ProductCategory    *string `json:"productCategory"`
	ProductComposition *string `json:"productComposition"`
	NutritionFacts     *string `json:"nutritionFacts"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.ProductName == nil && p.ProductOrigin == nil && p.ProductCategory == nil &&
		p.ProductComposition == nil && p.NutritionFacts == nil
}

// ProductCategory is a row of the product_categories lookup table.
type ProductCategory struct {
	CategoryName string `json:"category_name"`
}
