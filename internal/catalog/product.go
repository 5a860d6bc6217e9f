package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Status values returned by the catalog for mutating calls.
const (
	StatusRejected = 0
	StatusAccepted = 1
)

// Int is an integer that the catalog may encode either as a JSON number or
// as a quoted string.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*i = 0
		return nil
	}

	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", data, err)
	}
	*i = Int(v)

	return nil
}

// Price is a decimal amount sent to the catalog as a bare JSON number. It
// accepts both numbers and quoted strings when decoding.
type Price struct {
	decimal.Decimal
}

// NewPrice returns a whole-unit price.
func NewPrice(v int64) Price {
	return Price{decimal.NewFromInt(v)}
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	if err := p.Decimal.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}

	return nil
}

// Product is a catalog product as exchanged with the remote API.
type Product struct {
	ID          Int    `json:"id"`
	CategoryID  Int    `json:"category_id"`
	Title       string `json:"title"`
	Alias       string `json:"alias"`
	Content     string `json:"content"`
	Price       Price  `json:"price"`
	OldPrice    Price  `json:"old_price"`
	Status      Int    `json:"status"`
	Keywords    string `json:"keywords"`
	Description string `json:"description"`
	Hit         Int    `json:"hit"`
}

// SameContent reports whether every field but id and alias matches.
func (p Product) SameContent(other Product) bool {
	return p.CategoryID == other.CategoryID &&
		p.Title == other.Title &&
		p.Content == other.Content &&
		p.Price.Equal(other.Price.Decimal) &&
		p.OldPrice.Equal(other.OldPrice.Decimal) &&
		p.Status == other.Status &&
		p.Keywords == other.Keywords &&
		p.Description == other.Description &&
		p.Hit == other.Hit
}

// AddResponse is the body returned by /api/addproduct.
type AddResponse struct {
	ID     Int `json:"id"`
	Status Int `json:"status"`

	HTTPStatus int `json:"-"`
}

// StatusResponse is the body returned by /api/editproduct and /api/deleteproduct.
type StatusResponse struct {
	Status Int `json:"status"`

	HTTPStatus int `json:"-"`
}

// Find returns the product with id or false.
func Find(products []Product, id Int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}

	return Product{}, false
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}
