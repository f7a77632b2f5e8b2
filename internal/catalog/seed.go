package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

//go:embed seed/default.toml
var defaultSeed []byte

var validate = validator.New()

type seedFile struct {
	Products []seedProduct `toml:"products" validate:"dive"`
}

type seedProduct struct {
	ID              string          `toml:"id" validate:"required"`
	Name            string          `toml:"name" validate:"required"`
	Price           decimal.Decimal `toml:"price"`
	Stock           int             `toml:"stock" validate:"min=0"`
	Unit            string          `toml:"unit" validate:"required"`
	Category        string          `toml:"category" validate:"required"`
	Images          []string        `toml:"images" validate:"dive,url"`
	HasSubscription bool            `toml:"has_subscription"`
	Customizable    bool            `toml:"customizable"`
	SubProducts     []string        `toml:"sub_products"`
	MaxSubProducts  int             `toml:"max_sub_products" validate:"min=0"`
}

// LoadDefault builds a catalog from the seed compiled into the binary.
func LoadDefault() (*MemoryCatalog, error) {
	return LoadTOML(bytes.NewReader(defaultSeed))
}

// LoadTOMLFile reads a seed file from disk.
func LoadTOMLFile(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open catalog seed")
	}
	defer f.Close()
	return LoadTOML(f)
}

// LoadTOML decodes a seed, validates it and resolves sub-product references.
func LoadTOML(r io.Reader) (*MemoryCatalog, error) {
	var file seedFile
	if _, err := toml.NewDecoder(r).Decode(&file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog seed")
	}
	if err := validate.Struct(file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog seed")
	}

	plain := make(map[string]Product, len(file.Products))
	for _, raw := range file.Products {
		p, err := raw.toProduct()
		if err != nil {
			return nil, err
		}
		plain[p.ID] = p
	}

	products := make([]Product, 0, len(file.Products))
	for _, raw := range file.Products {
		p := plain[raw.ID]
		if p.IsCustomizable {
			if p.MaxSubProducts < 1 {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q: customizable products need max_sub_products >= 1", p.ID)
			}
			if len(raw.SubProducts) == 0 {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q: customizable products need sub_products", p.ID)
			}
			p.SubProducts = make([]Product, 0, len(raw.SubProducts))
			for _, subID := range raw.SubProducts {
				sub, ok := plain[subID]
				if !ok {
					return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q: unknown sub product %q", p.ID, subID)
				}
				if sub.IsCustomizable {
					return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q: sub product %q cannot itself be customizable", p.ID, subID)
				}
				p.SubProducts = append(p.SubProducts, sub)
			}
		}
		products = append(products, p)
	}

	return NewMemoryCatalog(products)
}

func (s seedProduct) toProduct() (Product, error) {
	if s.Price.IsNegative() {
		return Product{}, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q: price must be non-negative", s.ID)
	}
	unit, err := enums.ParseProductUnit(strings.ToLower(s.Unit))
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %q", s.ID))
	}
	category, err := enums.ParseProductCategory(strings.ToLower(s.Category))
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("product %q", s.ID))
	}
	p := Product{
		ID:              s.ID,
		Name:            s.Name,
		UnitPrice:       s.Price,
		Stock:           s.Stock,
		Unit:            unit,
		Category:        category,
		Images:          s.Images,
		HasSubscription: s.HasSubscription,
		IsCustomizable:  s.Customizable,
	}
	if s.Customizable {
		p.MaxSubProducts = s.MaxSubProducts
	}
	return p, nil
}
