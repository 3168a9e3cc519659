package menu

import (
	"fmt"
	"strings"
	"time"

	"fresh/apperr"
	"fresh/models"
	"fresh/utils"
)

// itemInput is the editable part of an item. Sale fields are changed
// through the sale endpoints only.
type itemInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	CategoryID  string           `json:"categoryId"`
	Tags        []string         `json:"tags"`
	Ingredients []string         `json:"ingredients"`
	Variants    []models.Variant `json:"variants"`
	Addons      []models.Addon   `json:"addons"`
	IsAvailable *bool            `json:"isAvailable"`
}

func validateItem(in itemInput) error {
	title := strings.TrimSpace(in.Title)
	if len(title) == 0 || len(title) > 100 {
		return apperr.BadRequest("Title must be between 1 and 100 characters.")
	}
	if in.Price < 0 {
		return apperr.BadRequest("Invalid price value. Must be a non-negative number.")
	}

	names := make(map[string]bool, len(in.Variants))
	for _, v := range in.Variants {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return apperr.BadRequest("Variant name is required")
		}
		if names[name] {
			return apperr.BadRequest(fmt.Sprintf("Duplicate variant %q", name))
		}
		names[name] = true
		if len(v.Options) == 0 {
			return apperr.BadRequest(fmt.Sprintf("Variant %q needs at least one option", name))
		}
		for _, o := range v.Options {
			if strings.TrimSpace(o.Name) == "" || o.Price < 0 {
				return apperr.BadRequest(fmt.Sprintf("Invalid option in variant %q", name))
			}
		}
	}
	for _, a := range in.Addons {
		if strings.TrimSpace(a.Name) == "" || a.Price < 0 {
			return apperr.BadRequest("Invalid addon")
		}
	}
	return nil
}

// toItem builds the stored item, keeping ids the client sent and minting
// the missing ones.
func toItem(in itemInput) models.Item {
	item := models.Item{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Tags:        nonNil(in.Tags),
		Ingredients: nonNil(in.Ingredients),
		Variants:    assignVariantIDs(in.Variants),
		Addons:      assignAddonIDs(in.Addons),
		IsAvailable: true,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	return item
}

func assignVariantIDs(variants []models.Variant) []models.Variant {
	out := make([]models.Variant, 0, len(variants))
	for _, v := range variants {
		v.Name = strings.TrimSpace(v.Name)
		if v.ID == "" {
			v.ID = utils.GetUUID()
		}
		opts := make([]models.VariantOption, 0, len(v.Options))
		for _, o := range v.Options {
			if o.ID == "" {
				o.ID = utils.GetUUID()
			}
			opts = append(opts, o)
		}
		v.Options = opts
		out = append(out, v)
	}
	return out
}

func assignAddonIDs(addons []models.Addon) []models.Addon {
	out := make([]models.Addon, 0, len(addons))
	for _, a := range addons {
		if a.ID == "" {
			a.ID = utils.GetUUID()
		}
		out = append(out, a)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type saleInput struct {
	SaleType      models.SaleType `json:"saleType"`
	SaleAmount    float64         `json:"saleAmount"`
	SaleStartDate *time.Time      `json:"saleStartDate"`
	SaleEndDate   *time.Time      `json:"saleEndDate"`
}

// validateSale turns a sale request into the fields stored on an item or
// restaurant.
func validateSale(in saleInput, now time.Time) (models.SaleFields, error) {
	switch in.SaleType {
	case models.SaleFixed, models.SalePercentage:
	default:
		return models.SaleFields{}, apperr.BadRequest("saleType must be fixed or percentage")
	}
	if in.SaleAmount <= 0 {
		return models.SaleFields{}, apperr.BadRequest("saleAmount must be positive")
	}
	if in.SaleType == models.SalePercentage && in.SaleAmount > 100 {
		return models.SaleFields{}, apperr.BadRequest("Percentage sale cannot exceed 100")
	}
	if in.SaleStartDate != nil && in.SaleEndDate != nil && !in.SaleEndDate.After(*in.SaleStartDate) {
		return models.SaleFields{}, apperr.BadRequest("saleEndDate must be after saleStartDate")
	}
	if in.SaleEndDate != nil && !in.SaleEndDate.After(now) {
		return models.SaleFields{}, apperr.BadRequest("saleEndDate is in the past")
	}

	return models.SaleFields{
		OnSale:        true,
		SaleType:      in.SaleType,
		SaleAmount:    in.SaleAmount,
		SaleStartDate: in.SaleStartDate,
		SaleEndDate:   in.SaleEndDate,
	}, nil
}
