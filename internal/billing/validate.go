package billing

import (
	"fmt"
	"strings"
)

// MaxQtyPerLine is the most of a single item one order may carry.
const MaxQtyPerLine = 20

func ValidateQuantity(qty int) error {
	if qty < 0 || qty > MaxQtyPerLine {
		return fmt.Errorf("%w: qty %d out of range [0,%d]", ErrInvalidInput, qty, MaxQtyPerLine)
	}
	return nil
}

func ValidateLines(lines []SelectedLine) error {
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if err := ValidateQuantity(l.Qty); err != nil {
			return err
		}
		if seen[l.ItemID] {
			return fmt.Errorf("%w: item %d listed twice", ErrInvalidInput, l.ItemID)
		}
		seen[l.ItemID] = true
	}
	return nil
}

func validatePct(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s %.2f out of range [0,100]", ErrInvalidInput, name, v)
	}
	return nil
}

func ValidateAdjustments(discountPct, tipPct float64) error {
	if err := validatePct("discount", discountPct); err != nil {
		return err
	}
	return validatePct("tip", tipPct)
}

func ValidateMenuItem(it MenuItem) error {
	switch {
	case strings.TrimSpace(it.Name) == "":
		return fmt.Errorf("%w: item name cannot be empty", ErrInvalidInput)
	case strings.TrimSpace(it.Category) == "":
		return fmt.Errorf("%w: category cannot be empty", ErrInvalidInput)
	case it.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	return validatePct("gst", it.GSTRate)
}
