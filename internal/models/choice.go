package models

import "strings"

// OtherOption is the sentinel option that asks the user for a free-text value
const OtherOption = "OUTRO"

// ChoiceDelimiter joins the options of a multi-select field into one column
const ChoiceDelimiter = ", "

// Choice is one selected value of a categorical field: either a known catalog
// option or a free-text value entered because OUTRO was selected.
// The zero value is not a valid choice.
type Choice struct {
	value string
	other bool
}

// Known builds a choice for a catalog option
func Known(option string) Choice {
	return Choice{value: option}
}

// Other builds a choice carrying the free text typed for OUTRO
func Other(text string) Choice {
	return Choice{value: text, other: true}
}

// IsOther reports whether the choice is the OUTRO variant
func (c Choice) IsOther() bool {
	return c.other
}

// Option returns the value stored in the category column (OUTRO for the Other variant)
func (c Choice) Option() string {
	if c.other {
		return OtherOption
	}
	return c.value
}

// Display returns the value shown to users and written to exports
func (c Choice) Display() string {
	return c.value
}

// Category is the ordered list of choices of one categorical field.
// Single-select fields hold exactly one choice.
type Category []Choice

// Display joins the display values of all choices
func (c Category) Display() string {
	parts := make([]string, len(c))
	for i, ch := range c {
		parts[i] = ch.Display()
	}
	return strings.Join(parts, ChoiceDelimiter)
}

// Column joins the stored options of all choices
func (c Category) Column() string {
	return strings.Join(c.Options(), ChoiceDelimiter)
}

// Options returns the raw options in selection order
func (c Category) Options() []string {
	opts := make([]string, len(c))
	for i, ch := range c {
		opts[i] = ch.Option()
	}
	return opts
}

// OtherColumn returns the free text of the OUTRO choice, or nil when there is none
func (c Category) OtherColumn() *string {
	for _, ch := range c {
		if ch.other {
			text := ch.value
			return &text
		}
	}
	return nil
}

// ParseCategory rebuilds a category from its stored columns.
// selections, when present, is the lossless option list of a multi-select field;
// otherwise the whole column is taken as a single option.
func ParseCategory(column string, other *string, selections []string) Category {
	options := selections
	if len(options) == 0 {
		if column == "" {
			return nil
		}
		options = []string{column}
	}

	cat := make(Category, 0, len(options))
	for _, opt := range options {
		if opt == OtherOption {
			text := ""
			if other != nil {
				text = *other
			}
			cat = append(cat, Other(text))
			continue
		}
		cat = append(cat, Known(opt))
	}
	return cat
}
