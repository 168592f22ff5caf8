package enums

import "fmt"

// ApparelSize represents the fixed sizing ladder for units.
type ApparelSize string

const (
	ApparelSizeXS  ApparelSize = "XS"
	ApparelSizeS   ApparelSize = "S"
	ApparelSizeM   ApparelSize = "M"
	ApparelSizeL   ApparelSize = "L"
	ApparelSizeXL  ApparelSize = "XL"
	ApparelSizeXXL ApparelSize = "XXL"
)

var validApparelSizes = []ApparelSize{
	ApparelSizeXS,
	ApparelSizeS,
	ApparelSizeM,
	ApparelSizeL,
	ApparelSizeXL,
	ApparelSizeXXL,
}

// AllApparelSizes returns the ladder in ascending order.
func AllApparelSizes() []ApparelSize {
	out := make([]ApparelSize, len(validApparelSizes))
	copy(out, validApparelSizes)
	return out
}

// String implements fmt.Stringer.
func (s ApparelSize) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApparelSize.
func (s ApparelSize) IsValid() bool {
	for _, candidate := range validApparelSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// Rank returns the position of the size on the ladder, used for stable
// size-then-id ordering of inventory listings. Unknown sizes sort last.
func (s ApparelSize) Rank() int {
	for i, candidate := range validApparelSizes {
		if candidate == s {
			return i
		}
	}
	return len(validApparelSizes)
}

// ParseApparelSize converts raw input into an ApparelSize.
func ParseApparelSize(value string) (ApparelSize, error) {
	for _, candidate := range validApparelSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid apparel size %q", value)
}
