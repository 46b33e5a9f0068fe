package database

// sort keys accepted by photo search
const (
	SortName       = "name"
	SortNameDesc   = "name_desc"
	SortRating     = "rating"
	SortRatingDesc = "rating_desc"
)

const DefaultSortOrder = SortName

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	switch order {
	case SortName, SortNameDesc, SortRating, SortRatingDesc:
		return true
	default:
		return false
	}
}
