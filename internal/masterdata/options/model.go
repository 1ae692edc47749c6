package options

// Category groups the values of one dropdown.
type Category struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Value is a single dropdown entry. Committee values carry the unit they
// belong to.
type Value struct {
	ID            int64  `json:"id"`
	CategoryID    int64  `json:"category_id"`
	Value         string `json:"value"`
	IsActive      bool   `json:"is_active"`
	SortOrder     int    `json:"sort_order"`
	ServiceUnitID *int64 `json:"service_unit_id"`
}

// ValueInput is the writable part of a value. A nil IsActive means true on
// create and unchanged on update.
type ValueInput struct {
	Value         string `json:"value" validate:"required,max=120"`
	SortOrder     int    `json:"sort_order"`
	IsActive      *bool  `json:"is_active"`
	ServiceUnitID *int64 `json:"service_unit_id"`
}
