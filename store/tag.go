package store

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#6366f1"

type Tag struct {
	ID          string
	Title       string
	Slug        string
	Description string
	IsPublished bool
	Color       string
	CreatedTs   int64
	UpdatedTs   int64
}

type FindTag struct {
	ID          *string
	Slug        *string
	IsPublished *bool
}

type UpdateTag struct {
	ID          string
	Title       *string
	Slug        *string
	Description *string
	IsPublished *bool
	Color       *string
	UpdatedTs   *int64
}

type DeleteTag struct {
	ID string
}
