package store

type Category struct {
	ID          string
	Title       string
	Slug        string
	Description string
	IsPublished bool
	ParentID    *string
	Position    int
	CreatedTs   int64
	UpdatedTs   int64
}

type FindCategory struct {
	ID          *string
	Slug        *string
	IsPublished *bool
	ParentID    *string
}

type UpdateCategory struct {
	ID          string
	Title       *string
	Slug        *string
	Description *string
	IsPublished *bool
	ParentID    *string
	Position    *int
	UpdatedTs   *int64
}

type DeleteCategory struct {
	ID string
}
