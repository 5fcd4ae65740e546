package store

type ContentCategory string

const (
	ContentCategoryTheory ContentCategory = "theory"
	ContentCategoryLab    ContentCategory = "lab"
)

type ContentType string

const (
	ContentTypeSlides ContentType = "slides"
	ContentTypePDF    ContentType = "pdf"
	ContentTypeCode   ContentType = "code"
	ContentTypeNotes  ContentType = "notes"
)

// Content is one course material item managed through the CMS endpoints.
type Content struct {
	ID          string
	Title       string
	Description string
	Category    ContentCategory
	Topic       string
	Week        int
	Tags        []string
	ContentType ContentType
	FilePath    string
	FileName    string
	CreatedTs   int64
	UpdatedTs   int64
}

type FindContent struct {
	ID       *string
	Category *ContentCategory
}

type UpdateContent struct {
	ID          string
	Title       *string
	Description *string
	Category    *ContentCategory
	Topic       *string
	Week        *int
	Tags        *[]string
	ContentType *ContentType
	FilePath    *string
	FileName    *string
	UpdatedTs   *int64
}

type DeleteContent struct {
	ID string
}
