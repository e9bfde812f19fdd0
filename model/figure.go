package model

// Figure is an illustration extracted from a page. Caption and Alt are
// empty until caption binding runs; a figure with no caption candidate
// within range keeps an empty caption, which is not an error.
type Figure struct {
	ImagePath string
	Caption   string
	Alt       string
	Page      int // 1-based
	BBox      BBox
}
