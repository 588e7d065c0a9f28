package models

// Lesson represents a lesson in a course. The ID is assigned by the store
// and only identifies the lesson together with its parent course.
type Lesson struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}
