package models

// Course represents a course in the learning system. The course code is the
// caller-assigned identifier under which the course is stored.
type Course struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

// AddLesson appends a lesson to the course's transient lesson collection.
// The collection is populated at load time and is never persisted with the
// course record itself.
func (c *Course) AddLesson(lesson Lesson) {
	c.Lessons = append(c.Lessons, lesson)
}
