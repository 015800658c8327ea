package models

type Course struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Enrolled int    `db:"enrolled" json:"enrolled"`
}

// CourseQuery is a normalized listing request.
type CourseQuery struct {
	Limit  int
	Search string
}

// CourseList is the envelope returned by GET /api/courses.
type CourseList struct {
	Courses []Course `json:"courses"`
}

// SeedCourseNames is the fixed catalog inserted by the -seed command.
var SeedCourseNames = []string{
	"Java",
	"JavaScript",
	"Python",
	"C++",
	"C",
	"Go",
	"Ruby",
	"PHP",
	"Kotlin",
	"TypeScript",
}
