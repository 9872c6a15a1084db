package catalog

import (
	"errors"
	"math"
	"sort"
)

// ErrCourseNotFound is returned by Resolve for an unknown course id.
var ErrCourseNotFound = errors.New("course not found")

// Course is a static catalog entry. Course metadata is configuration, not
// store data: prices and descriptions ship with the binary and change only
// through a deploy.
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"` // BDT, whole units
	Instructor  string `json:"instructor"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

var courses = map[string]Course{
	"creative-design": {
		ID:          "creative-design",
		Name:        "Creative Design using Phone",
		Price:       399,
		Instructor:  "Moinur Rahman Sihan and Moshud Muktadir",
		Duration:    "6 weeks",
		Description: "Master Canva, Pixellab, Picsart & PSCC to create stunning graphics, logos, and social media content.",
	},
	"video-editing": {
		ID:          "video-editing",
		Name:        "Advanced Video Editing",
		Price:       499,
		Instructor:  "Mohammad Raihan",
		Duration:    "8 weeks",
		Description: "Everything from basic cuts to advanced storytelling, edited entirely on a phone.",
	},
	"web-development": {
		ID:          "web-development",
		Name:        "Web Development with AI",
		Price:       699,
		Instructor:  "Moshud Muktadir",
		Duration:    "8 weeks",
		Description: "Build professional websites using AI-powered tools and mobile development environments.",
	},
}

// Resolve looks up a course by its slug. Pure and side-effect free; calling
// it twice with the same id always returns identical data.
func Resolve(courseID string) (Course, error) {
	c, ok := courses[courseID]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

// List returns all catalog entries sorted by id.
func List() []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DiscountedPrice computes round(price * (1 - percent/100)) with half-up
// rounding. The same function is used at submission time and by the admin
// console so displayed and audited prices always match.
func DiscountedPrice(price, discountPercent int) int {
	if discountPercent <= 0 {
		return price
	}
	if discountPercent >= 100 {
		return 0
	}
	return int(math.Round(float64(price) * (1 - float64(discountPercent)/100)))
}
