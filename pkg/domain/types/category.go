package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Category identifies the triage bucket a message belongs to. Categories 1-5
// form the Work group (items that enter scoring and scheduling), categories
// 6-11 form the Other group (items parked outside the work pipeline).
type Category int

const (
	// CategoryNone means the message has not been classified yet.
	CategoryNone Category = 0

	// Work group (1-5)
	CategoryBlocking       Category = 1
	CategoryActionRequired Category = 2
	CategoryWaitingOn      Category = 3
	CategoryTimeSensitive  Category = 4
	CategoryInformational  Category = 5

	// Other group (6-11)
	CategoryMarketing    Category = 6
	CategoryNotification Category = 7
	CategoryCalendar     Category = 8
	CategoryFYI          Category = 9
	CategoryLowPriority  Category = 10
	CategoryTravel       Category = 11
)

var categoryNames = map[Category]string{
	CategoryBlocking:       "blocking",
	CategoryActionRequired: "action_required",
	CategoryWaitingOn:      "waiting_on",
	CategoryTimeSensitive:  "time_sensitive",
	CategoryInformational:  "informational",
	CategoryMarketing:      "marketing",
	CategoryNotification:   "notification",
	CategoryCalendar:       "calendar",
	CategoryFYI:            "fyi",
	CategoryLowPriority:    "low_priority",
	CategoryTravel:         "travel",
}

var categoryByName = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for c, n := range categoryNames {
		m[n] = c
	}
	return m
}()

// AllCategories returns all valid categories in numeric order.
func AllCategories() []Category {
	return []Category{
		CategoryBlocking,
		CategoryActionRequired,
		CategoryWaitingOn,
		CategoryTimeSensitive,
		CategoryInformational,
		CategoryMarketing,
		CategoryNotification,
		CategoryCalendar,
		CategoryFYI,
		CategoryLowPriority,
		CategoryTravel,
	}
}

// WorkCategories returns the categories that enter scoring and scheduling.
func WorkCategories() []Category {
	return []Category{
		CategoryBlocking,
		CategoryActionRequired,
		CategoryWaitingOn,
		CategoryTimeSensitive,
		CategoryInformational,
	}
}

// IsValid checks if the category is a defined enum member.
func (c Category) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

// IsWork reports whether the category belongs to the Work group (1-5).
func (c Category) IsWork() bool {
	return c >= CategoryBlocking && c <= CategoryInformational
}

// IsOther reports whether the category belongs to the Other group (6-11).
func (c Category) IsOther() bool {
	return c >= CategoryMarketing && c <= CategoryTravel
}

// String returns the string representation of the category.
func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryByName[s]
	if !ok {
		return CategoryNone, goerr.New("invalid category", goerr.V("category", s))
	}
	return c, nil
}
