package checklist

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homedash/homedash/pkg/datetime"
)

const (
	ListTodos  = "todos"
	ListChores = "chores"
)

var ErrItemNotFound = errors.New("item not found")
var ErrInvalidList = errors.New("invalid list name")

var listName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// InvalidItemError carries a user-facing validation message.
type InvalidItemError struct {
	Message string
}

func (e *InvalidItemError) Error() string {
	return e.Message
}

// Item is one entry of a persisted list. Todos carry an instant in Due,
// chores a calendar date in DueDate; both are optional.
type Item struct {
	Id       uuid.UUID
	List     string
	Title    string
	Due      *time.Time
	DueDate  string
	Done     bool
	Position int
}

func ValidList(name string) error {
	if !listName.MatchString(name) {
		return ErrInvalidList
	}
	return nil
}

func (i Item) validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return &InvalidItemError{Message: "Title is required"}
	}
	if i.DueDate != "" && !datetime.IsDateOnly(i.DueDate) {
		return &InvalidItemError{Message: "Invalid due date"}
	}
	if i.Due != nil && i.DueDate != "" {
		return &InvalidItemError{Message: "Only one of due and dueDate can be set"}
	}
	return nil
}
