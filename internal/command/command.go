// Package command turns one line of chat text into a typed Command.
//
// Parse never panics and never returns partial commands. Validation
// failures come back as *ParseError, whose Kind tells the caller which
// usage message to show:
//
//	cmd, err := command.Parse("/status 1, In progress")
//	var perr *command.ParseError
//	if errors.As(err, &perr) && perr.Kind == command.KindNotAnInteger { ... }
//
// Text that is not a slash command returns ErrNotCommand and should get no
// reply at all.
package command

import "github.com/fyrsmithlabs/impactd/internal/project"

// Keyword is the slash command that selects a Command type.
type Keyword string

const (
	KeywordStart     Keyword = "/start"
	KeywordAdd       Keyword = "/add"
	KeywordUpdate    Keyword = "/update"
	KeywordDelete    Keyword = "/delete"
	KeywordList      Keyword = "/list"
	KeywordInfo      Keyword = "/info"
	KeywordStatus    Keyword = "/status"
	KeywordAssign    Keyword = "/assign"
	KeywordDashboard Keyword = "/dashboard"
)

// Command is one parsed instruction.
type Command interface {
	Keyword() Keyword
}

// Help lists the available commands.
type Help struct{}

// Add registers a new project.
type Add struct {
	Name      string
	Problem   string
	Initiator string
	Deadline  string
}

// Update overwrites one field of a project.
type Update struct {
	ID    int
	Field project.Field
	Value string
}

// Delete removes a project.
type Delete struct {
	ID int
}

// List shows every project.
type List struct{}

// Info shows one project card.
type Info struct {
	ID int
}

// SetStatus changes a project's lifecycle label.
type SetStatus struct {
	ID     int
	Status string
}

// Assign sets a project's executor.
type Assign struct {
	ID       int
	Executor string
}

// Dashboard asks for the analytics dashboard link.
type Dashboard struct{}

func (Help) Keyword() Keyword      { return KeywordStart }
func (Add) Keyword() Keyword       { return KeywordAdd }
func (Update) Keyword() Keyword    { return KeywordUpdate }
func (Delete) Keyword() Keyword    { return KeywordDelete }
func (List) Keyword() Keyword      { return KeywordList }
func (Info) Keyword() Keyword      { return KeywordInfo }
func (SetStatus) Keyword() Keyword { return KeywordStatus }
func (Assign) Keyword() Keyword    { return KeywordAssign }
func (Dashboard) Keyword() Keyword { return KeywordDashboard }

// Mutates reports whether executing cmd changes the record store.
func Mutates(cmd Command) bool {
	switch cmd.(type) {
	case Add, Update, Delete, SetStatus, Assign:
		return true
	}
	return false
}
