package project

import "strings"

// Field identifies one editable text field of a Project.
type Field string

const (
	FieldName      Field = "name"
	FieldProblem   Field = "problem"
	FieldInitiator Field = "initiator"
	FieldDeadline  Field = "deadline"
	FieldStatus    Field = "status"
	FieldExecutor  Field = "executor"
)

// fieldAliases maps the lowercase names accepted by /update to fields.
// Status is deliberately absent: it changes through /status only.
var fieldAliases = map[string]Field{
	"name":        FieldName,
	"название":    FieldName,
	"problem":     FieldProblem,
	"проблема":    FieldProblem,
	"initiator":   FieldInitiator,
	"инициатор":   FieldInitiator,
	"deadline":    FieldDeadline,
	"сроки":       FieldDeadline,
	"executor":    FieldExecutor,
	"исполнитель": FieldExecutor,
}

// LookupField resolves an /update field name, case-insensitively.
func LookupField(name string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// UpdatableFields returns the fields /update accepts, in display order.
func UpdatableFields() []Field {
	return []Field{FieldName, FieldProblem, FieldInitiator, FieldDeadline, FieldExecutor}
}
