package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	tests := []struct {
		name      string
		projName  string
		problem   string
		initiator string
		deadline  string
		wantErr   error
	}{
		{
			name:      "valid project",
			projName:  "Victory Park",
			problem:   "Litter on the paths",
			initiator: "A. Ivanov",
			deadline:  "2025-05-01",
		},
		{
			name:      "fields are trimmed",
			projName:  "  Victory Park ",
			problem:   " Litter ",
			initiator: " A. Ivanov",
			deadline:  "2025-05-01  ",
		},
		{
			name:      "blank name",
			projName:  "   ",
			problem:   "Litter",
			initiator: "A. Ivanov",
			deadline:  "2025-05-01",
			wantErr:   ErrEmptyName,
		},
		{
			name:      "empty problem",
			projName:  "Park",
			initiator: "A. Ivanov",
			deadline:  "2025-05-01",
			wantErr:   ErrEmptyProblem,
		},
		{
			name:     "empty initiator",
			projName: "Park",
			problem:  "Litter",
			deadline: "2025-05-01",
			wantErr:  ErrEmptyInitiator,
		},
		{
			name:      "empty deadline",
			projName:  "Park",
			problem:   "Litter",
			initiator: "A. Ivanov",
			wantErr:   ErrEmptyDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProject(tt.projName, tt.problem, tt.initiator, tt.deadline, DefaultStatus, DefaultExecutor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.projName), p.Name)
			assert.Equal(t, strings.TrimSpace(tt.problem), p.Problem)
			assert.Equal(t, strings.TrimSpace(tt.initiator), p.Initiator)
			assert.Equal(t, strings.TrimSpace(tt.deadline), p.Deadline)
			assert.Equal(t, DefaultStatus, p.Status)
			assert.Equal(t, DefaultExecutor, p.Executor)
		})
	}
}

func TestProject_SetGet(t *testing.T) {
	var p Project
	for _, f := range []Field{FieldName, FieldProblem, FieldInitiator, FieldDeadline, FieldStatus, FieldExecutor} {
		p.Set(f, "value-"+string(f))
	}

	assert.Equal(t, "value-name", p.Name)
	assert.Equal(t, "value-problem", p.Problem)
	assert.Equal(t, "value-initiator", p.Initiator)
	assert.Equal(t, "value-deadline", p.Deadline)
	assert.Equal(t, "value-status", p.Status)
	assert.Equal(t, "value-executor", p.Executor)
	assert.Equal(t, "value-executor", p.Get(FieldExecutor))
	assert.Empty(t, p.Get(Field("budget")))
}

func TestLookupField(t *testing.T) {
	tests := []struct {
		input string
		want  Field
		ok    bool
	}{
		{"name", FieldName, true},
		{"Название", FieldName, true},
		{"PROBLEM", FieldProblem, true},
		{"проблема", FieldProblem, true},
		{"initiator", FieldInitiator, true},
		{"инициатор", FieldInitiator, true},
		{"Deadline", FieldDeadline, true},
		{"СРОКИ", FieldDeadline, true},
		{" executor ", FieldExecutor, true},
		{"исполнитель", FieldExecutor, true},
		{"status", "", false},
		{"budget", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupField(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
