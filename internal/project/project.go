package project

import (
	"errors"
	"strings"
)

// Common errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrDuplicateID      = errors.New("project ID already in use")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrEmptyName        = errors.New("project name cannot be empty")
	ErrEmptyProblem     = errors.New("project problem cannot be empty")
	ErrEmptyInitiator   = errors.New("project initiator cannot be empty")
	ErrEmptyDeadline    = errors.New("project deadline cannot be empty")
)

// Default labels assigned at creation.
const (
	DefaultStatus   = "New"
	DefaultExecutor = "Unassigned"
)

// Project is a tracked social initiative.
type Project struct {
	// Name is the short human-readable title.
	Name string `json:"name"`

	// Problem is the social problem the project addresses.
	Problem string `json:"problem"`

	// Initiator is whoever proposed the project.
	Initiator string `json:"initiator"`

	// Deadline is free text, usually an ISO date.
	Deadline string `json:"deadline"`

	// Status is an open-ended lifecycle label.
	Status string `json:"status"`

	// Executor is the person responsible for delivery.
	Executor string `json:"executor"`
}

// Entry pairs a project with its ID.
type Entry struct {
	ID      int     `json:"id"`
	Project Project `json:"project"`
}

// NewProject creates a project from the four creation fields.
// Surrounding whitespace is trimmed; status and executor take the given
// default labels.
func NewProject(name, problem, initiator, deadline, status, executor string) (Project, error) {
	p := Project{
		Name:      strings.TrimSpace(name),
		Problem:   strings.TrimSpace(problem),
		Initiator: strings.TrimSpace(initiator),
		Deadline:  strings.TrimSpace(deadline),
		Status:    status,
		Executor:  executor,
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Validate checks the fields that are required at creation.
func (p Project) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Problem == "" {
		return ErrEmptyProblem
	}
	if p.Initiator == "" {
		return ErrEmptyInitiator
	}
	if p.Deadline == "" {
		return ErrEmptyDeadline
	}
	return nil
}

// Set overwrites the field identified by f.
func (p *Project) Set(f Field, value string) {
	switch f {
	case FieldName:
		p.Name = value
	case FieldProblem:
		p.Problem = value
	case FieldInitiator:
		p.Initiator = value
	case FieldDeadline:
		p.Deadline = value
	case FieldStatus:
		p.Status = value
	case FieldExecutor:
		p.Executor = value
	}
}

// Get returns the value of the field identified by f.
func (p Project) Get(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldProblem:
		return p.Problem
	case FieldInitiator:
		return p.Initiator
	case FieldDeadline:
		return p.Deadline
	case FieldStatus:
		return p.Status
	case FieldExecutor:
		return p.Executor
	}
	return ""
}
