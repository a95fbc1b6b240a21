package http

import (
	"github.com/fyrsmithlabs/impactd/internal/project"
	"github.com/fyrsmithlabs/impactd/internal/registry"
)

// MessageRequest is the request body for POST /api/v1/messages.
type MessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// MessageResponse is the response body for POST /api/v1/messages.
type MessageResponse struct {
	ChatID    string           `json:"chat_id"`
	Reply     string           `json:"reply"`
	Outcome   registry.Outcome `json:"outcome"`
	ProjectID int              `json:"project_id,omitempty"`
}

// ProjectResponse is one project in the dashboard feed.
type ProjectResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Problem   string `json:"problem"`
	Initiator string `json:"initiator"`
	Deadline  string `json:"deadline"`
	Status    string `json:"status"`
	Executor  string `json:"executor"`
}

// ProjectsResponse is the response body for GET /api/v1/projects.
type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
}

func newProjectResponse(e project.Entry) ProjectResponse {
	return ProjectResponse{
		ID:        e.ID,
		Name:      e.Project.Name,
		Problem:   e.Project.Problem,
		Initiator: e.Project.Initiator,
		Deadline:  e.Project.Deadline,
		Status:    e.Project.Status,
		Executor:  e.Project.Executor,
	}
}
