package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	httpserver "github.com/fyrsmithlabs/impactd/internal/http"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/registry"
)

// ExampleServer demonstrates posting a chat message to the webhook.
func ExampleServer() {
	svc := registry.New(nil, nil)
	if err := svc.Load(context.Background()); err != nil {
		panic(err)
	}

	server, err := httpserver.NewServer(svc, logging.NewNop(), &httpserver.Config{
		Host: "127.0.0.1",
		Port: 8080,
	})
	if err != nil {
		panic(err)
	}

	body := `{"chat_id": "42", "text": "/add Victory Park, Litter on the paths, A. Ivanov, 2025-05-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	var resp httpserver.MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		panic(err)
	}
	fmt.Println(rec.Code, resp.Reply)
	// Output: 200 ✅ Project №1 registered!
}
