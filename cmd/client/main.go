// cmd/client/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// envelope mirrors the server's response shape.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Stats   json.RawMessage   `json:"stats"`
	Errors  map[string]string `json:"errors"`
	Error   string            `json:"error"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api", "API base URL")
	grpcAddr := flag.String("grpc", "localhost:50051", "gRPC health address")
	flag.Parse()

	fmt.Println("🚀 Project Tracker Test Client")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	checkHealth(ctx, *grpcAddr)

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	runFlow(ctx, c)
}

func checkHealth(ctx context.Context, addr string) {
	fmt.Println("\n🩺 TEST 1: gRPC health")
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("  ✅ %s\n", resp.GetStatus())
}

func runFlow(ctx context.Context, c *client) {
	fmt.Println("\n📝 TEST 2: Register")
	email := fmt.Sprintf("demo-%s@example.com", uuid.NewString()[:8])
	var session struct {
		AccessToken string `json:"access_token"`
	}
	c.mustDo(ctx, http.MethodPost, "/register", map[string]any{
		"name":     "Demo User",
		"email":    email,
		"password": "DemoPass123",
	}, http.StatusCreated, &session)
	c.token = session.AccessToken
	fmt.Printf("  ✅ Registered %s\n", email)

	fmt.Println("\n📁 TEST 3: Projects")
	var project struct {
		ID string `json:"id"`
	}
	c.mustDo(ctx, http.MethodPost, "/projects", map[string]any{
		"name":        "Demo project",
		"description": "Created by the test client",
	}, http.StatusCreated, &project)
	fmt.Printf("  ✅ Created project %s\n", project.ID)

	fmt.Println("\n✅ TEST 4: Tasks")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	var task struct {
		ID string `json:"id"`
	}
	c.mustDo(ctx, http.MethodPost, "/projects/"+project.ID+"/tasks", map[string]any{
		"title":    "First task",
		"due_date": tomorrow,
		"priority": 3,
	}, http.StatusCreated, &task)
	c.mustDo(ctx, http.MethodPost, "/projects/"+project.ID+"/tasks/"+task.ID+"/complete", nil, http.StatusOK, nil)

	env := c.mustDo(ctx, http.MethodGet, "/projects/"+project.ID, nil, http.StatusOK, nil)
	fmt.Printf("  ✅ Stats: %s\n", env.Stats)

	fmt.Println("\n🚫 TEST 5: Validation")
	env = c.mustDo(ctx, http.MethodPut, "/projects/"+project.ID, map[string]any{"name": ""}, http.StatusUnprocessableEntity, nil)
	fmt.Printf("  ✅ Rejected: %v\n", env.Errors)

	fmt.Println("\n🧹 TEST 6: Cleanup")
	c.mustDo(ctx, http.MethodDelete, "/projects/"+project.ID, nil, http.StatusOK, nil)
	c.mustDo(ctx, http.MethodPost, "/logout", nil, http.StatusOK, nil)
	c.token = ""
	c.mustDo(ctx, http.MethodGet, "/user", nil, http.StatusUnauthorized, nil)
	fmt.Println("  ✅ Project deleted and logged out")

	fmt.Println("\n🎉 All checks passed")
}

// mustDo sends a request, checks the status and decodes data into out.
func (c *client) mustDo(ctx context.Context, method, path string, body any, wantStatus int, out any) *envelope {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			log.Fatalf("encode request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: expected status %d, got %d (%s %s)", method, path, wantStatus, resp.StatusCode, env.Message, env.Error)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			log.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return &env
}
