//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/memoria-app/apiserver/config"
	"github.com/memoria-app/apiserver/internal/server"
	"github.com/memoria-app/apiserver/types"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForMongo(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mongo not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestBlogLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()
	aliceName := fmt.Sprintf("alice_%d", suffix)
	bobName := fmt.Sprintf("bob_%d", suffix)

	alice, err := signup(t, baseURL, aliceName)
	if err != nil {
		t.Fatalf("signup alice: %v", err)
	}
	bob, err := signup(t, baseURL, bobName)
	if err != nil {
		t.Fatalf("signup bob: %v", err)
	}

	signedIn, err := signin(t, baseURL, aliceName)
	if err != nil {
		t.Fatalf("signin alice: %v", err)
	}
	if signedIn.User.Username != aliceName {
		t.Fatalf("unexpected signin user: %q", signedIn.User.Username)
	}

	post, err := createPost(t, baseURL, alice.Token, "Morning hike", "Up before sunrise.")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Username != aliceName {
		t.Fatalf("unexpected post author: %q", post.Username)
	}

	liked, err := likePost(t, baseURL, bob.Token, post.ID)
	if err != nil {
		t.Fatalf("like post: %v", err)
	}
	if len(liked.Likes) != 1 || liked.Likes[0] != bobName {
		t.Fatalf("unexpected likes after like: %v", liked.Likes)
	}

	unliked, err := likePost(t, baseURL, bob.Token, post.ID)
	if err != nil {
		t.Fatalf("unlike post: %v", err)
	}
	if len(unliked.Likes) != 0 {
		t.Fatalf("unexpected likes after unlike: %v", unliked.Likes)
	}

	commented, err := commentPost(t, baseURL, post.ID, map[string]any{
		"username": bobName,
		"text":     "looks chilly",
	})
	if err != nil {
		t.Fatalf("comment post: %v", err)
	}
	if len(commented.Comments) != 1 {
		t.Fatalf("unexpected comments: %v", commented.Comments)
	}

	followed, err := follow(t, baseURL, bob.Token, alice.User.ID.Hex())
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if len(followed.Followers) != 1 || followed.Followers[0] != bobName {
		t.Fatalf("unexpected followers: %v", followed.Followers)
	}

	suggestions, err := getSuggestions(t, baseURL, bobName)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	for _, user := range suggestions {
		if user.Username == aliceName {
			t.Fatalf("followed user %q still suggested", aliceName)
		}
	}

	results, err := searchPosts(t, baseURL, "morning")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	found := false
	for _, p := range results {
		if p.ID == post.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("created post missing from search results")
	}

	if err := deletePost(t, baseURL, bob.Token, post.ID, http.StatusForbidden); err != nil {
		t.Fatalf("delete by non-owner: %v", err)
	}
	if err := deletePost(t, baseURL, alice.Token, post.ID, http.StatusOK); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
}

type authResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type postResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Likes    []string        `json:"likes"`
	Comments []types.Comment `json:"comments"`
}

func signup(t *testing.T, baseURL, username string) (authResponse, error) {
	t.Helper()

	payload := map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "testpass123!",
	}
	var parsed authResponse
	if err := doJSON(t, http.MethodPost, baseURL+"/user/signup", "", payload, http.StatusCreated, &parsed); err != nil {
		return authResponse{}, err
	}
	if parsed.Token == "" {
		return authResponse{}, fmt.Errorf("missing token in signup response")
	}
	return parsed, nil
}

func signin(t *testing.T, baseURL, username string) (authResponse, error) {
	t.Helper()

	payload := map[string]string{
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "testpass123!",
	}
	var parsed authResponse
	if err := doJSON(t, http.MethodPost, baseURL+"/user/signin", "", payload, http.StatusOK, &parsed); err != nil {
		return authResponse{}, err
	}
	return parsed, nil
}

func createPost(t *testing.T, baseURL, token, title, message string) (postResponse, error) {
	t.Helper()

	payload := map[string]string{
		"title":   title,
		"message": message,
	}
	var parsed postResponse
	if err := doJSON(t, http.MethodPost, baseURL+"/posts/create", token, payload, http.StatusCreated, &parsed); err != nil {
		return postResponse{}, err
	}
	return parsed, nil
}

func likePost(t *testing.T, baseURL, token, id string) (postResponse, error) {
	t.Helper()

	var parsed postResponse
	err := doJSON(t, http.MethodPatch, baseURL+"/posts/"+id+"/likePost", token, nil, http.StatusOK, &parsed)
	return parsed, err
}

func commentPost(t *testing.T, baseURL, id string, comment map[string]any) (postResponse, error) {
	t.Helper()

	var parsed postResponse
	err := doJSON(t, http.MethodPost, baseURL+"/posts/"+id+"/commentPost", "", comment, http.StatusOK, &parsed)
	return parsed, err
}

func follow(t *testing.T, baseURL, token, targetID string) (types.User, error) {
	t.Helper()

	payload := map[string]string{"followed_user_id": targetID}
	var parsed types.User
	err := doJSON(t, http.MethodPatch, baseURL+"/user/follow", token, payload, http.StatusOK, &parsed)
	return parsed, err
}

func getSuggestions(t *testing.T, baseURL, username string) ([]types.User, error) {
	t.Helper()

	var parsed []types.User
	err := doJSON(t, http.MethodGet, baseURL+"/user/"+username, "", nil, http.StatusOK, &parsed)
	return parsed, err
}

func searchPosts(t *testing.T, baseURL, term string) ([]postResponse, error) {
	t.Helper()

	var parsed []postResponse
	err := doJSON(t, http.MethodGet, baseURL+"/posts/"+term+"/search", "", nil, http.StatusOK, &parsed)
	return parsed, err
}

func deletePost(t *testing.T, baseURL, token, id string, wantStatus int) error {
	t.Helper()

	return doJSON(t, http.MethodDelete, baseURL+"/posts/"+id+"/deletePost", token, nil, wantStatus, nil)
}

// doJSON sends the request and decodes the response. The credential travels
// as the "token" cookie; it is attached by hand because the server marks it
// Secure and a cookie jar would drop it over plain http.
func doJSON(t *testing.T, method, url, token string, payload any, wantStatus int, out any) error {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func waitForMongo(ctx context.Context) error {
	cfg := config.LoadConfig()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("mongo ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	_ = os.Setenv("MONGO_DB", "memoria_e2e")
	_ = os.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	_ = os.Setenv("MINIO_SECRET_KEY", "minioadmin")
	_ = os.Setenv("MINIO_BUCKET", "memoria-images")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
