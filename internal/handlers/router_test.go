package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/memoria-app/apiserver/internal/services"
	"github.com/memoria-app/apiserver/internal/store/storetest"
	"github.com/memoria-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	router *chi.Mux
	users  *storetest.MemUserRepo
	posts  *storetest.MemPostRepo
	auth   *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &storetest.MemUserRepo{}
	posts := &storetest.MemPostRepo{}
	categories := &storetest.MemCategoryRepo{Categories: []types.Category{
		{Category: "nature", Image: "https://img.example/nature.png"},
	}}

	userService := services.NewUserService(users)
	postService := services.NewPostService(posts, true)
	categoryService := services.NewCategoryService(categories)
	auth := NewAuthHandler(userService, testSecret)

	router := chi.NewRouter()
	router.Route("/user", func(r chi.Router) {
		UserRouter(r, userService, auth)
	})
	router.Route("/posts", func(r chi.Router) {
		PostRouter(r, postService, categoryService, auth)
	})

	return &testEnv{router: router, users: users, posts: posts, auth: auth}
}

// request performs an in-memory request. A non-nil identity is attached as a
// freshly signed credential cookie so the full decode path is exercised.
func (e *testEnv) request(t *testing.T, method, target string, body any, identity *types.Identity) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if identity != nil {
		token, err := issueToken(identity.UserID, identity.Username, []byte(testSecret), e.auth.tokenTTL)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: credentialCookie, Value: token})
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&value))
	return value
}
