package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

type userResponse struct {
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

func TestClient_Post(t *testing.T) {
	t.Parallel()

	var gotRequest Request
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"user":{"name":"Sam"}}}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithHTTPClient(server.Client()), WithHTTPHeader(http.Header{"Authorization": {"Bearer token"}}))

	var got userResponse
	err := c.Post(context.Background(), "User", "query User($id: ID!) { user(id: $id) { name } }", map[string]any{"id": "1"}, &got)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	if diff := cmp.Diff("Sam", got.User.Name); diff != "" {
		t.Errorf("data diff(-want +got): %s", diff)
	}

	wantRequest := Request{
		Query:         "query User($id: ID!) { user(id: $id) { name } }",
		OperationName: "User",
		Variables:     map[string]any{"id": "1"},
	}
	if diff := cmp.Diff(wantRequest, gotRequest); diff != "" {
		t.Errorf("request diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff("Bearer token", gotHeader.Get("Authorization")); diff != "" {
		t.Errorf("header diff(-want +got): %s", diff)
	}
}

func TestClient_PostErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:   "GraphQLエラーはエラーとして返す",
			status: http.StatusOK,
			body:   `{"errors":[{"message":"boom"}],"data":null}`,
		},
		{
			name:   "4xxでもGraphQLエラーを優先する",
			status: http.StatusBadRequest,
			body:   `{"errors":[{"message":"bad query"}]}`,
		},
		{
			name:       "GraphQLエラーのない5xxはHTTPErrorを返す",
			status:     http.StatusBadGateway,
			body:       `upstream unavailable`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "不正なJSONはエラー",
			status: http.StatusOK,
			body:   `{"data":`,
		},
		{
			name:   "dataがない場合はエラー",
			status: http.StatusOK,
			body:   `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			var got userResponse
			err := NewClient(server.URL).Post(context.Background(), "User", "{ user { name } }", nil, &got)
			if err == nil {
				t.Fatal("Post must fail")
			}

			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				if diff := cmp.Diff(tt.wantStatus, httpErr.StatusCode); diff != "" {
					t.Errorf("status diff(-want +got): %s", diff)
				}
			} else if tt.wantStatus != 0 {
				t.Errorf("err = %v, want *HTTPError", err)
			}
		})
	}
}
