package grading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, APIKey: "test-key", Model: "test-model"})
}

func completionReply(text string) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]string{{"text": text}},
	})
	return string(payload)
}

func TestGradeParsesPlainVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if !strings.Contains(req.Prompt, "Question:") {
			t.Errorf("prompt missing question section: %q", req.Prompt)
		}
		w.Write([]byte(completionReply(`{"correct": true, "explanation": "spot on"}`)))
	}))
	defer server.Close()

	verdict, err := newTestClient(server.URL).Grade(context.Background(), BuildPrompt("q", "a"))
	if err != nil {
		t.Fatalf("Grade failed: %v", err)
	}
	if !verdict.Correct || verdict.Explanation != "spot on" {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestGradeStripsFencedVerdict(t *testing.T) {
	reply := "```json\n{\"correct\": false, \"explanation\": \"missing edge case\"}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionReply(reply)))
	}))
	defer server.Close()

	verdict, err := newTestClient(server.URL).Grade(context.Background(), "p")
	if err != nil {
		t.Fatalf("Grade failed: %v", err)
	}
	if verdict.Correct || verdict.Explanation != "missing edge case" {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestGradeErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "outer decode failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
		},
		{
			name: "inner decode failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(completionReply("I think it's correct!")))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if _, err := newTestClient(server.URL).Grade(context.Background(), "p"); err == nil {
				t.Error("Grade succeeded, want error")
			}
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		if _, err := newTestClient(server.URL).Grade(context.Background(), "p"); err == nil {
			t.Error("Grade succeeded against closed server, want error")
		}
	})
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  {\"a\":1}  ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
