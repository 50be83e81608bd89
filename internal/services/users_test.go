package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/melody/internal/models"
)

func TestUserAPI(t *testing.T) {
	t.Run("GetUser", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/api/user/42" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Write([]byte(`{"code":1,"data":{"id":42,"username":"alice"}}`))
		}))
		defer server.Close()

		api := NewUserAPI(newTestClient(server.URL, "42"))
		result, err := api.GetUser(context.Background(), "42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Data == nil || result.Data.Username != "alice" {
			t.Errorf("unexpected user %+v", result.Data)
		}
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			wantNil bool
			wantOK  bool
			wantErr bool
		}{
			{name: "Success", body: `{"status":1,"msg":"ok"}`, wantOK: true},
			{name: "Rejected", body: `{"status":0}`},
			{name: "Empty Body", body: ``, wantNil: true},
			{name: "Envelope Failure", body: `{"code":0,"msg":"旧密码错误"}`, wantErr: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Method != http.MethodPut || r.URL.Path != "/api/user/password" {
						t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
					}
					q := r.URL.Query()
					if q.Get("oldPassword") != "old123" || q.Get("newPassword") != "new123" {
						t.Errorf("unexpected query %v", q)
					}
					var snap models.PasswordSnapshot
					if err := json.NewDecoder(r.Body).Decode(&snap); err != nil || snap.ID != 42 {
						t.Errorf("unexpected snapshot %+v (%v)", snap, err)
					}
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				api := NewUserAPI(newTestClient(server.URL, "42"))
				status, err := api.UpdatePassword(context.Background(),
					models.PasswordSnapshot{ID: 42, Username: "alice"},
					models.PasswordChange{OldPassword: "old123", NewPassword: "new123"})

				if tt.wantErr {
					if err == nil {
						t.Fatal("expected error")
					}
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if tt.wantNil {
					if status != nil {
						t.Errorf("expected nil status, got %+v", status)
					}
					return
				}
				if status == nil || status.OK() != tt.wantOK {
					t.Errorf("unexpected status %+v", status)
				}
			})
		}
	})

	t.Run("UploadAvatar", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/user/42/avatar" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				t.Errorf("expected multipart body, got %s", r.Header.Get("Content-Type"))
			}
			w.Write([]byte(`{"code":1,"data":{"avatarUrl":"/api/avatars/42.png"}}`))
		}))
		defer server.Close()

		api := NewUserAPI(newTestClient(server.URL, "42"))
		result, err := api.UploadAvatar(context.Background(), "42", "me.png", strings.NewReader("img"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Data.AvatarURL != "/api/avatars/42.png" {
			t.Errorf("unexpected avatar %q", result.Data.AvatarURL)
		}
	})

	t.Run("DeleteUser", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/user" || r.URL.Query().Get("ids") != "42" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL)
			}
			w.Write([]byte(`{"code":1}`))
		}))
		defer server.Close()

		api := NewUserAPI(newTestClient(server.URL, "42"))
		result, err := api.DeleteUser(context.Background(), 42)
		if err != nil || result.Failed() {
			t.Errorf("expected success, got %v", err)
		}
	})

	t.Run("CreateUser", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var reg models.Registration
			if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
				t.Fatalf("failed to decode registration: %v", err)
			}
			if r.Method != http.MethodPost || reg.Username != "bob" || reg.Status != 1 {
				t.Errorf("unexpected registration %+v", reg)
			}
			w.Write([]byte(`{"code":1}`))
		}))
		defer server.Close()

		api := NewUserAPI(newTestClient(server.URL, ""))
		if _, err := api.CreateUser(context.Background(), models.Registration{Username: "bob", Status: 1}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestPlaylistAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/playlists":
			w.Write([]byte(`{"code":1,"data":[{"id":1,"name":"Focus","cover":"x.png"}]}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/playlists/1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	api := NewPlaylistAPI(newTestClient(server.URL, "42"))

	t.Run("List", func(t *testing.T) {
		result, err := api.List(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Data) != 1 || result.Data[0].Field("cover") != "x.png" {
			t.Errorf("unexpected playlists %+v", result.Data)
		}
	})

	t.Run("Delete Without Payload", func(t *testing.T) {
		result, err := api.Delete(context.Background(), 1)
		if err != nil || result.Failed() {
			t.Errorf("expected success, got %v", err)
		}
	})
}
