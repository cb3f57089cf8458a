// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"livepoll/auth"
	"livepoll/middleware"
	"livepoll/models"
	"livepoll/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid registration",
			requestBody: models.RegisterRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "password123",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing username",
			requestBody: models.RegisterRequest{
				Email:    "bob@example.com",
				Password: "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			requestBody: models.RegisterRequest{
				Username: "bob",
				Email:    "not-an-email",
				Password: "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			requestBody: models.RegisterRequest{
				Username: "bob",
				Email:    "bob@example.com",
				Password: "12345",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			requestBody: models.RegisterRequest{
				Username: "alice2",
				Email:    "alice@example.com",
				Password: "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			requestBody: models.RegisterRequest{
				Username: "alice",
				Email:    "alice2@example.com",
				Password: "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/register", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.AuthResponse
				testutil.AssertJSON(t, w, &resp)

				if resp.Token == "" {
					t.Error("Expected non-empty token")
				}
				if resp.User.Role != models.RoleUser {
					t.Errorf("Expected role user, got %s", resp.User.Role)
				}

				// Token must parse against the configured secret
				claims, err := auth.ParseToken(resp.Token, cfg.JWTSecret)
				if err != nil {
					t.Fatalf("Issued token does not parse: %v", err)
				}
				if claims.Username != "alice" {
					t.Errorf("Token username = %s, want alice", claims.Username)
				}
			}
		})
	}
}

func TestRegister_IgnoresClientRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	// A raw payload smuggling a role field must not grant privileges
	body := `{"username":"mallory","email":"mallory@example.com","password":"password123","role":"admin"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Register(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.User.Role != models.RoleUser {
		t.Errorf("Expected role user, got %s", resp.User.Role)
	}

	var storedRole string
	if err := db.QueryRow(`SELECT role FROM users WHERE username = 'mallory'`).Scan(&storedRole); err != nil {
		t.Fatal(err)
	}
	if storedRole != models.RoleUser {
		t.Errorf("Stored role = %s, want user", storedRole)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	tests := []struct {
		name           string
		requestBody    models.LoginRequest
		expectedStatus int
	}{
		{
			name:           "valid login",
			requestBody:    models.LoginRequest{Email: user.Email, Password: testutil.TestPassword},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			requestBody:    models.LoginRequest{Email: user.Email, Password: "wrong-password"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown email",
			requestBody:    models.LoginRequest{Email: "ghost@example.com", Password: testutil.TestPassword},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing fields",
			requestBody:    models.LoginRequest{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Token == "" {
					t.Error("Expected non-empty token")
				}
				if resp.User.ID != user.ID {
					t.Errorf("User ID = %s, want %s", resp.User.ID, user.ID)
				}
			}
		})
	}
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	responses := make([]models.ErrorResponse, 0, 2)
	for _, body := range []models.LoginRequest{
		{Email: user.Email, Password: "wrong-password"},
		{Email: "ghost@example.com", Password: "whatever123"},
	} {
		req := testutil.MakeRequest("POST", "/auth/login", body, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		responses = append(responses, resp)
	}

	// Identical bodies keep the two failure causes indistinguishable
	if responses[0].Message != responses[1].Message {
		t.Errorf("Error messages differ: %q vs %q", responses[0].Message, responses[1].Message)
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	if _, err := db.Exec(`UPDATE users SET is_active = FALSE WHERE id = $1`, user.ID); err != nil {
		t.Fatal(err)
	}

	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Email:    user.Email,
		Password: testutil.TestPassword,
	}, nil)
	w := httptest.NewRecorder()

	handler.Login(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	authHandler := NewAuthHandler(db, cfg)

	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	token := testutil.AuthToken(t, cfg, user)

	req := testutil.MakeRequest("GET", "/auth/profile", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	w := httptest.NewRecorder()

	// Route through the auth middleware as the router does
	protected := middleware.RequireAuth(cfg.JWTSecret, authHandler.Profile)
	protected(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	// The raw body must never contain the password hash
	if strings.Contains(w.Body.String(), "password") {
		t.Error("Profile response leaked password material")
	}

	var got models.User
	testutil.AssertJSON(t, w, &got)
	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}
	if got.Email != user.Email {
		t.Errorf("Email = %s, want %s", got.Email, user.Email)
	}
}

func TestUpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewAuthHandler(db, cfg)

	admin := testutil.CreateTestUser(t, db, "root", models.RoleAdmin)
	user := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	adminToken := testutil.AuthToken(t, cfg, admin)

	protected := middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, handler.UpdateRole)

	t.Run("admin promotes user", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/auth/users/"+user.ID+"/role",
			models.UpdateRoleRequest{Role: models.RoleAdmin},
			map[string]string{"Authorization": "Bearer " + adminToken})
		req.SetPathValue("id", user.ID)
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var role string
		if err := db.QueryRow(`SELECT role FROM users WHERE id = $1`, user.ID).Scan(&role); err != nil {
			t.Fatal(err)
		}
		if role != models.RoleAdmin {
			t.Errorf("role = %s, want admin", role)
		}
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/auth/users/"+user.ID+"/role",
			models.UpdateRoleRequest{Role: "superuser"},
			map[string]string{"Authorization": "Bearer " + adminToken})
		req.SetPathValue("id", user.ID)
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown user gets 404", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/auth/users/no-such-user/role",
			models.UpdateRoleRequest{Role: models.RoleUser},
			map[string]string{"Authorization": "Bearer " + adminToken})
		req.SetPathValue("id", "no-such-user")
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		lowpriv := testutil.CreateTestUser(t, db, "lowpriv", models.RoleUser)
		req := testutil.MakeRequest("PUT", "/auth/users/"+admin.ID+"/role",
			models.UpdateRoleRequest{Role: models.RoleUser},
			map[string]string{"Authorization": "Bearer " + testutil.AuthToken(t, cfg, lowpriv)})
		req.SetPathValue("id", admin.ID)
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusForbidden)
	})
}
