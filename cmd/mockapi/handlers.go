package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = time.Hour

// The signing key is throwaway; nothing outside this process trusts it.
var signingKey = []byte("mock-api-signing-key")

type staffUser struct {
	Email        string
	PasswordHash string
	Role         string
	TwoFactor    bool
}

type server struct {
	mu            sync.Mutex
	staff         map[string]staffUser
	refreshTokens map[string]string // refresh token -> email
	stepUpCodes   map[string]string // email -> expected code
	clientRows    []map[string]any
	txRows        []map[string]any
	kycRows       []map[string]any
}

func newServer() *server {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return &server{
		staff: map[string]staffUser{
			"admin@example.com":  {Email: "admin@example.com", PasswordHash: string(hash), Role: "admin"},
			"review@example.com": {Email: "review@example.com", PasswordHash: string(hash), Role: "reviewer", TwoFactor: true},
		},
		refreshTokens: make(map[string]string),
		stepUpCodes:   make(map[string]string),
		clientRows:    seedClients(),
		txRows:        seedTransactions(),
		kycRows:       seedKYC(),
	}
}

func (s *server) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.staff[body.Email]
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.TwoFactor {
		// A fixed code keeps local testing simple.
		s.stepUpCodes[user.Email] = "123456"
		token := s.mintToken(user, "second_factor")
		writeJSON(w, map[string]string{"accessToken": token, "refreshToken": ""})
		return
	}

	s.issuePair(w, user)
}

func (s *server) secondFactor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, ok := subjectFromHeader(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing step-up token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expected, pending := s.stepUpCodes[email]
	if !pending || expected != body.Code {
		writeError(w, http.StatusUnauthorized, "invalid one-time code")
		return
	}
	delete(s.stepUpCodes, email)
	s.issuePair(w, s.staff[email])
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refreshTokens[body.RefreshToken]
	if !ok {
		writeError(w, http.StatusForbidden, "refresh token revoked")
		return
	}
	// Rotation: the presented token is single-use.
	delete(s.refreshTokens, body.RefreshToken)
	s.issuePair(w, s.staff[email])
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if email, ok := subjectFromHeader(r); ok {
		s.mu.Lock()
		for token, owner := range s.refreshTokens {
			if owner == email {
				delete(s.refreshTokens, token)
			}
		}
		s.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

// issuePair mints and responds with a full token pair. Caller holds s.mu.
func (s *server) issuePair(w http.ResponseWriter, user staffUser) {
	refresh := uuid.New().String()
	s.refreshTokens[refresh] = user.Email
	writeJSON(w, map[string]string{
		"accessToken":  s.mintToken(user, ""),
		"refreshToken": refresh,
	})
}

func (s *server) mintToken(user staffUser, tokenType string) string {
	now := time.Now()
	mapClaims := jwtlib.MapClaims{
		"sub":  user.Email,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
		"jti":  uuid.New().String(),
	}
	if tokenType != "" {
		mapClaims["type"] = tokenType
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, mapClaims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mapClaims, ok := verifiedClaims(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}
		if tokenType, _ := mapClaims["type"].(string); tokenType == "second_factor" {
			writeError(w, http.StatusUnauthorized, "second factor required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) approveKYC(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.kycRows {
		if row["id"] == id {
			row["status"] = "approved"
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "kyc request not found")
}

func (s *server) clients() []map[string]any      { return s.clientRows }
func (s *server) transactions() []map[string]any { return s.txRows }
func (s *server) kycRequests() []map[string]any  { return s.kycRows }

// listHandler paginates a fixture set using the console's standard
// page/limit query parameters.
func listHandler(rows func() []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := rows()
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 25
		}

		start := (page - 1) * limit
		if start > len(all) {
			start = len(all)
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}

		writeJSON(w, map[string]any{
			"items": all[start:end],
			"total": len(all),
			"page":  page,
			"limit": limit,
		})
	}
}

func verifiedClaims(r *http.Request) (jwtlib.MapClaims, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, false
	}
	token, err := jwtlib.ParseWithClaims(raw, jwtlib.MapClaims{}, func(*jwtlib.Token) (any, error) {
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	return mapClaims, ok
}

func subjectFromHeader(r *http.Request) (string, bool) {
	mapClaims, ok := verifiedClaims(r)
	if !ok {
		return "", false
	}
	sub, _ := mapClaims["sub"].(string)
	return sub, sub != ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message}) //nolint:errcheck
}

func seedClients() []map[string]any {
	names := []string{"Acme Capital", "Harbor Trading", "Northside Funds", "Quarry Digital", "Summit Pay"}
	rows := make([]map[string]any, 0, len(names))
	for i, name := range names {
		rows = append(rows, map[string]any{
			"id":        uuid.New().String(),
			"name":      name,
			"email":     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
			"status":    "active",
			"riskLevel": []string{"low", "medium", "high"}[i%3],
			"createdAt": time.Now().AddDate(0, -i, 0).Format(time.RFC3339),
		})
	}
	return rows
}

func seedTransactions() []map[string]any {
	rows := make([]map[string]any, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, map[string]any{
			"id":        uuid.New().String(),
			"walletId":  uuid.New().String(),
			"type":      []string{"deposit", "withdrawal", "transfer"}[i%3],
			"currency":  []string{"BTC", "ETH", "USDT"}[i%3],
			"amount":    strconv.Itoa((i + 1) * 100),
			"status":    []string{"pending", "confirmed", "failed"}[i%3],
			"createdAt": time.Now().Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	return rows
}

func seedKYC() []map[string]any {
	rows := make([]map[string]any, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, map[string]any{
			"id":           "kyc-" + strconv.Itoa(i+1),
			"clientId":     uuid.New().String(),
			"status":       "pending",
			"documentType": []string{"passport", "id_card", "driving_licence"}[i],
			"submittedAt":  time.Now().AddDate(0, 0, -i).Format(time.RFC3339),
		})
	}
	return rows
}
