package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testProject  = "proj"
	testDatabase = "db"
	testUsers    = "users"
	testEntries  = "entries"
	testTips     = "tips"
)

var testSigningKey = []byte("test-signing-key")

type fakeAccount struct {
	id       string
	email    string
	password string
	name     string
}

// fakeBackend is a tiny in-memory stand-in for the REST API, covering the
// routes the gateway uses.
type fakeBackend struct {
	t *testing.T

	mu        sync.Mutex
	accounts  map[string]*fakeAccount // by email
	sessions  map[string]string       // secret -> account id
	tokens    map[string]string       // jwt -> account id
	docs      map[string]map[string]map[string]any
	order     map[string][]string
	requests  int
	mints     int
	tokenTTL  time.Duration
	failWith  int // when non-zero every request answers this status
	lastQuery []string
	lastBody  map[string]any
	seq       int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	f := &fakeBackend{
		t:        t,
		accounts: map[string]*fakeAccount{},
		sessions: map[string]string{},
		tokens:   map[string]string{},
		docs:     map[string]map[string]map[string]any{},
		order:    map[string][]string{},
		tokenTTL: 15 * time.Minute,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/account", f.createAccount)
	mux.HandleFunc("GET /v1/account", f.getAccount)
	mux.HandleFunc("POST /v1/account/sessions/email", f.createSession)
	mux.HandleFunc("DELETE /v1/account/sessions/current", f.deleteSession)
	mux.HandleFunc("POST /v1/account/jwts", f.createJWT)
	mux.HandleFunc("POST /v1/databases/{db}/collections/{coll}/documents", f.createDocument)
	mux.HandleFunc("GET /v1/databases/{db}/collections/{coll}/documents", f.listDocuments)
	mux.HandleFunc("GET /v1/databases/{db}/collections/{coll}/documents/{id}", f.getDocument)
	mux.HandleFunc("PATCH /v1/databases/{db}/collections/{coll}/documents/{id}", f.updateDocument)
	mux.HandleFunc("DELETE /v1/databases/{db}/collections/{coll}/documents/{id}", f.deleteDocument)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		fail := f.failWith
		f.mu.Unlock()

		if r.Header.Get("X-Appwrite-Project") != testProject {
			writeError(w, http.StatusBadRequest, "project_unknown", "missing project header")
			return
		}
		if fail != 0 {
			writeError(w, fail, "general_server_error", "injected failure")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return f, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "code": status, "type": typ})
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return prefix + strconv.Itoa(f.seq)
}

func (f *fakeBackend) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeBackend) Mints() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mints
}

func (f *fakeBackend) SetFailure(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = status
}

func (f *fakeBackend) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]string{}
}

// RevokeSessions ends every session remotely, as an expired or
// server-side deleted session would.
func (f *fakeBackend) RevokeSessions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = map[string]string{}
	f.tokens = map[string]string{}
}

func (f *fakeBackend) sessionAccount(r *http.Request) (string, bool) {
	ck, err := r.Cookie("a_session_" + testProject)
	if err != nil {
		return "", false
	}
	id, ok := f.sessions[ck.Value]
	return id, ok
}

func (f *fakeBackend) decode(r *http.Request) map[string]any {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("fake backend: bad request body: %v", err)
	}
	f.lastBody = body
	return body
}

func (f *fakeBackend) createAccount(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := f.decode(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	name, _ := body["name"].(string)
	userID, _ := body["userId"].(string)

	if _, exists := f.accounts[email]; exists {
		writeError(w, http.StatusConflict, "user_already_exists", "A user with the same id, email, or phone already exists.")
		return
	}
	if len(password) < 8 || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "general_argument_invalid", "Invalid `password` param")
		return
	}
	f.accounts[email] = &fakeAccount{id: userID, email: email, password: password, name: name}
	writeJSON(w, http.StatusCreated, map[string]any{"$id": userID, "email": email, "name": name})
}

func (f *fakeBackend) createSession(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := f.decode(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	acct, ok := f.accounts[email]
	if !ok || acct.password != password {
		writeError(w, http.StatusUnauthorized, "user_invalid_credentials", "Invalid credentials.")
		return
	}

	secret := f.nextID("secret-")
	f.sessions[secret] = acct.id
	http.SetCookie(w, &http.Cookie{Name: "a_session_" + testProject, Value: secret, Path: "/"})
	writeJSON(w, http.StatusCreated, map[string]any{
		"$id":    f.nextID("session-"),
		"userId": acct.id,
		"expire": "2030-01-01T00:00:00.000+00:00",
		"secret": "",
	})
}

func (f *fakeBackend) getAccount(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.sessionAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "User (role: guests) missing scope (account)")
		return
	}
	for _, a := range f.accounts {
		if a.id == id {
			writeJSON(w, http.StatusOK, map[string]any{"$id": a.id, "email": a.email, "name": a.name})
			return
		}
	}
	writeError(w, http.StatusNotFound, "user_not_found", "User not found")
}

func (f *fakeBackend) deleteSession(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ck, err := r.Cookie("a_session_" + testProject)
	if err != nil || f.sessions[ck.Value] == "" {
		writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "User (role: guests) missing scope (account)")
		return
	}
	delete(f.sessions, ck.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) createJWT(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.sessionAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "general_unauthorized_scope", "User (role: guests) missing scope (account)")
		return
	}
	f.mints++

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(f.tokenTTL)),
			ID:        strconv.Itoa(f.mints),
		},
		UserID:    id,
		SessionID: "s",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		f.t.Errorf("sign token: %v", err)
	}
	f.tokens[token] = id
	writeJSON(w, http.StatusCreated, map[string]any{"jwt": token})
}

func (f *fakeBackend) authorized(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := f.tokens[r.Header.Get("X-Appwrite-JWT")]; !ok {
		writeError(w, http.StatusUnauthorized, "user_jwt_invalid", "Failed to verify JWT. Invalid token")
		return false
	}
	return true
}

func (f *fakeBackend) collection(r *http.Request) map[string]map[string]any {
	name := r.PathValue("coll")
	if f.docs[name] == nil {
		f.docs[name] = map[string]map[string]any{}
	}
	return f.docs[name]
}

func (f *fakeBackend) createDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized(w, r) {
		return
	}
	body := f.decode(r)
	id, _ := body["documentId"].(string)
	data, _ := body["data"].(map[string]any)

	coll := f.collection(r)
	if _, exists := coll[id]; exists {
		writeError(w, http.StatusConflict, "document_already_exists", "Document with the requested ID already exists.")
		return
	}
	doc := map[string]any{"$id": id}
	for k, v := range data {
		doc[k] = v
	}
	coll[id] = doc
	name := r.PathValue("coll")
	f.order[name] = append(f.order[name], id)
	writeJSON(w, http.StatusCreated, doc)
}

// Seed stores a document directly, bypassing auth.
func (f *fakeBackend) Seed(collection string, doc map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]map[string]any{}
	}
	id := doc["$id"].(string)
	f.docs[collection][id] = doc
	f.order[collection] = append(f.order[collection], id)
}

func (f *fakeBackend) LastQuery() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *fakeBackend) LastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeBackend) listDocuments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized(w, r) {
		return
	}

	queries := r.URL.Query()["queries[]"]
	f.lastQuery = queries

	limit := 25
	var filters []queryDTO
	for _, raw := range queries {
		var q queryDTO
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			writeError(w, http.StatusBadRequest, "general_query_invalid", err.Error())
			return
		}
		switch q.Method {
		case "limit":
			limit = int(q.Values[0].(float64))
		case "equal":
			filters = append(filters, q)
		default:
			writeError(w, http.StatusBadRequest, "general_query_invalid", "unsupported "+q.Method)
			return
		}
	}

	coll := f.collection(r)
	docs := []map[string]any{}
	for _, id := range f.order[r.PathValue("coll")] {
		doc, ok := coll[id]
		if !ok {
			continue
		}
		if matches(doc, filters) && len(docs) < limit {
			docs = append(docs, doc)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(docs), "documents": docs})
}

func matches(doc map[string]any, filters []queryDTO) bool {
	for _, q := range filters {
		got := fmt.Sprint(doc[q.Attribute])
		ok := false
		for _, v := range q.Values {
			if fmt.Sprint(v) == got {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (f *fakeBackend) getDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized(w, r) {
		return
	}
	doc, ok := f.collection(r)[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (f *fakeBackend) updateDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized(w, r) {
		return
	}
	doc, ok := f.collection(r)[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	body := f.decode(r)
	data, _ := body["data"].(map[string]any)
	for k, v := range data {
		doc[k] = v
	}
	writeJSON(w, http.StatusOK, doc)
}

func (f *fakeBackend) deleteDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.authorized(w, r) {
		return
	}
	coll := f.collection(r)
	id := r.PathValue("id")
	if _, ok := coll[id]; !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	delete(coll, id)
	w.WriteHeader(http.StatusNoContent)
}
