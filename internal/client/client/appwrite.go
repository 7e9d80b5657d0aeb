package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/dmitrijs2005/traveldiary/internal/client/models"
	"github.com/dmitrijs2005/traveldiary/internal/logging"
)

const (
	// responseFormat pins the document shape returned by the backend.
	responseFormat = "1.5.0"

	// DefaultListLimit overrides the backend page size of 25.
	DefaultListLimit = 100

	defaultRequestTimeout = 15 * time.Second
)

var errNoSessionSecret = errors.New("login response carried no session secret")

// Options configures an AppwriteClient.
type Options struct {
	Endpoint          string
	Platform          string
	Project           string
	Database          string
	UsersCollection   string
	EntriesCollection string
	TipsCollection    string

	// ListLimit caps list calls. Zero means DefaultListLimit.
	ListLimit int

	// RequestTimeout applies when HTTPClient is nil.
	RequestTimeout time.Duration
	HTTPClient     *http.Client

	// BreakerThreshold is the number of consecutive failures that opens the
	// breaker; BreakerTimeout is how long it stays open.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration

	// Credentials defaults to an in-memory store.
	Credentials CredentialStore
	Logger      logging.Logger

	// Now is used for JWT expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// AppwriteClient implements Gateway over the Appwrite REST API.
type AppwriteClient struct {
	opts    Options
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logging.Logger
	store   CredentialStore
	now     func() time.Time

	mu     sync.Mutex
	creds  Credentials
	loaded bool

	// jwtMu keeps concurrent document calls from minting twice.
	jwtMu sync.Mutex
}

var _ Gateway = (*AppwriteClient)(nil)

func NewAppwriteClient(opts Options) (*AppwriteClient, error) {

	if opts.Endpoint == "" {
		return nil, errors.New("appwrite endpoint is required")
	}
	if opts.Project == "" {
		return nil, errors.New("appwrite project is required")
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}

	c := &AppwriteClient{
		opts:    opts,
		baseURL: strings.TrimRight(opts.Endpoint, "/"),
		http:    opts.HTTPClient,
		log:     opts.Logger,
		store:   opts.Credentials,
		now:     opts.Now,
	}

	if c.http == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.store == nil {
		c.store = &MemoryCredentialStore{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.breaker = newBreaker("appwrite", opts.BreakerThreshold, opts.BreakerTimeout, c.log)

	return c, nil
}

func (c *AppwriteClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *AppwriteClient) Register(ctx context.Context, email, password, username string) (*models.User, error) {

	var account accountDTO
	req := request{
		op:     OpRegister,
		method: http.MethodPost,
		path:   "/account",
		body:   newAccountBody{UserID: newID(), Email: email, Password: password, Name: username},
	}
	if _, err := c.do(ctx, req, &account); err != nil {
		return nil, err
	}

	if _, err := c.login(ctx, OpRegister, email, password); err != nil {
		return nil, err
	}

	profile := profileDoc{
		AccountID: account.ID,
		Email:     email,
		Username:  username,
		Avatar:    c.avatarURL(username),
	}
	var created profileDoc
	req = request{
		op:     opCreateProfile,
		method: http.MethodPost,
		path:   c.documentsPath(c.opts.UsersCollection),
		body:   createDocumentBody{DocumentID: newID(), Data: profile},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &created); err != nil {
		return nil, err
	}

	u := created.toModel()
	return &u, nil
}

func (c *AppwriteClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return c.login(ctx, OpLogin, email, password)
}

func (c *AppwriteClient) login(ctx context.Context, op, email, password string) (*models.Session, error) {

	var s sessionDTO
	req := request{
		op:     op,
		method: http.MethodPost,
		path:   "/account/sessions/email",
		body:   emailSessionBody{Email: email, Password: password},
	}
	resp, err := c.do(ctx, req, &s)
	if err != nil {
		return nil, err
	}

	secret := c.sessionSecret(resp, s.Secret)
	if secret == "" {
		return nil, &GatewayError{Op: op, Kind: ErrNetwork, Status: resp.StatusCode, Err: errNoSessionSecret}
	}

	if err := c.setCredentials(ctx, Credentials{Session: secret}); err != nil {
		return nil, err
	}

	return &models.Session{ID: s.ID, AccountID: s.UserID, Expire: s.Expire}, nil
}

// CurrentUser resolves the account behind the stored session and then its
// profile document. An account without a profile counts as not logged in.
func (c *AppwriteClient) CurrentUser(ctx context.Context) (*models.User, error) {

	var account accountDTO
	req := request{op: OpCurrentUser, method: http.MethodGet, path: "/account", auth: authSession}
	if _, err := c.do(ctx, req, &account); err != nil {
		return nil, err
	}

	var list documentList[profileDoc]
	req = request{
		op:     OpCurrentUser,
		method: http.MethodGet,
		path:   c.documentsPath(c.opts.UsersCollection),
		query:  url.Values{queryParam: {equalQuery("accountId", account.ID), limitQuery(1)}},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &list); err != nil {
		return nil, err
	}

	if len(list.Documents) == 0 {
		return nil, &GatewayError{
			Op:      OpCurrentUser,
			Kind:    ErrNotAuthenticated,
			Message: "no profile for account " + account.ID,
		}
	}

	u := list.Documents[0].toModel()
	if u.Email == "" {
		u.Email = account.Email
	}
	return &u, nil
}

// Logout ends the current session. Local credentials are dropped even when
// the backend call fails.
func (c *AppwriteClient) Logout(ctx context.Context) error {

	creds, err := c.credentials(ctx)
	if err != nil {
		return err
	}
	if creds.Session == "" {
		return nil
	}

	req := request{op: OpLogout, method: http.MethodDelete, path: "/account/sessions/current", auth: authSession}
	_, err = c.do(ctx, req, nil)

	if clearErr := c.setCredentials(ctx, Credentials{}); clearErr != nil && err == nil {
		err = clearErr
	}
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (c *AppwriteClient) CreateEntry(ctx context.Context, ownerID string, draft models.DraftEntry) (*models.TravelEntry, error) {

	data := entryData{
		Title:     draft.Title,
		Content:   draft.Content,
		Location:  draft.Location,
		Images:    nonNilRefs(draft.Images),
		Traveler:  ownerID,
		CreatedAt: draft.CreatedAt,
	}

	var doc entryDoc
	req := request{
		op:     OpCreateEntry,
		method: http.MethodPost,
		path:   c.documentsPath(c.opts.EntriesCollection),
		body:   createDocumentBody{DocumentID: newID(), Data: data},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &doc); err != nil {
		return nil, err
	}

	e := doc.toModel()
	return &e, nil
}

func (c *AppwriteClient) ListEntriesForOwner(ctx context.Context, ownerID string) ([]models.TravelEntry, error) {

	var list documentList[entryDoc]
	req := request{
		op:     OpListEntries,
		method: http.MethodGet,
		path:   c.documentsPath(c.opts.EntriesCollection),
		query:  url.Values{queryParam: {equalQuery("traveler", ownerID), limitQuery(c.opts.ListLimit)}},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &list); err != nil {
		return nil, err
	}

	out := make([]models.TravelEntry, 0, len(list.Documents))
	for _, d := range list.Documents {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (c *AppwriteClient) GetEntry(ctx context.Context, id string) (*models.TravelEntry, error) {

	if id == "" {
		return nil, &GatewayError{Op: OpGetEntry, Kind: ErrNotFound, Message: "empty entry id"}
	}

	var doc entryDoc
	req := request{op: OpGetEntry, method: http.MethodGet, path: c.documentPath(c.opts.EntriesCollection, id), auth: authJWT}
	if _, err := c.do(ctx, req, &doc); err != nil {
		return nil, err
	}

	e := doc.toModel()
	return &e, nil
}

func (c *AppwriteClient) UpdateEntry(ctx context.Context, id string, fields models.EntryFields) (*models.TravelEntry, error) {

	if id == "" {
		return nil, &GatewayError{Op: OpUpdateEntry, Kind: ErrNotFound, Message: "empty entry id"}
	}

	data := entryUpdate{
		Title:    fields.Title,
		Content:  fields.Content,
		Location: fields.Location,
		Images:   nonNilRefs(fields.Images),
	}

	var doc entryDoc
	req := request{
		op:     OpUpdateEntry,
		method: http.MethodPatch,
		path:   c.documentPath(c.opts.EntriesCollection, id),
		body:   updateDocumentBody{Data: data},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &doc); err != nil {
		return nil, err
	}

	e := doc.toModel()
	return &e, nil
}

func (c *AppwriteClient) DeleteEntry(ctx context.Context, id string) error {

	if id == "" {
		return &GatewayError{Op: OpDeleteEntry, Kind: ErrNotFound, Message: "empty entry id"}
	}

	req := request{op: OpDeleteEntry, method: http.MethodDelete, path: c.documentPath(c.opts.EntriesCollection, id), auth: authJWT}
	_, err := c.do(ctx, req, nil)
	return err
}

func (c *AppwriteClient) ListTips(ctx context.Context) ([]models.TravelTip, error) {

	var list documentList[tipDoc]
	req := request{
		op:     OpListTips,
		method: http.MethodGet,
		path:   c.documentsPath(c.opts.TipsCollection),
		query:  url.Values{queryParam: {limitQuery(c.opts.ListLimit)}},
		auth:   authJWT,
	}
	if _, err := c.do(ctx, req, &list); err != nil {
		return nil, err
	}

	out := make([]models.TravelTip, 0, len(list.Documents))
	for _, d := range list.Documents {
		out = append(out, models.TravelTip{ID: d.ID, Title: d.Title, Content: d.Content})
	}
	return out, nil
}

type authMode int

const (
	authNone authMode = iota
	authSession
	authJWT
)

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
}

// do performs one round trip and decodes a successful body into out.
// The returned response has its body already closed; only headers remain
// usable. Failures are always *GatewayError, except credential store errors.
func (c *AppwriteClient) do(ctx context.Context, req request, out any) (*http.Response, error) {

	resp, err := c.roundTrip(ctx, req, out)
	if req.auth != authJWT || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// The rejected token is already dropped, so this mints a new one from
	// the session. A session the backend no longer accepts fails the mint
	// and clears the stored credentials.
	c.log.Info(ctx, "access token rejected, minting a new one", "op", req.op)
	resp, err = c.roundTrip(ctx, req, out)
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		c.forget(ctx, authSession)
	}
	return resp, err
}

// roundTrip sends one request through the breaker and decodes the answer.
func (c *AppwriteClient) roundTrip(ctx context.Context, req request, out any) (*http.Response, error) {

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	_, err = c.breaker.Execute(func() (any, error) {
		r, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server responded %d", r.StatusCode)
		}
		return nil, nil
	})

	if resp == nil {
		c.log.Warn(ctx, "backend call failed", "op", req.op, "error", err)
		return nil, &GatewayError{Op: req.op, Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, c.statusError(ctx, req, resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.Warn(ctx, "undecodable backend response", "op", req.op, "status", resp.StatusCode, "error", err)
			return resp, &GatewayError{Op: req.op, Kind: ErrNetwork, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return resp, nil
}

func (c *AppwriteClient) newRequest(ctx context.Context, req request) (*http.Request, error) {

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &GatewayError{Op: req.op, Kind: ErrNetwork, Err: err}
	}

	h := httpReq.Header
	h.Set("Accept", "application/json")
	if body != nil {
		h.Set("Content-Type", "application/json")
	}
	h.Set("X-Appwrite-Project", c.opts.Project)
	h.Set("X-Appwrite-Response-Format", responseFormat)
	if c.opts.Platform != "" {
		h.Set("Origin", "appwrite-android://"+c.opts.Platform)
	}

	switch req.auth {
	case authSession:
		creds, err := c.credentials(ctx)
		if err != nil {
			return nil, err
		}
		if creds.Session == "" {
			return nil, &GatewayError{Op: req.op, Kind: ErrNotAuthenticated, Message: "no active session"}
		}
		name := c.sessionCookieName()
		httpReq.AddCookie(&http.Cookie{Name: name, Value: creds.Session})
		fallback, _ := json.Marshal(map[string]string{name: creds.Session})
		h.Set("X-Fallback-Cookies", string(fallback))
	case authJWT:
		token, err := c.accessToken(ctx)
		if err != nil {
			var gerr *GatewayError
			if errors.As(err, &gerr) {
				cp := *gerr
				cp.Op = req.op
				return nil, &cp
			}
			return nil, err
		}
		h.Set("X-Appwrite-JWT", token)
	}

	return httpReq, nil
}

func (c *AppwriteClient) statusError(ctx context.Context, req request, resp *http.Response) error {

	var body errorDTO
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil {
		body.Message = strings.TrimSpace(string(raw))
	}

	kind := mapError(req.op, resp.StatusCode, body.Type)
	gerr := &GatewayError{
		Op:      req.op,
		Kind:    kind,
		Status:  resp.StatusCode,
		Type:    body.Type,
		Message: body.Message,
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.forget(ctx, req.auth)
	}

	c.log.Warn(ctx, "backend call failed", "op", req.op, "status", resp.StatusCode, "type", body.Type, "message", body.Message)
	return gerr
}

// forget drops credentials the backend just rejected. A rejected JWT only
// costs a re-mint; a rejected session means logging in again.
func (c *AppwriteClient) forget(ctx context.Context, mode authMode) {

	var err error
	switch mode {
	case authJWT:
		c.mu.Lock()
		creds := c.creds
		c.mu.Unlock()
		creds.JWT = ""
		err = c.setCredentials(ctx, creds)
	case authSession:
		err = c.setCredentials(ctx, Credentials{})
	default:
		return
	}
	if err != nil {
		c.log.Warn(ctx, "failed to drop rejected credentials", "error", err)
	}
}

func (c *AppwriteClient) credentials(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		creds, err := c.store.Load(ctx)
		if err != nil {
			return Credentials{}, fmt.Errorf("load credentials: %w", err)
		}
		c.creds = creds
		c.loaded = true
	}
	return c.creds, nil
}

func (c *AppwriteClient) setCredentials(ctx context.Context, creds Credentials) error {
	c.mu.Lock()
	c.creds = creds
	c.loaded = true
	c.mu.Unlock()

	var err error
	if creds == (Credentials{}) {
		err = c.store.Clear(ctx)
	} else {
		err = c.store.Save(ctx, creds)
	}
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

func (c *AppwriteClient) sessionCookieName() string {
	return "a_session_" + strings.ToLower(c.opts.Project)
}

// sessionSecret picks the session secret from the login response: the
// session cookie, then the fallback cookie header, then the body.
func (c *AppwriteClient) sessionSecret(resp *http.Response, fromBody string) string {

	name := c.sessionCookieName()
	for _, ck := range resp.Cookies() {
		if ck.Name == name && ck.Value != "" {
			return ck.Value
		}
	}

	if raw := resp.Header.Get("X-Fallback-Cookies"); raw != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err == nil && m[name] != "" {
			return m[name]
		}
	}

	return fromBody
}

func (c *AppwriteClient) documentsPath(collection string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(c.opts.Database), url.PathEscape(collection))
}

func (c *AppwriteClient) documentPath(collection, id string) string {
	return c.documentsPath(collection) + "/" + url.PathEscape(id)
}

// avatarURL builds the initials avatar link stored on the profile. It is
// never fetched by the client.
func (c *AppwriteClient) avatarURL(name string) string {
	q := url.Values{"name": {name}, "project": {c.opts.Project}}
	return c.baseURL + "/avatars/initials?" + q.Encode()
}

func newID() string {
	return uuid.NewString()
}

func nonNilRefs(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}
