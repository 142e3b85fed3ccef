package d2l

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"valence/internal/components/chrono"
	"valence/internal/components/db"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"golang.org/x/sync/singleflight"
)

const (
	report_session_token       = "session.token"
	report_session_token_store = "session.token-store"
)

const tokenPath = "/d2l/lp/auth/oauth2/token"

// Token is an oauth access token, ExpiresAt is in unix milliseconds.
type Token struct {
	AccessToken string
	ExpiresAt   int64
}

// TokenStore persists tokens per LMS origin.
type TokenStore interface {
	Load(ctx context.Context, origin string) (Token, bool, error)
	Save(ctx context.Context, origin string, token Token) error
}

// SqlTokenStore keeps tokens in the session_tokens table.
type SqlTokenStore struct {
	qry *db.Queries
}

func NewSqlTokenStore(qry *db.Queries) SqlTokenStore {
	return SqlTokenStore{qry: qry}
}

func (s SqlTokenStore) Load(ctx context.Context, origin string) (Token, bool, error) {
	row, err := s.qry.GetSessionToken(ctx, origin)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, err
	}
	return Token{AccessToken: row.AccessToken, ExpiresAt: row.ExpiresAt}, true, nil
}

func (s SqlTokenStore) Save(ctx context.Context, origin string, token Token) error {
	return s.qry.PutSessionToken(ctx, db.PutSessionTokenParams{
		Origin:      origin,
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	})
}

// MemoryTokenStore forgets its tokens with the process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]Token{}}
}

func (s *MemoryTokenStore) Load(_ context.Context, origin string) (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[origin]
	return token, ok, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, origin string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[origin] = token
	return nil
}

// Session hands out bearer tokens for the api endpoints.
//
// A token is reused until it expires. Concurrent callers that need a new
// token share one round trip: the home document is fetched for its xsrf
// token, which is then exchanged at the oauth endpoint.
type Session struct {
	client *Client
	origin string
	store  TokenStore
	time   chrono.TimeAPI
	tel    telemetry.API

	group singleflight.Group
}

func newSession(client *Client, store TokenStore, time chrono.TimeAPI, tel telemetry.API) *Session {
	return &Session{
		client: client,
		origin: client.BaseUrl.Scheme + "://" + client.BaseUrl.Host,
		store:  store,
		time:   time,
		tel:    tel,
	}
}

func (s *Session) cached(ctx context.Context) (string, bool) {
	token, ok, err := s.store.Load(ctx, s.origin)
	if err != nil {
		s.tel.ReportWarning(report_session_token_store, fmt.Errorf("load: %w", err))
		return "", false
	}
	if !ok || s.time.Now().UnixMilli() >= token.ExpiresAt {
		return "", false
	}
	return token.AccessToken, true
}

// Token returns a valid access token, forceRefresh skips the stored one.
func (s *Session) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		if token, ok := s.cached(ctx); ok {
			return token, nil
		}
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresAt   *float64 `json:"expires_at"`
}

func (s *Session) fetch(ctx context.Context) (string, error) {
	base, err := s.client.BaseDocument(ctx)
	if err != nil {
		return "", &TokenError{Reason: "fetch base document", Err: err}
	}
	xsrf, ok := parse.XsrfToken(base)
	if !ok {
		err := &TokenError{Reason: "xsrf token not found"}
		s.tel.ReportBroken(report_session_token, err)
		return "", err
	}

	res, err := s.client.execute(
		s.client.Http.R().
			SetContext(ctx).
			SetHeader("X-Csrf-Token", xsrf).
			SetFormData(map[string]string{"scope": "*:*:*"}),
		http.MethodPost,
		tokenPath,
	)
	if err != nil {
		err := &TokenError{Reason: "token request", Err: err}
		s.tel.ReportBroken(report_session_token, err)
		return "", err
	}

	var body tokenResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		err := &TokenError{Reason: "decode token response", Err: err}
		s.tel.ReportBroken(report_session_token, err)
		return "", err
	}
	if body.AccessToken == "" || body.ExpiresAt == nil {
		err := &TokenError{Reason: "token response is missing access_token or expires_at"}
		s.tel.ReportBroken(report_session_token, err)
		return "", err
	}

	token := Token{
		AccessToken: body.AccessToken,
		ExpiresAt:   int64(*body.ExpiresAt) * 1000,
	}
	err = s.store.Save(ctx, s.origin, token)
	if err != nil {
		s.tel.ReportWarning(report_session_token_store, fmt.Errorf("save: %w", err))
	}
	return token.AccessToken, nil
}
