package weverse

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"
)

// AuthMode is the session's authorization mode. Password-mode sessions must
// log in before every check; token-mode sessions probe the token directly.
type AuthMode string

const (
	// ModePassword holds a username/password pair not yet exchanged for tokens.
	ModePassword AuthMode = "password"
	// ModeToken holds a bearer token (supplied or issued by a login).
	ModeToken AuthMode = "token"
)

// Credentials is either a username/password pair or an access token. After a
// successful login the session only retains the token form.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// loginPayload is the password grant body. The password is RSA-encrypted
// with the platform key before it is placed here.
type loginPayload struct {
	GrantType string `json:"grant_type"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// refreshPayload is the refresh grant body.
type refreshPayload struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	RefreshToken string `json:"refresh_token"`
}

// Session owns credentials, tokens and authorization state. It is safe for
// concurrent use; every mutation happens under a single lock, so auth
// operations are serialized.
type Session struct {
	api       *API
	endpoints Endpoints
	logger    *log.Logger

	mu           sync.Mutex
	mode         AuthMode
	authorized   bool
	username     string
	password     string
	accessToken  string
	refreshToken string
	memberID     int64
}

// NewSession builds a session from the supplied credentials. The absence of
// both credential forms is irrecoverable misuse and fails immediately.
func NewSession(api *API, endpoints Endpoints, creds Credentials, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Session{api: api, endpoints: endpoints, logger: logger}
	switch {
	case creds.Token != "":
		s.mode = ModeToken
		s.accessToken = creds.Token
	case creds.Username != "" && creds.Password != "":
		s.mode = ModePassword
		s.username = creds.Username
		s.password = creds.Password
	default:
		return nil, ErrNoCredentials
	}
	return s, nil
}

// Authorized reports whether the last auth operation left the session
// authorized.
func (s *Session) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorized
}

// Mode returns the current authorization mode.
func (s *Session) Mode() AuthMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// MemberID returns the remote account id, zero before the first login.
func (s *Session) MemberID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberID
}

// RefreshToken returns the stored refresh token, empty before the first login.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Headers returns the request headers derived from the session state.
func (s *Session) Headers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers()
}

func (s *Session) headers() map[string]string {
	if s.accessToken == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.accessToken}
}

// Login performs the password grant. Supplied credentials replace the stored
// ones and force password mode; without stored password credentials the call
// is a no-op (nothing to encrypt). On success the session switches to token
// mode and is authorized.
func (s *Session) Login(ctx context.Context, creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds != nil {
		s.logger.Printf("weverse: using provided credentials")
		s.username = creds.Username
		s.password = creds.Password
		s.accessToken = ""
		s.refreshToken = ""
		s.mode = ModePassword
		s.authorized = false
	}
	if s.mode != ModePassword {
		s.logger.Printf("weverse: provide credentials to call Login")
		return nil
	}
	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) error {
	encrypted, err := EncryptPassword(s.password)
	if err != nil {
		return &AuthError{Message: "failed to generate login payload", Err: err}
	}
	payload := loginPayload{
		GrantType: "password",
		ClientID:  loginClientID,
		Username:  s.username,
		Password:  encrypted,
	}

	resp, err := s.api.PostJSON(ctx, s.endpoints.Login(), payload, nil)
	if err != nil {
		s.authorized = false
		return &AuthError{Err: err}
	}
	if !resp.OK() {
		s.authorized = false
		return &AuthError{StatusCode: resp.StatusCode, Message: "password authorization failed"}
	}

	var creds OAuthCredentials
	if err := Decode(resp, &creds); err != nil {
		s.authorized = false
		return &AuthError{Err: err}
	}
	if !creds.Valid() {
		s.authorized = false
		return &AuthError{Message: "credential response failed shape check"}
	}

	s.adopt(creds)
	s.password = ""
	s.logger.Printf("weverse: password authorization succeeded")
	return nil
}

// adopt installs freshly issued OAuth credentials and authorizes the session.
func (s *Session) adopt(creds OAuthCredentials) {
	s.accessToken = creds.AccessToken
	s.refreshToken = creds.RefreshToken
	s.memberID = creds.WeMemberID
	s.mode = ModeToken
	s.authorized = true
}

// CheckToken probes the identity endpoint. Only valid in token mode. A 200
// authorizes the session; any other status falls back to one refresh-grant
// attempt whose result becomes the authorized flag.
func (s *Session) CheckToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkToken(ctx)
}

func (s *Session) checkToken(ctx context.Context) bool {
	if s.mode != ModeToken {
		s.logger.Printf("weverse: provide a token or call Login with valid username + password")
		return false
	}
	resp, err := s.api.Get(ctx, s.endpoints.Me(), s.headers())
	if err != nil {
		s.logger.Printf("weverse: token check failed: %v", err)
		s.authorized = false
		return false
	}
	if resp.StatusCode == http.StatusOK {
		s.authorized = true
		return true
	}
	s.authorized = s.tryRefreshToken(ctx)
	return s.authorized
}

// TryRefreshToken exchanges the stored refresh token for fresh credentials.
// Without a stored refresh token it fails fast; a malformed response leaves
// the session untouched.
func (s *Session) TryRefreshToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryRefreshToken(ctx)
}

func (s *Session) tryRefreshToken(ctx context.Context) bool {
	if s.refreshToken == "" {
		s.logger.Printf("weverse: no refresh token stored")
		return false
	}
	payload := refreshPayload{
		GrantType:    "refresh_token",
		ClientID:     loginClientID,
		RefreshToken: s.refreshToken,
	}
	resp, err := s.api.PostJSON(ctx, s.endpoints.Login(), payload, nil)
	if err != nil {
		s.logger.Printf("weverse: token refresh failed: %v", err)
		return false
	}
	if !resp.OK() {
		s.logger.Printf("weverse: token refresh rejected: status code %d", resp.StatusCode)
		return false
	}
	var creds OAuthCredentials
	if err := Decode(resp, &creds); err != nil {
		s.logger.Printf("weverse: %v", err)
		return false
	}
	if !creds.Valid() {
		s.logger.Printf("weverse: refresh response failed shape check")
		return false
	}
	s.adopt(creds)
	s.logger.Printf("weverse: token refresh succeeded")
	return true
}

// CheckLogin is the composite gate used by every data-fetching operation.
// Password-mode sessions log in first; all modes then require a passing
// token check.
func (s *Session) CheckLogin(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModePassword {
		if err := s.login(ctx); err != nil {
			s.logger.Printf("weverse: %v", err)
		}
		if !s.authorized {
			return false
		}
	}
	return s.checkToken(ctx)
}
