// internal/runtime/auth.go
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	dc "github.com/joshsymonds/driveloader/internal/drive"
)

// DefaultScopes is read-only: the loader never writes to Drive.
var DefaultScopes = []string{drive.DriveReadonlyScope}

// ServiceAccountAuthorizer exchanges a service account key for Drive and
// Sheets clients.
type ServiceAccountAuthorizer struct {
	// TokenURL overrides the credential's token_uri.
	TokenURL string
	// ClientOptions are appended when constructing the API services.
	ClientOptions []option.ClientOption
}

// Authorize fetches a first token up front so a rejected credential fails
// here rather than on the first listing call.
func (a ServiceAccountAuthorizer) Authorize(
	ctx context.Context,
	cred *dc.Credential,
	scopes []string,
) (dc.Client, error) {
	if cred == nil {
		return nil, fmt.Errorf("authorize: no credential")
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	cfg := &jwt.Config{
		Email:        cred.ClientEmail,
		PrivateKey:   []byte(cred.PrivateKey),
		PrivateKeyID: cred.PrivateKeyID,
		Scopes:       scopes,
		TokenURL:     a.tokenURL(cred),
	}
	ts := cfg.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("authorize %s: %w", cred.ClientEmail, err)
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, a.ClientOptions...)
	filesSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewGoogleAPIClient(filesSvc, sheetsSvc), nil
}

func (a ServiceAccountAuthorizer) tokenURL(cred *dc.Credential) string {
	switch {
	case a.TokenURL != "":
		return a.TokenURL
	case cred.TokenURI != "":
		return cred.TokenURI
	default:
		return google.JWTTokenURL
	}
}

// ParseCredential decodes a service account JSON key.
func ParseCredential(r io.Reader) (*dc.Credential, error) {
	var cred dc.Credential
	if err := json.NewDecoder(r).Decode(&cred); err != nil {
		return nil, fmt.Errorf("decode service account key: %w", err)
	}
	return &cred, nil
}

// LoadCredentialFile reads a service account JSON key from disk.
func LoadCredentialFile(path string) (*dc.Credential, error) {
	f, err := os.Open(path) // #nosec G304 - path supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("open service account key: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseCredential(f)
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// DiscardLogger swallows everything; used when progress logging is off.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
