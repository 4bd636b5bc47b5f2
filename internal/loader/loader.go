// Package loader is the entry point: it validates options, authorizes against
// Google and walks the requested folder.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/joshsymonds/driveloader/internal/drive"
	"github.com/joshsymonds/driveloader/internal/rate"
	"github.com/joshsymonds/driveloader/internal/runtime"
	"github.com/joshsymonds/driveloader/internal/walk"
)

// LoggingEnv turns on progress logging when set to any non-empty value.
const LoggingEnv = "LOGGING"

var (
	// ErrInvalidConfig is returned before any remote call when options are incomplete.
	ErrInvalidConfig = errors.New("invalid loader configuration")
	// ErrAuthorization is returned when the service rejects the credential.
	ErrAuthorization = errors.New("authorization failed")
)

// Authorizer turns a service account credential into a Drive client.
type Authorizer interface {
	Authorize(ctx context.Context, cred *drive.Credential, scopes []string) (drive.Client, error)
}

// Options configures a single Load.
type Options struct {
	ServiceAccountToken *drive.Credential
	ItemID              drive.ItemID
	Logging             bool

	// Logger receives progress lines when logging is enabled. Defaults to
	// runtime.DefaultLogger.
	Logger *slog.Logger
	// Limiter is shared by every remote call of this load. When nil a fresh
	// Serial limiter is created, so separate loads do not share a budget.
	Limiter    rate.Limiter
	Interval   time.Duration
	Authorizer Authorizer
	Scopes     []string
	PageSize   int
	FanOut     int
}

// Validate checks the inputs every load needs.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ServiceAccountToken, validation.Required, validation.By(validCredential)),
		validation.Field(&o.ItemID, validation.Required),
		validation.Field(&o.PageSize, validation.Min(0), validation.Max(walk.DefaultPageSize)),
		validation.Field(&o.FanOut, validation.Min(0)),
	)
}

func validCredential(value interface{}) error {
	cred, _ := value.(*drive.Credential)
	if cred == nil {
		return nil
	}
	return validation.ValidateStruct(cred,
		validation.Field(&cred.ClientEmail, validation.Required),
		validation.Field(&cred.PrivateKey, validation.Required),
	)
}

// Load walks opts.ItemID as a folder and returns its processed children, or
// the first error met anywhere in the tree.
func Load(ctx context.Context, opts Options) (drive.FolderContents, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := progressLogger(opts).With("run", uuid.NewString())

	authorizer := opts.Authorizer
	if authorizer == nil {
		authorizer = runtime.ServiceAccountAuthorizer{}
	}
	client, err := authorizer.Authorize(ctx, opts.ServiceAccountToken, opts.Scopes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthorization, err)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewSerial(opts.Interval)
	}

	svc := walk.NewService(client, limiter, logger)
	if opts.PageSize > 0 {
		svc.PageSize = opts.PageSize
	}
	svc.FanOut = opts.FanOut

	begin := time.Now()
	tree, err := svc.Folder(ctx, opts.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.ItemID, err)
	}
	logger.InfoContext(ctx, "load complete", "id", opts.ItemID, "entries", len(tree), "elapsed", time.Since(begin))
	return tree, nil
}

func progressLogger(opts Options) *slog.Logger {
	if !opts.Logging && os.Getenv(LoggingEnv) == "" {
		return runtime.DiscardLogger()
	}
	if opts.Logger != nil {
		return opts.Logger
	}
	return runtime.DefaultLogger()
}
