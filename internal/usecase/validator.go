package usecase

import (
	"context"
	"io"
	"log"

	"golang.org/x/sync/errgroup"
)

// UserChecker reports whether a GitHub account exists.
type UserChecker interface {
	UserExists(ctx context.Context, login string) (bool, error)
}

// Validator checks a contributor list against GitHub.
type Validator struct {
	checker     UserChecker
	logger      *log.Logger
	concurrency int
}

// NewValidator creates a Validator. concurrency <= 0 checks every login at once.
func NewValidator(checker UserChecker, logger *log.Logger, concurrency int) *Validator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Validator{
		checker:     checker,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Validate returns the logins that do not name an existing account, in input order.
func (v *Validator) Validate(ctx context.Context, logins []string) ([]string, error) {
	v.logger.Printf("Usecase: Validating %d contributors...", len(logins))

	valid := make([]bool, len(logins))
	eg, egCtx := errgroup.WithContext(ctx)
	if v.concurrency > 0 {
		eg.SetLimit(v.concurrency)
	}
	for i, login := range logins {
		eg.Go(func() error {
			ok, err := v.checker.UserExists(egCtx, login)
			if err != nil {
				return err
			}
			valid[i] = ok
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	invalid := []string{}
	for i, ok := range valid {
		if !ok {
			invalid = append(invalid, logins[i])
		}
	}
	return invalid, nil
}
