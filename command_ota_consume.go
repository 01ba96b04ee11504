package security

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ConsumeOtaTokenMessage struct {
	Token      string     `json:"token" example:"a8Bc0dE1fG" doc:"One time access token"`
	Purpose    OtaPurpose `json:"purpose" example:"account-activation" doc:"Expected token purpose"`
	OnResponse func(resp *ConsumeOtaTokenResponse)
}

func (p ConsumeOtaTokenMessage) Type() string { return "security.ota.consume" }

type ConsumeOtaTokenResponse struct {
	UserID  string
	Token   *OtaToken
	Success bool
}

type ConsumeOtaTokenHandler struct {
	repo     RepositoryManager
	ota      *OtaTokenService
	activity ActivitySink
	logger   Logger
	now      func() time.Time
}

// NewConsumeOtaTokenHandler creates a handler with sane defaults.
func NewConsumeOtaTokenHandler(repo RepositoryManager, ota *OtaTokenService) *ConsumeOtaTokenHandler {
	return &ConsumeOtaTokenHandler{
		repo:     repo,
		ota:      ota,
		activity: noopActivitySink{},
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithActivitySink sets the sink used to emit consume events.
func (h *ConsumeOtaTokenHandler) WithActivitySink(sink ActivitySink) *ConsumeOtaTokenHandler {
	h.activity = NormalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ConsumeOtaTokenHandler) WithLogger(logger Logger) *ConsumeOtaTokenHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock overrides time.Now.
func (h *ConsumeOtaTokenHandler) WithClock(now func() time.Time) *ConsumeOtaTokenHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *ConsumeOtaTokenHandler) Execute(ctx context.Context, event ConsumeOtaTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during ota token consumption",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConsumeOtaTokenHandler) execute(ctx context.Context, event ConsumeOtaTokenMessage) error {
	if !h.ota.IsValid(event.Token) {
		return ErrOtaTokenMalformed
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	now := h.now()
	resp := &ConsumeOtaTokenResponse{}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := h.repo.OtaTokens().GetByTokenTx(ctx, tx, event.Token, event.Purpose)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) && richErr.TextCode == ErrOtaTokenNotFound.TextCode {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve ota token")
		}

		if record.IsUsed() {
			return ErrOtaTokenUsed
		}

		if record.IsExpired(now) {
			return ErrOtaTokenExpired.Clone().WithMetadata(map[string]any{
				"expired_at": record.ExpiresAt,
			})
		}

		if err := h.repo.OtaTokens().MarkUsedTx(ctx, tx, record.ID, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark ota token as used")
		}

		record.UsedAt = &now
		resp.Token = record
		resp.UserID = record.UserID
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume ota token")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventOtaConsumed,
		UserID:    resp.UserID,
		Metadata: map[string]any{
			"ota_token_id": resp.Token.ID.String(),
			"purpose":      resp.Token.Purpose,
		},
		OccurredAt: now,
	})

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
