package security

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultOtaTTL is how long an issued token stays valid when the message
// does not say otherwise.
const DefaultOtaTTL = 24 * time.Hour

type IssueOtaTokenMessage struct {
	UserID     string        `json:"user_id" example:"42" doc:"Owner of the token"`
	Purpose    OtaPurpose    `json:"purpose" example:"account-activation" doc:"What the token grants"`
	TTL        time.Duration `json:"ttl" doc:"Token lifetime"`
	OnResponse func(resp *IssueOtaTokenResponse)
}

func (p IssueOtaTokenMessage) Type() string { return "security.ota.issue" }

type IssueOtaTokenResponse struct {
	Token   *OtaToken
	Value   string
	Success bool
}

type IssueOtaTokenHandler struct {
	repo     RepositoryManager
	ota      *OtaTokenService
	activity ActivitySink
	logger   Logger
	now      func() time.Time
}

// NewIssueOtaTokenHandler creates a handler with sane defaults.
func NewIssueOtaTokenHandler(repo RepositoryManager, ota *OtaTokenService) *IssueOtaTokenHandler {
	return &IssueOtaTokenHandler{
		repo:     repo,
		ota:      ota,
		activity: noopActivitySink{},
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithActivitySink sets the sink used to emit issue events.
func (h *IssueOtaTokenHandler) WithActivitySink(sink ActivitySink) *IssueOtaTokenHandler {
	h.activity = NormalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *IssueOtaTokenHandler) WithLogger(logger Logger) *IssueOtaTokenHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock overrides time.Now.
func (h *IssueOtaTokenHandler) WithClock(now func() time.Time) *IssueOtaTokenHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *IssueOtaTokenHandler) Execute(ctx context.Context, event IssueOtaTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during ota token issue",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssueOtaTokenHandler) execute(ctx context.Context, event IssueOtaTokenMessage) error {
	if strings.TrimSpace(event.UserID) == "" {
		return goerrors.New("ota token owner must not be empty", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	if strings.TrimSpace(event.Purpose) == "" {
		return ErrOtaPurposeMissing
	}

	ttl := event.TTL
	if ttl <= 0 {
		ttl = DefaultOtaTTL
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	now := h.now()
	value := h.ota.Generate()
	record := &OtaToken{
		ID:        uuid.New(),
		UserID:    event.UserID,
		Token:     value,
		Purpose:   event.Purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	resp := &IssueOtaTokenResponse{Value: value}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// a user holds at most one pending token per purpose
		if err := h.repo.OtaTokens().RevokeForUserTx(ctx, tx, event.UserID, event.Purpose, now); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke pending ota tokens")
		}

		created, err := h.repo.OtaTokens().CreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create ota token record")
		}
		resp.Token = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue ota token")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventOtaIssued,
		UserID:    event.UserID,
		Metadata: map[string]any{
			"ota_token_id": record.ID.String(),
			"purpose":      event.Purpose,
		},
		OccurredAt: now,
	})

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
