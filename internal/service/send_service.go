package service

import (
	"context"
	"time"

	"github.com/bm-streak/internal/calendar"
	"github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/logging"
	"github.com/bm-streak/internal/metrics"
	"github.com/bm-streak/internal/types"
	"golang.org/x/sync/errgroup"
)

// SendResult is the outcome of a successful send
type SendResult struct {
	Sent            bool `json:"sent"`
	LimitReached    bool `json:"limitReached"`
	RecipientStreak int  `json:"recipientStreak"`
}

// SendService applies eligibility, the daily quota and the recipient boost
type SendService struct {
	streaks     StreakStore
	sendLimits  SendLimitStore
	leaderboard LeaderboardStore
	receipts    ReceiptStore
	notifier    Notifier
	now         Clock
	limit       int
}

// NewSendService creates a new send service
func NewSendService(
	streaks StreakStore,
	sendLimits SendLimitStore,
	leaderboard LeaderboardStore,
	receipts ReceiptStore,
	notifier Notifier,
	now Clock,
) *SendService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &SendService{
		streaks:     streaks,
		sendLimits:  sendLimits,
		leaderboard: leaderboard,
		receipts:    receipts,
		notifier:    notifier,
		now:         now,
		limit:       types.DailySendLimit,
	}
}

// Send transfers one BM from sender to recipient.
//
// Preconditions are checked in order: both identities present, sender checked
// in today, recipient checked in today, sender below the daily limit. A
// rejection leaves the store untouched. The recipient's streak is raised by
// one without moving their lastCheckIn.
func (s *SendService) Send(ctx context.Context, sender, recipient string) (*SendResult, error) {
	result, err := s.send(ctx, sender, recipient)
	metrics.RecordSend(sendOutcome(err))
	return result, err
}

func (s *SendService) send(ctx context.Context, sender, recipient string) (*SendResult, error) {
	if types.IsBlankIdentity(sender) || types.IsBlankIdentity(recipient) {
		return nil, errors.NewInvalidInputError("Sender and recipient are required")
	}

	senderKey := types.NormalizeIdentity(sender)
	recipientKey := types.NormalizeIdentity(recipient)
	now := s.now()

	var (
		senderStreak    *types.UserStreak
		recipientStreak *types.UserStreak
		sendLimit       *types.SendLimit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		senderStreak, err = s.streaks.Get(gctx, senderKey)
		return err
	})
	g.Go(func() error {
		var err error
		recipientStreak, err = s.streaks.Get(gctx, recipientKey)
		return err
	})
	g.Go(func() error {
		var err error
		sendLimit, err = s.sendLimits.Get(gctx, senderKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.NewStoreError("read send state", err)
	}

	if !calendar.IsToday(senderStreak.LastCheckIn, now) {
		return nil, errors.NewSenderNotEligibleError(senderKey)
	}
	if !calendar.IsToday(recipientStreak.LastCheckIn, now) {
		return nil, errors.NewRecipientNotEligibleError(recipientKey)
	}

	sentToday := calendar.IsToday(sendLimit.LastSent, now)
	count := 0
	if sentToday {
		count = sendLimit.Count
	}
	if count >= s.limit {
		return nil, errors.NewLimitReachedError(s.limit)
	}

	newCount := count + 1
	if err := s.sendLimits.Save(ctx, senderKey, newCount, now); err != nil {
		return nil, errors.NewStoreError("save send limit", err)
	}

	if err := s.receipts.Prepend(ctx, recipientKey, types.Receipt{Sender: senderKey, Timestamp: now}); err != nil {
		return nil, errors.NewStoreError("append receipt", err)
	}

	base := 1
	if recipientStreak.HasStreak {
		base = recipientStreak.Streak
	}
	boosted := base + 1

	if err := s.streaks.SetStreak(ctx, recipientKey, boosted); err != nil {
		return nil, errors.NewStoreError("boost recipient streak", err)
	}
	if err := s.leaderboard.Upsert(ctx, recipientKey, boosted, staleSpelling(recipient, recipientKey)...); err != nil {
		return nil, errors.NewStoreError("update leaderboard", err)
	}

	s.notifier.Notify(recipientKey, "You received BM!", "Someone sent you BM. Check your notifications!")

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"sender":          senderKey,
		"recipient":       recipientKey,
		"recipientStreak": boosted,
		"count":           newCount,
	}).Info("BM sent")

	return &SendResult{
		Sent:            true,
		LimitReached:    newCount >= s.limit,
		RecipientStreak: boosted,
	}, nil
}

func sendOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.SendSent
	case errors.HasCode(err, errors.CodeInvalidInput):
		return metrics.SendInvalidInput
	case errors.HasCode(err, errors.CodeSenderNotEligible):
		return metrics.SendSenderNotEligible
	case errors.HasCode(err, errors.CodeRecipientNotEligible):
		return metrics.SendRecipientNotEligible
	case errors.HasCode(err, errors.CodeLimitReached):
		return metrics.SendLimitReached
	default:
		return metrics.SendError
	}
}
