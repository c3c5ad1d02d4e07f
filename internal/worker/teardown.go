package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gabriel-reiss/guildtickets/internal/platform"
)

const (
	teardownZSet    = "guildtickets:teardown:due"
	teardownPayload = "guildtickets:teardown:payload"
)

// TeardownWorker deletes ticket channels after the close grace window.
// Pending deletions live in a Redis sorted set scored by due time, so they
// survive process restarts. A member is owned by whichever poller removes
// it first.
type TeardownWorker struct {
	client      *redis.Client
	provisioner platform.Provisioner
	logger      *zap.Logger
	interval    time.Duration
}

type teardownRecord struct {
	ChannelID string `json:"channel_id"`
	Reason    string `json:"reason"`
}

// NewTeardownWorker constructs the worker.
func NewTeardownWorker(client *redis.Client, provisioner platform.Provisioner, logger *zap.Logger) *TeardownWorker {
	return &TeardownWorker{
		client:      client,
		provisioner: provisioner,
		logger:      logger,
		interval:    time.Second,
	}
}

// Schedule queues the channel for deletion at the due time. Scheduling the
// same channel again moves its due time.
func (w *TeardownWorker) Schedule(ctx context.Context, channelID, reason string, due time.Time) error {
	record, err := json.Marshal(teardownRecord{ChannelID: channelID, Reason: reason})
	if err != nil {
		return err
	}
	pipe := w.client.TxPipeline()
	pipe.ZAdd(ctx, teardownZSet, redis.Z{Score: float64(due.UnixMilli()), Member: channelID})
	pipe.HSet(ctx, teardownPayload, channelID, record)
	_, err = pipe.Exec(ctx)
	return err
}

// Cancel removes a pending deletion, if any.
func (w *TeardownWorker) Cancel(ctx context.Context, channelID string) error {
	pipe := w.client.TxPipeline()
	pipe.ZRem(ctx, teardownZSet, channelID)
	pipe.HDel(ctx, teardownPayload, channelID)
	_, err := pipe.Exec(ctx)
	return err
}

// Run polls for due deletions until the context is cancelled.
func (w *TeardownWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TeardownWorker) sweep(ctx context.Context) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	members, err := w.client.ZRangeByScore(ctx, teardownZSet, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		w.logger.Warn("teardown sweep failed", zap.Error(err))
		return
	}
	for _, channelID := range members {
		// Claim the member before acting on it; a zero removal count
		// means another poller got there first.
		removed, err := w.client.ZRem(ctx, teardownZSet, channelID).Result()
		if err != nil {
			w.logger.Warn("teardown claim failed", zap.String("channel_id", channelID), zap.Error(err))
			continue
		}
		if removed == 0 {
			continue
		}
		w.execute(ctx, channelID)
	}
}

func (w *TeardownWorker) execute(ctx context.Context, channelID string) {
	reason := "ticket closed"
	raw, err := w.client.HGet(ctx, teardownPayload, channelID).Result()
	if err == nil {
		var record teardownRecord
		if json.Unmarshal([]byte(raw), &record) == nil && record.Reason != "" {
			reason = record.Reason
		}
	}
	if err := w.client.HDel(ctx, teardownPayload, channelID).Err(); err != nil {
		w.logger.Warn("teardown payload cleanup failed", zap.String("channel_id", channelID), zap.Error(err))
	}

	if err := w.provisioner.DeleteChannel(ctx, channelID, reason); err != nil {
		w.logger.Error("channel teardown failed",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return
	}
	w.logger.Info("channel removed", zap.String("channel_id", channelID))
}
