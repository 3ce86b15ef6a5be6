package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/talentpool/internal/models"
)

const (
	DefaultParseStream = "resume:parse"
	DefaultParseGroup  = "resume-parsers"
)

// ResumeParser is the part of the screening pipeline the workers drive.
type ResumeParser interface {
	ParseResume(ctx context.Context, resumeID string) (*models.Resume, error)
}

// StreamClient is the slice of the Redis API the pool consumes with.
// redis.UniversalClient satisfies it.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// StatusChannel is the pub/sub channel parse outcomes for a résumé go to.
func StatusChannel(resumeID string) string {
	return "resume:" + resumeID + ":status"
}

// ParseQueue publishes parse jobs onto the stream consumed by ParseWorkerPool.
type ParseQueue struct {
	Redis  redis.UniversalClient
	Stream string
}

func (q *ParseQueue) EnqueueParse(ctx context.Context, resumeID string) error {
	stream := q.Stream
	if stream == "" {
		stream = DefaultParseStream
	}
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"resume_id":   resumeID,
			"enqueued_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
}

type ParseWorkerPool struct {
	Redis      StreamClient
	Parser     ResumeParser
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	wg sync.WaitGroup
}

func (p *ParseWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Parser == nil {
		return errors.New("ParseWorkerPool missing dependency: Redis/Parser must be set")
	}
	p.defaults()

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runConsumer(ctx, consumer)
		}()
	}
	return nil
}

// Wait blocks until every consumer has returned after ctx is cancelled.
func (p *ParseWorkerPool) Wait() { p.wg.Wait() }

func (p *ParseWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = DefaultParseStream
	}
	if p.Group == "" {
		p.Group = DefaultParseGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *ParseWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("parse stream read failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *ParseWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	resumeID, _ := msg.Values["resume_id"].(string)
	if resumeID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":  msg.ID,
		"resume_id": resumeID,
	})

	start := time.Now()
	r, err := p.Parser.ParseResume(ctx, resumeID)
	if err != nil {
		log.WithError(err).Warn("resume parse failed")
		p.publish(ctx, resumeID, models.ParseFailed, err.Error())
		return
	}

	log.WithFields(logrus.Fields{
		"skills":     len(r.Skills),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("resume parsed")
	p.publish(ctx, resumeID, r.ParseStatus, "")
}

// publish announces a parse outcome on StatusChannel for listeners.
func (p *ParseWorkerPool) publish(ctx context.Context, resumeID string, status models.ParseStatus, message string) {
	if p.Redis == nil {
		return
	}
	payload, _ := json.Marshal(models.ResumeStatusEvent{
		Type:     "status",
		ResumeID: resumeID,
		Status:   status,
		Message:  message,
	})
	if err := p.Redis.Publish(ctx, StatusChannel(resumeID), string(payload)).Err(); err != nil {
		p.Logger.WithError(err).WithField("resume_id", resumeID).Warn("parse status publish failed")
	}
}
