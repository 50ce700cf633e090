package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/engine"
	"github.com/mindwell/wellness-api/internal/models"
	"github.com/mindwell/wellness-api/internal/queue"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"go.uber.org/zap"
)

// UserAnalyzer runs the recommendation pipeline for individual users and
// processes analysis jobs from the queue.
type UserAnalyzer struct {
	engine         *engine.Engine
	trackingRepo   database.TrackingRepositoryInterface
	recRepo        database.RecommendationRepositoryInterface
	chatRepo       database.ChatRepositoryInterface
	promptProvider ai.PromptProvider
	jobQueue       queue.JobQueue // For re-enqueueing jobs with delays
	frontendURL    string
	ttl            time.Duration
	logger         *zap.Logger
}

// NewUserAnalyzer creates a new user analyzer
func NewUserAnalyzer(
	eng *engine.Engine,
	trackingRepo database.TrackingRepositoryInterface,
	recRepo database.RecommendationRepositoryInterface,
	chatRepo database.ChatRepositoryInterface,
	promptProvider ai.PromptProvider,
	jobQueue queue.JobQueue,
	frontendURL string,
	ttl time.Duration,
	logger *zap.Logger,
) *UserAnalyzer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UserAnalyzer{
		engine:         eng,
		trackingRepo:   trackingRepo,
		recRepo:        recRepo,
		chatRepo:       chatRepo,
		promptProvider: promptProvider,
		jobQueue:       jobQueue,
		frontendURL:    frontendURL,
		ttl:            ttl,
		logger:         logger,
	}
}

// AnalyzeUser runs the full pipeline for one user and upserts a stored
// recommendation when the engine decides to recommend. A negative decision is
// not an error.
func (a *UserAnalyzer) AnalyzeUser(ctx context.Context, email string) error {
	doc, err := a.trackingRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load tracking document: %w", err)
	}
	if doc == nil {
		return nil
	}

	now := time.Now()
	result := a.engine.Analyze(doc, now)
	if !result.ShouldRecommend {
		a.logger.Debug("analysis_no_recommendation",
			zap.String("email_hash", ai.HashEmail(email)),
			zap.Float64("confidence", result.Confidence),
		)
		return nil
	}

	payload := a.buildPayload(result, now)

	// Personalize the message from recent chat history. The provider degrades
	// to a canned message on any generation failure.
	if a.promptProvider != nil && a.chatRepo != nil {
		history, histErr := a.chatRepo.RecentByEmail(ctx, email, ai.MaxSentimentEntries)
		if histErr != nil {
			a.logger.Warn("chat_history_unavailable",
				zap.String("email_hash", ai.HashEmail(email)),
				zap.Error(histErr),
			)
		} else if followUp, genErr := a.promptProvider.SynthesizeFollowUp(ctx, &payload, history); genErr == nil && followUp != "" {
			payload.Message = followUp
		}
	}

	rec := &models.StoredRecommendation{
		Email:       email,
		Payload:     payload,
		GeneratedAt: now,
		ExpiresAt:   now.Add(a.ttl),
	}

	if err := a.recRepo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to store recommendation: %w", err)
	}

	a.logger.Info("recommendation_stored",
		zap.String("email_hash", ai.HashEmail(email)),
		zap.String("page", result.Page),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("score", result.Score),
	)
	return nil
}

func (a *UserAnalyzer) buildPayload(result engine.RecommendationResult, now time.Time) models.RecommendationPayload {
	message := result.Message
	if message == "" {
		message = fmt.Sprintf("Based on your usage patterns, we recommend revisiting %s", engine.DisplayName(result.Page))
	}
	return models.RecommendationPayload{
		Page:            result.Page,
		PageDisplayName: engine.DisplayName(result.Page),
		FrontendURL:     a.frontendURL + result.Page,
		Message:         message,
		Features:        engine.Features(result.Page),
		Confidence:      result.Confidence,
		Score:           result.Score,
		TotalTime:       result.TotalTime,
		VisitCount:      result.VisitCount,
		Category:        string(result.Category),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
	}
}

// ProcessExpirySweep purges expired stored recommendations
func (a *UserAnalyzer) ProcessExpirySweep(ctx context.Context) error {
	count, err := a.recRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge expired recommendations: %w", err)
	}
	if count > 0 {
		a.logger.Info("expired_recommendations_purged", zap.Int64("count", count))
	}
	return nil
}

// ProcessJob processes a queued job based on its type
func (a *UserAnalyzer) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	if !job.ShouldProcess() {
		// Not ready yet, requeue and move on.
		if nackErr := msg.Nack(true); nackErr != nil {
			a.logger.Warn("job_requeue_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeUserAnalysis:
		if err := a.AnalyzeUser(ctx, job.Email); err != nil {
			return a.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeExpirySweep:
		if err := a.ProcessExpirySweep(ctx); err != nil {
			// Sweeps rerun every tick, no point retrying a failed one.
			if nackErr := msg.Nack(false); nackErr != nil {
				a.logger.Warn("sweep_nack_failed", zap.Error(nackErr))
			}
			return fmt.Errorf("expiry sweep failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack sweep job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			a.logger.Warn("unknown_job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError applies retry policy to a failed analysis job. Rate limit and
// quota errors are re-enqueued with a delay instead of hammering the queue.
func (a *UserAnalyzer) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && a.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := &queue.Job{
				ID:         job.ID,
				Type:       job.Type,
				Email:      job.Email,
				NotBefore:  &notBefore,
				NotAfter:   job.NotAfter,
				Metadata:   job.Metadata,
				CreatedAt:  job.CreatedAt,
				RetryCount: job.RetryCount + 1,
				MaxRetries: job.MaxRetries,
			}

			if ackErr := msg.Ack(); ackErr != nil {
				a.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}

			if enqueueErr := a.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("failed to re-enqueue throttled job: %w", enqueueErr)
			}

			a.logger.Info("job_delayed_retry",
				zap.String("job_id", job.ID.String()),
				zap.Time("not_before", notBefore),
				zap.Duration("delay", retryDelay),
			)
			return nil
		}

		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("throttled job %s exhausted retries: %w", job.ID, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		a.logger.Warn("job_retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			a.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ.
	a.logger.Error("job_failed_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		a.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
