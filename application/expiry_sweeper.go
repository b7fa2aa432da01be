package application

import (
	"context"
	"fmt"

	"predictor/events"
	"predictor/models"
	"predictor/service"

	log "github.com/sirupsen/logrus"
)

// SweepReport counts what one sweep did
type SweepReport struct {
	Total               int
	WithResolveControls int
	VotingOnly          int
	Failed              int
}

// ExpirySweeper re-renders questions whose deadline passed while the bot was offline
type ExpirySweeper struct {
	uowFactory service.UnitOfWorkFactory
	announcer  ExpiredAnnouncer
	members    MemberChecker
	emitter    EventEmitter
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(uowFactory service.UnitOfWorkFactory, announcer ExpiredAnnouncer, members MemberChecker, emitter EventEmitter) *ExpirySweeper {
	return &ExpirySweeper{
		uowFactory: uowFactory,
		announcer:  announcer,
		members:    members,
		emitter:    emitter,
	}
}

// Sweep handles every expired unresolved question. A failure on one question is
// logged and counted, the rest are still processed.
func (s *ExpirySweeper) Sweep(ctx context.Context) SweepReport {
	var report SweepReport

	questions, err := s.listExpired(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list expired questions")
		s.emit(ctx, report)
		return report
	}

	report.Total = len(questions)
	for _, q := range questions {
		withControls, err := s.sweepOne(ctx, q)
		switch {
		case err != nil:
			report.Failed++
			log.WithFields(log.Fields{
				"questionID": q.ID,
				"creatorID":  q.CreatedBy,
			}).WithError(err).Error("Failed to update expired question")
		case withControls:
			report.WithResolveControls++
		default:
			report.VotingOnly++
		}
	}

	log.WithFields(log.Fields{
		"total":               report.Total,
		"withResolveControls": report.WithResolveControls,
		"votingOnly":          report.VotingOnly,
		"failed":              report.Failed,
	}).Info("Expiry sweep finished")

	s.emit(ctx, report)
	return report
}

func (s *ExpirySweeper) listExpired(ctx context.Context) ([]*models.Question, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	questionService := service.NewQuestionService(uow.QuestionRepository(), uow.EventBus())
	return questionService.ListExpiredUnresolved(ctx)
}

func (s *ExpirySweeper) sweepOne(ctx context.Context, q *models.Question) (bool, error) {
	if !q.HasMessageRef() {
		return false, fmt.Errorf("question %s has no announcement message", q.ID)
	}

	// Only a creator still in the guild can press the resolve buttons
	withControls, err := s.members.IsMember(ctx, q.CreatedBy)
	if err != nil {
		log.WithFields(log.Fields{
			"questionID": q.ID,
			"creatorID":  q.CreatedBy,
		}).WithError(err).Warn("Could not check creator membership, treating as unreachable")
		withControls = false
	}

	if err := s.announcer.AnnounceExpired(ctx, q, withControls); err != nil {
		return false, err
	}
	return withControls, nil
}

func (s *ExpirySweeper) emit(ctx context.Context, report SweepReport) {
	s.emitter.Emit(ctx, events.ExpirySweepCompletedEvent{
		Total:             report.Total,
		WithResolveButton: report.WithResolveControls,
		VotingOnly:        report.VotingOnly,
		Failed:            report.Failed,
	})
}
