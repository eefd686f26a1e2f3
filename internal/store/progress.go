package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/lesson"
)

// ProgressRepo commits answers for one learner. It implements
// lesson.ProgressStore.
type ProgressRepo struct {
	s      *Store
	userID string
}

var _ lesson.ProgressStore = (*ProgressRepo)(nil)

// ProgressRepo returns the commit repository for userID.
func (s *Store) ProgressRepo(userID string) *ProgressRepo {
	return &ProgressRepo{s: s, userID: userID}
}

// CommitCorrect records a correct answer.
//
// A challenge the learner already completed is practice: it needs a heart
// (unless subscribed), restores one heart up to the cap and awards points.
// A first completion inserts the progress row and awards points.
func (r *ProgressRepo) CommitCorrect(ctx context.Context, challengeID int) error {
	s := r.s
	return s.tx(ctx, func(q querier) error {
		practice, err := r.completed(ctx, q, challengeID)
		if err != nil {
			return err
		}
		up, err := s.loadUser(ctx, q, r.userID)
		if err != nil {
			return err
		}

		if practice {
			if up.Hearts == 0 && !up.SubscriptionActive {
				return lesson.ErrHeartsExhausted
			}
			return s.updateUser(ctx, q, r.userID, func(u *entsql.UpdateBuilder) {
				u.Set("hearts", min(up.Hearts+1, lesson.MaxHearts)).
					Add("points", lesson.PointsPerChallenge)
			})
		}

		ins := s.sql().Insert(ChallengeProgressTable.Name).
			Columns("user_id", "challenge_id", "completed").
			Values(r.userID, challengeID, true).
			OnConflict(
				entsql.ConflictColumns("user_id", "challenge_id"),
				entsql.ResolveWithNewValues(),
			)
		if err := exec(ctx, q, ins); err != nil {
			return fmt.Errorf("insert challenge progress: %w", err)
		}
		return s.updateUser(ctx, q, r.userID, func(u *entsql.UpdateBuilder) {
			u.Add("points", lesson.PointsPerChallenge)
		})
	})
}

// CommitIncorrect records a wrong answer and takes a heart. Practice and
// subscribers keep their hearts; the returned *lesson.PenaltyWaivedError
// says which.
func (r *ProgressRepo) CommitIncorrect(ctx context.Context, challengeID int) error {
	s := r.s
	return s.tx(ctx, func(q querier) error {
		practice, err := r.completed(ctx, q, challengeID)
		if err != nil {
			return err
		}
		if practice {
			return &lesson.PenaltyWaivedError{Reason: lesson.WaivedPractice}
		}

		up, err := s.loadUser(ctx, q, r.userID)
		if err != nil {
			return err
		}
		if up.SubscriptionActive {
			return &lesson.PenaltyWaivedError{Reason: lesson.WaivedSubscription}
		}
		if up.Hearts == 0 {
			return lesson.ErrHeartsExhausted
		}
		return s.updateUser(ctx, q, r.userID, func(u *entsql.UpdateBuilder) {
			u.Set("hearts", max(up.Hearts-1, 0))
		})
	})
}

// completed reports whether the learner already completed challengeID. It
// returns ErrNotFound for an unknown challenge.
func (r *ProgressRepo) completed(ctx context.Context, q querier, challengeID int) (bool, error) {
	s := r.s
	var id int
	err := queryRow(ctx, q, s.sql().Select("id").
		From(s.sql().Table(ChallengesTable.Name)).
		Where(entsql.EQ("id", challengeID))).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("challenge %d: %w", challengeID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("query challenge: %w", err)
	}

	var done bool
	err = queryRow(ctx, q, s.sql().Select("completed").
		From(s.sql().Table(ChallengeProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", r.userID),
			entsql.EQ("challenge_id", challengeID),
		))).Scan(&done)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query challenge progress: %w", err)
	}
	return done, nil
}
