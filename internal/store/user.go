package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/lesson"
)

// RefillCost is the number of points a full heart refill costs.
const RefillCost = 10

// UserProgress is a learner's resources and active course.
type UserProgress struct {
	UserID             string
	ActiveCourseID     int // 0 when no course is selected
	Hearts             int
	Points             int
	SubscriptionActive bool
	UpdatedAt          time.Time
}

// ensureUser creates userID's progress row with default resources if it
// does not exist yet.
func (s *Store) ensureUser(ctx context.Context, q querier, userID string) error {
	ins := s.sql().Insert(UserProgressTable.Name).
		Columns("user_id", "hearts", "points", "subscription_active", "updated_at").
		Values(userID, lesson.MaxHearts, 0, false, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing())
	if err := exec(ctx, q, ins); err != nil {
		return fmt.Errorf("ensure user progress: %w", err)
	}
	return nil
}

func (s *Store) loadUser(ctx context.Context, q querier, userID string) (*UserProgress, error) {
	if err := s.ensureUser(ctx, q, userID); err != nil {
		return nil, err
	}
	var (
		up     = UserProgress{UserID: userID}
		active sql.NullInt64
	)
	err := queryRow(ctx, q, s.sql().Select("hearts", "points", "subscription_active", "updated_at", "active_course_id").
		From(s.sql().Table(UserProgressTable.Name)).
		Where(entsql.EQ("user_id", userID))).
		Scan(&up.Hearts, &up.Points, &up.SubscriptionActive, &up.UpdatedAt, &active)
	if err != nil {
		return nil, fmt.Errorf("query user progress: %w", err)
	}
	if active.Valid {
		up.ActiveCourseID = int(active.Int64)
	}
	return &up, nil
}

func (s *Store) updateUser(ctx context.Context, q querier, userID string, set func(u *entsql.UpdateBuilder)) error {
	upd := s.sql().Update(UserProgressTable.Name).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("user_id", userID))
	set(upd)
	if err := exec(ctx, q, upd); err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	return nil
}

// UserProgress returns userID's resources, creating the default row on
// first use.
func (s *Store) UserProgress(ctx context.Context, userID string) (*UserProgress, error) {
	return s.loadUser(ctx, s.db, userID)
}

// SelectCourse makes courseID the learner's active course.
func (s *Store) SelectCourse(ctx context.Context, userID string, courseID int) error {
	if _, err := s.Course(ctx, courseID); err != nil {
		return err
	}
	return s.tx(ctx, func(q querier) error {
		if err := s.ensureUser(ctx, q, userID); err != nil {
			return err
		}
		return s.updateUser(ctx, q, userID, func(u *entsql.UpdateBuilder) {
			u.Set("active_course_id", courseID)
		})
	})
}

// RefillHearts restores hearts to the cap for RefillCost points.
func (s *Store) RefillHearts(ctx context.Context, userID string) (*UserProgress, error) {
	var out *UserProgress
	err := s.tx(ctx, func(q querier) error {
		up, err := s.loadUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if up.Hearts >= lesson.MaxHearts {
			return ErrHeartsFull
		}
		if up.Points < RefillCost {
			return ErrNotEnoughPoints
		}
		if err := s.updateUser(ctx, q, userID, func(u *entsql.UpdateBuilder) {
			u.Set("hearts", lesson.MaxHearts).Add("points", -RefillCost)
		}); err != nil {
			return err
		}
		up.Hearts = lesson.MaxHearts
		up.Points -= RefillCost
		out = up
		return nil
	})
	return out, err
}

// SetSubscription turns the unlimited-hearts subscription on or off.
func (s *Store) SetSubscription(ctx context.Context, userID string, active bool) error {
	return s.tx(ctx, func(q querier) error {
		if err := s.ensureUser(ctx, q, userID); err != nil {
			return err
		}
		return s.updateUser(ctx, q, userID, func(u *entsql.UpdateBuilder) {
			u.Set("subscription_active", active)
		})
	})
}

// ResetHearts restores hearts to the cap at no cost.
func (s *Store) ResetHearts(ctx context.Context, userID string) error {
	return s.tx(ctx, func(q querier) error {
		if err := s.ensureUser(ctx, q, userID); err != nil {
			return err
		}
		return s.updateUser(ctx, q, userID, func(u *entsql.UpdateBuilder) {
			u.Set("hearts", lesson.MaxHearts)
		})
	})
}

// Reset deletes userID's challenge progress and restores default hearts and
// points. The active course and subscription are kept. Events are
// append-only and survive.
func (s *Store) Reset(ctx context.Context, userID string) error {
	return s.tx(ctx, func(q querier) error {
		if err := exec(ctx, q, s.sql().Delete(ChallengeProgressTable.Name).
			Where(entsql.EQ("user_id", userID))); err != nil {
			return fmt.Errorf("delete challenge progress: %w", err)
		}
		if err := s.ensureUser(ctx, q, userID); err != nil {
			return err
		}
		return s.updateUser(ctx, q, userID, func(u *entsql.UpdateBuilder) {
			u.Set("hearts", lesson.MaxHearts).Set("points", 0)
		})
	})
}

// LessonPayload loads everything a lesson session needs for userID. A
// lessonID of 0 resolves to the active lesson of the user's active course.
func (s *Store) LessonPayload(ctx context.Context, userID string, lessonID int) (lesson.Payload, error) {
	up, err := s.UserProgress(ctx, userID)
	if err != nil {
		return lesson.Payload{}, err
	}
	if lessonID == 0 {
		if up.ActiveCourseID == 0 {
			return lesson.Payload{}, fmt.Errorf("no active course: %w", ErrNotFound)
		}
		if lessonID, err = s.ActiveLesson(ctx, userID, up.ActiveCourseID); err != nil {
			return lesson.Payload{}, err
		}
	}

	challenges, err := s.lessonChallenges(ctx, userID, lessonID)
	if err != nil {
		return lesson.Payload{}, err
	}

	done := 0
	for _, c := range challenges {
		if c.Completed {
			done++
		}
	}
	pct := 0.0
	if len(challenges) > 0 {
		pct = float64(done) / float64(len(challenges)) * 100
	}

	return lesson.Payload{
		LessonID:              lessonID,
		Challenges:            challenges,
		InitialHearts:         up.Hearts,
		InitialPercentage:     pct,
		HasActiveSubscription: up.SubscriptionActive,
	}, nil
}

// LessonTitle returns the title of a lesson, or ErrNotFound.
func (s *Store) LessonTitle(ctx context.Context, lessonID int) (string, error) {
	var title string
	err := queryRow(ctx, s.db, s.sql().Select("title").
		From(s.sql().Table(LessonsTable.Name)).
		Where(entsql.EQ("id", lessonID))).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lesson %d: %w", lessonID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query lesson: %w", err)
	}
	return title, nil
}

func (s *Store) lessonChallenges(ctx context.Context, userID string, lessonID int) ([]lesson.Challenge, error) {
	if _, err := s.LessonTitle(ctx, lessonID); err != nil {
		return nil, err
	}

	b := s.sql()
	c := b.Table(ChallengesTable.Name).As("c")
	o := b.Table(ChallengeOptionsTable.Name).As("o")
	p := b.Table(ChallengeProgressTable.Name).As("p")

	mine := entsql.And(
		entsql.ColumnsEQ(p.C("challenge_id"), c.C("id")),
		entsql.EQ(p.C("user_id"), userID),
	)
	sel := b.Select(c.C("id"), c.C("type"), c.C("question"), p.C("completed"), o.C("id"), o.C("text"), o.C("correct")).
		From(c).
		LeftJoin(o).On(o.C("challenge_id"), c.C("id")).
		LeftJoin(p).OnP(mine).
		Where(entsql.EQ(c.C("lesson_id"), lessonID)).
		OrderBy(c.C("position"), o.C("position"))

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()

	var out []lesson.Challenge
	for rows.Next() {
		var (
			id            int
			typ, question string
			completed     sql.NullBool
			optID         sql.NullInt64
			optText       sql.NullString
			optCorrect    sql.NullBool
		)
		if err := rows.Scan(&id, &typ, &question, &completed, &optID, &optText, &optCorrect); err != nil {
			return nil, fmt.Errorf("scan challenge row: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			ct, _ := lesson.ParseChallengeType(typ)
			out = append(out, lesson.Challenge{
				ID:        id,
				Type:      ct,
				Question:  question,
				Completed: completed.Valid && completed.Bool,
			})
		}
		if optID.Valid {
			ch := &out[len(out)-1]
			ch.Options = append(ch.Options, lesson.Option{
				ID:      int(optID.Int64),
				Text:    optText.String,
				Correct: optCorrect.Valid && optCorrect.Bool,
			})
		}
	}
	return out, rows.Err()
}
