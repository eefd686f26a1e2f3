package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Session event actions.
const (
	SessionStart = "start"
	SessionEnd   = "end"
	SessionQuit  = "quit"
)

// AnswerEventData captures one confirmed answer.
type AnswerEventData struct {
	UserID      string
	SessionID   string
	LessonID    int
	ChallengeID int
	OptionID    int
	Correct     bool
	Outcome     string
}

// SessionEventData captures a lesson session starting or ending.
type SessionEventData struct {
	UserID            string
	SessionID         string
	LessonID          int
	Action            string
	ChallengesTotal   int
	ChallengesCorrect int
	WrongAnswers      int
	HeartsLeft        int
	DurationSecs      int
}

// SessionRecord is a stored session end or quit event.
type SessionRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// eventRepo implements EventRepo backed by the global sequence counter.
type eventRepo struct {
	s *Store
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{s: s}
}

// appendEvent stamps the next sequence number and timestamp onto an insert
// and runs both in one transaction.
func (r *eventRepo) appendEvent(ctx context.Context, table string, cols []string, vals []any) error {
	s := r.s
	return s.tx(ctx, func(q querier) error {
		seq, err := s.seq.Next(ctx, q)
		if err != nil {
			return err
		}
		ins := s.sql().Insert(table).
			Columns(append([]string{"sequence", "timestamp"}, cols...)...).
			Values(append([]any{seq, time.Now().UTC()}, vals...)...)
		if err := exec(ctx, q, ins); err != nil {
			return fmt.Errorf("save %s: %w", table, err)
		}
		return nil
	})
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, d AnswerEventData) error {
	return r.appendEvent(ctx, AnswerEventsTable.Name,
		[]string{"user_id", "session_id", "lesson_id", "challenge_id", "option_id", "correct", "outcome"},
		[]any{d.UserID, d.SessionID, d.LessonID, d.ChallengeID, d.OptionID, d.Correct, d.Outcome},
	)
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, d SessionEventData) error {
	return r.appendEvent(ctx, SessionEventsTable.Name,
		[]string{"user_id", "session_id", "lesson_id", "action", "challenges_total", "challenges_correct", "wrong_answers", "hearts_left", "duration_secs"},
		[]any{d.UserID, d.SessionID, d.LessonID, d.Action, d.ChallengesTotal, d.ChallengesCorrect, d.WrongAnswers, d.HeartsLeft, d.DurationSecs},
	)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, d LLMRequestEventData) error {
	return r.appendEvent(ctx, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		[]any{d.Provider, d.Model, d.Purpose, d.InputTokens, d.OutputTokens, d.LatencyMs, d.Success, d.ErrorMessage},
	)
}

// RecentSessions returns userID's most recent finished or abandoned
// sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	sel := s.sql().Select("sequence", "timestamp", "session_id", "lesson_id", "action",
		"challenges_total", "challenges_correct", "wrong_answers", "hearts_left", "duration_secs").
		From(s.sql().Table(SessionEventsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.NEQ("action", SessionStart),
		)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec := SessionRecord{SessionEventData: SessionEventData{UserID: userID}}
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.LessonID, &rec.Action,
			&rec.ChallengesTotal, &rec.ChallengesCorrect, &rec.WrongAnswers, &rec.HeartsLeft, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AnswerStats counts userID's confirmed answers and how many were correct.
func (s *Store) AnswerStats(ctx context.Context, userID string) (total, correct int, err error) {
	rows, err := query(ctx, s.db, s.sql().Select("correct", entsql.Count("*")).
		From(s.sql().Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("correct"))
	if err != nil {
		return 0, 0, fmt.Errorf("query answer stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ok bool
			n  int
		)
		if err := rows.Scan(&ok, &n); err != nil {
			return 0, 0, fmt.Errorf("scan answer stats: %w", err)
		}
		total += n
		if ok {
			correct += n
		}
	}
	return total, correct, rows.Err()
}

// CompletedChallenges counts the challenges userID has completed.
func (s *Store) CompletedChallenges(ctx context.Context, userID string) (int, error) {
	var n int
	err := queryRow(ctx, s.db, s.sql().Select(entsql.Count("*")).
		From(s.sql().Table(ChallengeProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("completed", true),
		))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed challenges: %w", err)
	}
	return n, nil
}

// LLMUsage aggregates recorded LLM requests for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMUsageByPurpose sums LLM request events per purpose, ordered by purpose.
func (s *Store) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	rows, err := query(ctx, s.db, s.sql().Select(
		"purpose",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Sum("latency_ms"),
		"success",
	).
		From(s.sql().Table(LLMRequestEventsTable.Name)).
		GroupBy("purpose", "success").
		OrderBy("purpose"))
	if err != nil {
		return nil, fmt.Errorf("query llm usage: %w", err)
	}
	defer rows.Close()

	var (
		out     []LLMUsage
		latency []int64
	)
	for rows.Next() {
		var (
			purpose         string
			n               int
			in, outTok, lat int64
			ok              bool
		)
		if err := rows.Scan(&purpose, &n, &in, &outTok, &lat, &ok); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Purpose != purpose {
			out = append(out, LLMUsage{Purpose: purpose})
			latency = append(latency, 0)
		}
		u := &out[len(out)-1]
		u.Calls += n
		if !ok {
			u.Failures += n
		}
		u.InputTokens += int(in)
		u.OutputTokens += int(outTok)
		latency[len(latency)-1] += lat
	}
	for i := range out {
		if out[i].Calls > 0 {
			out[i].AvgLatencyMs = latency[i] / int64(out[i].Calls)
		}
	}
	return out, rows.Err()
}
