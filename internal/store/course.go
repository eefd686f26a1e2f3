package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/catalog"
)

// Course is a stored course header.
type Course struct {
	ID       int
	Title    string
	ImageSrc string
}

// Unit is a unit with its lessons and this user's completion.
type Unit struct {
	ID          int
	Title       string
	Description string
	Lessons     []LessonInfo
}

// LessonInfo summarizes a lesson for the course map.
type LessonInfo struct {
	ID        int
	Title     string
	Total     int
	Completed int
}

// Done reports whether every challenge in the lesson is completed.
func (l LessonInfo) Done() bool {
	return l.Total > 0 && l.Completed >= l.Total
}

// ImportCourse stores c, replacing the content of any course with the same
// title. Replacing a course drops its challenge progress.
func (s *Store) ImportCourse(ctx context.Context, c *catalog.Course) (int, error) {
	if err := catalog.Validate(c); err != nil {
		return 0, err
	}

	var courseID int
	err := s.tx(ctx, func(q querier) error {
		sel := s.sql().Select("id").From(s.sql().Table(CoursesTable.Name)).Where(entsql.EQ("title", c.Title))
		err := queryRow(ctx, q, sel).Scan(&courseID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			courseID, err = insertID(ctx, q, s.sql().Insert(CoursesTable.Name).
				Columns("title", "image_src").
				Values(c.Title, c.ImageSrc))
			if err != nil {
				return fmt.Errorf("insert course: %w", err)
			}
		case err != nil:
			return fmt.Errorf("lookup course: %w", err)
		default:
			if err := exec(ctx, q, s.sql().Update(CoursesTable.Name).
				Set("image_src", c.ImageSrc).
				Where(entsql.EQ("id", courseID))); err != nil {
				return fmt.Errorf("update course: %w", err)
			}
			if err := exec(ctx, q, s.sql().Delete(UnitsTable.Name).
				Where(entsql.EQ("course_id", courseID))); err != nil {
				return fmt.Errorf("clear units: %w", err)
			}
		}
		return s.insertUnits(ctx, q, courseID, c.Units)
	})
	if err != nil {
		return 0, err
	}
	return courseID, nil
}

func (s *Store) insertUnits(ctx context.Context, q querier, courseID int, units []catalog.Unit) error {
	for ui, u := range units {
		unitID, err := insertID(ctx, q, s.sql().Insert(UnitsTable.Name).
			Columns("title", "description", "position", "course_id").
			Values(u.Title, u.Description, ui, courseID))
		if err != nil {
			return fmt.Errorf("insert unit %q: %w", u.Title, err)
		}
		for li, l := range u.Lessons {
			lessonID, err := insertID(ctx, q, s.sql().Insert(LessonsTable.Name).
				Columns("title", "position", "unit_id").
				Values(l.Title, li, unitID))
			if err != nil {
				return fmt.Errorf("insert lesson %q: %w", l.Title, err)
			}
			for ci, ch := range l.Challenges {
				challengeID, err := insertID(ctx, q, s.sql().Insert(ChallengesTable.Name).
					Columns("type", "question", "position", "lesson_id").
					Values(string(ch.ChallengeType()), ch.Question, ci, lessonID))
				if err != nil {
					return fmt.Errorf("insert challenge: %w", err)
				}
				ins := s.sql().Insert(ChallengeOptionsTable.Name).
					Columns("text", "correct", "image_src", "audio_src", "position", "challenge_id")
				for oi, o := range ch.Options {
					ins.Values(o.Text, o.Correct, o.ImageSrc, o.AudioSrc, oi, challengeID)
				}
				if err := exec(ctx, q, ins); err != nil {
					return fmt.Errorf("insert options: %w", err)
				}
			}
		}
	}
	return nil
}

// SeedDefaults imports the built-in courses when the catalog is empty.
// It returns the number of courses imported.
func (s *Store) SeedDefaults(ctx context.Context) (int, error) {
	var n int
	if err := queryRow(ctx, s.db, s.sql().Select(entsql.Count("*")).From(s.sql().Table(CoursesTable.Name))).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	courses, err := catalog.Default()
	if err != nil {
		return 0, err
	}
	for _, c := range courses {
		if _, err := s.ImportCourse(ctx, c); err != nil {
			return 0, fmt.Errorf("seed %q: %w", c.Title, err)
		}
	}
	return len(courses), nil
}

// Courses lists all courses ordered by id.
func (s *Store) Courses(ctx context.Context) ([]Course, error) {
	rows, err := query(ctx, s.db, s.sql().Select("id", "title", "image_src").
		From(s.sql().Table(CoursesTable.Name)).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.ImageSrc); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Course returns one course, or ErrNotFound.
func (s *Store) Course(ctx context.Context, id int) (*Course, error) {
	var c Course
	err := queryRow(ctx, s.db, s.sql().Select("id", "title", "image_src").
		From(s.sql().Table(CoursesTable.Name)).
		Where(entsql.EQ("id", id))).Scan(&c.ID, &c.Title, &c.ImageSrc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	return &c, nil
}

// Units returns the course map: units in order, each with its lessons and
// the number of challenges userID has completed in them.
func (s *Store) Units(ctx context.Context, userID string, courseID int) ([]Unit, error) {
	b := s.sql()
	u := b.Table(UnitsTable.Name).As("u")
	l := b.Table(LessonsTable.Name).As("l")
	c := b.Table(ChallengesTable.Name).As("c")
	p := b.Table(ChallengeProgressTable.Name).As("p")

	mine := entsql.And(
		entsql.ColumnsEQ(p.C("challenge_id"), c.C("id")),
		entsql.EQ(p.C("user_id"), userID),
	)
	sel := b.Select(u.C("id"), u.C("title"), u.C("description"), l.C("id"), l.C("title"), c.C("id"), p.C("completed")).
		From(u).
		Join(l).On(l.C("unit_id"), u.C("id")).
		LeftJoin(c).On(c.C("lesson_id"), l.C("id")).
		LeftJoin(p).OnP(mine).
		Where(entsql.EQ(u.C("course_id"), courseID)).
		OrderBy(u.C("position"), l.C("position"), c.C("position"))

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var (
			unitID, lessonID        int
			unitTitle, desc, lTitle string
			challengeID             sql.NullInt64
			completed               sql.NullBool
		)
		if err := rows.Scan(&unitID, &unitTitle, &desc, &lessonID, &lTitle, &challengeID, &completed); err != nil {
			return nil, fmt.Errorf("scan unit row: %w", err)
		}
		if len(units) == 0 || units[len(units)-1].ID != unitID {
			units = append(units, Unit{ID: unitID, Title: unitTitle, Description: desc})
		}
		unit := &units[len(units)-1]
		if len(unit.Lessons) == 0 || unit.Lessons[len(unit.Lessons)-1].ID != lessonID {
			unit.Lessons = append(unit.Lessons, LessonInfo{ID: lessonID, Title: lTitle})
		}
		info := &unit.Lessons[len(unit.Lessons)-1]
		if challengeID.Valid {
			info.Total++
			if completed.Valid && completed.Bool {
				info.Completed++
			}
		}
	}
	return units, rows.Err()
}

// ActiveLesson returns the first lesson of courseID, in unit then lesson
// order, that userID has not finished. It returns ErrNotFound when every
// lesson is done.
func (s *Store) ActiveLesson(ctx context.Context, userID string, courseID int) (int, error) {
	units, err := s.Units(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	for _, u := range units {
		for _, l := range u.Lessons {
			if !l.Done() {
				return l.ID, nil
			}
		}
	}
	return 0, fmt.Errorf("active lesson for course %d: %w", courseID, ErrNotFound)
}
