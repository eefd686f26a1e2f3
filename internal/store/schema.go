package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table declarations in the layout ent's code generator emits. Tables are
// created and upgraded by ent's migrator on Open.

var (
	// CoursesColumns holds the columns for the "courses" table.
	CoursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString, Unique: true},
		{Name: "image_src", Type: field.TypeString, Default: ""},
	}
	// CoursesTable holds the schema information for the "courses" table.
	CoursesTable = &schema.Table{
		Name:       "courses",
		Columns:    CoursesColumns,
		PrimaryKey: []*schema.Column{CoursesColumns[0]},
	}

	UnitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "position", Type: field.TypeInt},
		{Name: "course_id", Type: field.TypeInt},
	}
	UnitsTable = &schema.Table{
		Name:       "units",
		Columns:    UnitsColumns,
		PrimaryKey: []*schema.Column{UnitsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "units_courses_units",
				Columns:    []*schema.Column{UnitsColumns[4]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "unit_course_id_position", Columns: []*schema.Column{UnitsColumns[4], UnitsColumns[3]}},
		},
	}

	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "unit_id", Type: field.TypeInt},
	}
	LessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lessons_units_lessons",
				Columns:    []*schema.Column{LessonsColumns[3]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "lesson_unit_id_position", Columns: []*schema.Column{LessonsColumns[3], LessonsColumns[2]}},
		},
	}

	ChallengesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "type", Type: field.TypeString, Size: 16},
		{Name: "question", Type: field.TypeString, Size: 2147483647},
		{Name: "position", Type: field.TypeInt},
		{Name: "lesson_id", Type: field.TypeInt},
	}
	ChallengesTable = &schema.Table{
		Name:       "challenges",
		Columns:    ChallengesColumns,
		PrimaryKey: []*schema.Column{ChallengesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenges_lessons_challenges",
				Columns:    []*schema.Column{ChallengesColumns[4]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "challenge_lesson_id_position", Columns: []*schema.Column{ChallengesColumns[4], ChallengesColumns[3]}},
		},
	}

	ChallengeOptionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "text", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool, Default: false},
		{Name: "image_src", Type: field.TypeString, Default: ""},
		{Name: "audio_src", Type: field.TypeString, Default: ""},
		{Name: "position", Type: field.TypeInt},
		{Name: "challenge_id", Type: field.TypeInt},
	}
	ChallengeOptionsTable = &schema.Table{
		Name:       "challenge_options",
		Columns:    ChallengeOptionsColumns,
		PrimaryKey: []*schema.Column{ChallengeOptionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenge_options_challenges_options",
				Columns:    []*schema.Column{ChallengeOptionsColumns[6]},
				RefColumns: []*schema.Column{ChallengesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "challengeoption_challenge_id", Columns: []*schema.Column{ChallengeOptionsColumns[6]}},
		},
	}

	ChallengeProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "challenge_id", Type: field.TypeInt},
	}
	ChallengeProgressTable = &schema.Table{
		Name:       "challenge_progress",
		Columns:    ChallengeProgressColumns,
		PrimaryKey: []*schema.Column{ChallengeProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenge_progress_challenges_progress",
				Columns:    []*schema.Column{ChallengeProgressColumns[3]},
				RefColumns: []*schema.Column{ChallengesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "challengeprogress_user_id_challenge_id", Unique: true, Columns: []*schema.Column{ChallengeProgressColumns[1], ChallengeProgressColumns[3]}},
		},
	}

	UserProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "hearts", Type: field.TypeInt, Default: 5},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "subscription_active", Type: field.TypeBool, Default: false},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "active_course_id", Type: field.TypeInt, Nullable: true},
	}
	UserProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    UserProgressColumns,
		PrimaryKey: []*schema.Column{UserProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_courses_active",
				Columns:    []*schema.Column{UserProgressColumns[5]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	AnswerEventsColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeString, Size: 64},
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "lesson_id", Type: field.TypeInt},
		&schema.Column{Name: "challenge_id", Type: field.TypeInt},
		&schema.Column{Name: "option_id", Type: field.TypeInt},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "outcome", Type: field.TypeString, Size: 16},
	)
	AnswerEventsTable = eventTable("answer_events", AnswerEventsColumns)

	SessionEventsColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeString, Size: 64},
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "lesson_id", Type: field.TypeInt},
		&schema.Column{Name: "action", Type: field.TypeString, Size: 16},
		&schema.Column{Name: "challenges_total", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "challenges_correct", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "wrong_answers", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "hearts_left", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	)
	SessionEventsTable = eventTable("session_events", SessionEventsColumns)

	LLMRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	LLMRequestEventsTable = eventTable("llm_request_events", LLMRequestEventsColumns)

	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CoursesTable,
		UnitsTable,
		LessonsTable,
		ChallengesTable,
		ChallengeOptionsTable,
		ChallengeProgressTable,
		UserProgressTable,
		AnswerEventsTable,
		SessionEventsTable,
		LLMRequestEventsTable,
		GlobalSequenceTable,
	}
)

func init() {
	UnitsTable.ForeignKeys[0].RefTable = CoursesTable
	LessonsTable.ForeignKeys[0].RefTable = UnitsTable
	ChallengesTable.ForeignKeys[0].RefTable = LessonsTable
	ChallengeOptionsTable.ForeignKeys[0].RefTable = ChallengesTable
	ChallengeProgressTable.ForeignKeys[0].RefTable = ChallengesTable
	UserProgressTable.ForeignKeys[0].RefTable = CoursesTable
}

// eventColumns prefixes the columns every append-only event table shares:
// an auto id, the global sequence number and a UTC timestamp.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, cols...)
}

func eventTable(name string, cols []*schema.Column) *schema.Table {
	return &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: name + "_timestamp", Columns: []*schema.Column{cols[2]}},
		},
	}
}
