package database

import (
	"math"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names
const (
	UsersTable    = "users"
	ProjectsTable = "projects"
	TasksTable    = "tasks"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "password_hash", Type: field.TypeString, Size: 255},
		{Name: "refresh_token", Type: field.TypeString, Nullable: true, Size: math.MaxInt32},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UsersTableSchema holds the schema information for the "users" table.
	UsersTableSchema = &schema.Table{
		Name:       UsersTable,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// ProjectsColumns holds the columns for the "projects" table. owner_id
	// is the caller identity issued by the authentication layer and carries
	// no foreign key.
	ProjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "owner_id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: math.MaxInt32},
		{Name: "is_archived", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProjectsTableSchema holds the schema information for the "projects" table.
	ProjectsTableSchema = &schema.Table{
		Name:       ProjectsTable,
		Columns:    ProjectsColumns,
		PrimaryKey: []*schema.Column{ProjectsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "project_owner_id_created_at",
				Unique:  false,
				Columns: []*schema.Column{ProjectsColumns[1], ProjectsColumns[5]},
			},
		},
	}

	// TasksColumns holds the columns for the "tasks" table.
	TasksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "project_id", Type: field.TypeUUID},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: math.MaxInt32},
		{Name: "due_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{
			dialect.Postgres: "date",
			dialect.SQLite:   "date",
		}},
		{Name: "priority", Type: field.TypeInt, Default: 1},
		{Name: "is_completed", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// TasksTableSchema holds the schema information for the "tasks" table.
	TasksTableSchema = &schema.Table{
		Name:       TasksTable,
		Columns:    TasksColumns,
		PrimaryKey: []*schema.Column{TasksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tasks_projects_tasks",
				Columns:    []*schema.Column{TasksColumns[1]},
				RefColumns: []*schema.Column{ProjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "task_project_id_is_completed",
				Unique:  false,
				Columns: []*schema.Column{TasksColumns[1], TasksColumns[6]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTableSchema,
		ProjectsTableSchema,
		TasksTableSchema,
	}
)

func init() {
	TasksTableSchema.ForeignKeys[0].RefTable = ProjectsTableSchema
}
