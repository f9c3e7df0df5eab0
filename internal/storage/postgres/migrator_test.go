package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) < 1 || migrations[0].version != 1 || migrations[0].name != "init" {
		t.Fatalf("unexpected embedded migrations: %+v", migrations)
	}
	if !strings.Contains(migrations[0].sql[directionUp], "order_products") {
		t.Fatal("init migration must create order_products")
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_more.up.sql":   {Data: []byte("CREATE TABLE b (id INT);")},
		"sql/migrations/0002_more.down.sql": {Data: []byte("DROP TABLE b;")},
		"sql/migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE a (id INT);")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE a;")},
	}

	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].String() != "0001_init" || migrations[1].String() != "0002_more" {
		t.Fatalf("unexpected order: %s, %s", migrations[0], migrations[1])
	}
}

func TestLoadMigrations_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		fsys fstest.MapFS
		want string
	}{
		"missing down": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("SELECT 1;")},
			},
			want: "both up and down",
		},
		"invalid name": {
			fsys: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			want: "invalid migration file name",
		},
		"empty body": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":   {Data: []byte("  \n")},
				"sql/migrations/0001_init.down.sql": {Data: []byte("SELECT 1;")},
			},
			want: "is empty",
		},
		"name mismatch": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":    {Data: []byte("SELECT 1;")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("SELECT 1;")},
			},
			want: "name mismatch",
		},
		"no files": {
			fsys: fstest.MapFS{},
			want: "no migration files",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadMigrations(tc.fsys)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestMigrationPlans(t *testing.T) {
	t.Parallel()

	all := []migration{{version: 1, name: "a"}, {version: 2, name: "b"}, {version: 3, name: "c"}}

	pending := pendingMigrations(all, []int64{1})
	if len(pending) != 2 || pending[0].version != 2 || pending[1].version != 3 {
		t.Fatalf("unexpected pending plan: %+v", pending)
	}

	rollback, err := rollbackPlan(all, []int64{1, 2})
	if err != nil {
		t.Fatalf("rollbackPlan failed: %v", err)
	}
	if len(rollback) != 2 || rollback[0].version != 2 || rollback[1].version != 1 {
		t.Fatalf("unexpected rollback plan: %+v", rollback)
	}

	if _, err := rollbackPlan(all, []int64{7}); err == nil {
		t.Fatal("expected error for unknown applied version")
	}
}
