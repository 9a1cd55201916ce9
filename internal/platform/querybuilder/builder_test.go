package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id").
		From("competitors").
		Where(Eq("name_long", "Portland Boat Club"), IsNull("designation")).
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM competitors WHERE name_long = $1 AND designation IS NULL LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "Portland Boat Club" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("races").
		Columns("race_num", "fingerprint").
		Values("12", "city_regatta_12").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO races (race_num, fingerprint) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "12" || args[1] != "city_regatta_12" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		Name         string  `db:"name"`
		Abbreviation *string `db:"abbreviation"`
		Ignored      string  `db:"-"`
		unexported   string
	}
	_ = row{}.unexported

	abbrev := "MV8"
	query, args, err := InsertModel("categories", row{Name: "Mens Varsity 8", Abbreviation: &abbrev}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO categories (name, abbreviation) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Mens Varsity 8" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderConflictSuffix(t *testing.T) {
	query, _, err := InsertInto("ingest_snapshots").
		Columns("source", "event_key").
		Values("clockcaster", "60").
		Suffix("ON CONFLICT (source, event_key) DO UPDATE SET event_key = EXCLUDED.event_key").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO ingest_snapshots (source, event_key) VALUES ($1, $2) " +
		"ON CONFLICT (source, event_key) DO UPDATE SET event_key = EXCLUDED.event_key"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("races").
		Set("race_num", "12").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE races SET race_num = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "12" || args[1] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
