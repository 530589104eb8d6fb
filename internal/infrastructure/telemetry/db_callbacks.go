package telemetry

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// registerAround installs before and after callbacks on every gorm processor.
// after receives the elapsed time and the SQL verb of the statement.
func registerAround(db *gorm.DB, prefix string, after func(tx *gorm.DB, operation string, elapsed time.Duration)) error {
	startKey := prefix + ":start"
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startKey, time.Now())
	}
	finish := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			var elapsed time.Duration
			if v, ok := tx.InstanceGet(startKey); ok {
				if start, ok := v.(time.Time); ok {
					elapsed = time.Since(start)
				}
			}
			if operation == "" {
				operation = sqlVerb(tx.Statement.SQL.String())
			}
			after(tx, operation, elapsed)
		}
	}

	cb := db.Callback()
	steps := []struct {
		before error
		after  error
	}{
		{
			cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
			cb.Create().After("gorm:create").Register(prefix+":after_create", finish("INSERT")),
		},
		{
			cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
			cb.Query().After("gorm:query").Register(prefix+":after_query", finish("SELECT")),
		},
		{
			cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
			cb.Update().After("gorm:update").Register(prefix+":after_update", finish("UPDATE")),
		},
		{
			cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
			cb.Delete().After("gorm:delete").Register(prefix+":after_delete", finish("DELETE")),
		},
		{
			cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
			cb.Row().After("gorm:row").Register(prefix+":after_row", finish("")),
		},
		{
			cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
			cb.Raw().After("gorm:raw").Register(prefix+":after_raw", finish("")),
		},
	}
	for _, step := range steps {
		if step.before != nil {
			return step.before
		}
		if step.after != nil {
			return step.after
		}
	}
	return nil
}

func sqlVerb(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \n\t"); i > 0 {
		sql = sql[:i]
	}
	switch verb := strings.ToUpper(sql); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	}
	return "OTHER"
}
