package athenamcp

import (
	"context"
	"fmt"
)

// DescribeStructure lists the tables in a database by running
// SHOW TABLES IN <database> through the regular query path. Shares the
// output location validation and the poll state machine with ExecuteQuery.
func (a *AthenaMcp) DescribeStructure(ctx context.Context, database string) (string, error) {
	sql := fmt.Sprintf("SHOW TABLES IN %s", database)
	banner := fmt.Sprintf("Tables available in database '%s':", database)
	return a.runQuery(ctx, sql, database, banner)
}
