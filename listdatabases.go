package athenamcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
)

// Database is one entry from the configured data catalog.
type Database struct {
	Name        string
	Description string
}

// ListDatabases lists all databases in the configured catalog and returns
// them as a formatted bullet list. An empty catalog is a success state with
// a fixed message, not an error.
func (a *AthenaMcp) ListDatabases(ctx context.Context) (string, error) {
	startTime := time.Now()

	release, err := a.acquireSlot(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	var databases []Database
	paginator := athena.NewListDatabasesPaginator(a.client, &athena.ListDatabasesInput{
		CatalogName: aws.String(a.config.Athena.Catalog),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", a.logError(classifyAWSError("ListDatabases", err))
		}
		for _, db := range page.DatabaseList {
			databases = append(databases, Database{
				Name:        aws.ToString(db.Name),
				Description: aws.ToString(db.Description),
			})
		}
	}

	a.logger.Info().
		Dur("duration", time.Since(startTime)).
		Int("database_count", len(databases)).
		Msg("ListDatabases executed")

	if len(databases) == 0 {
		return "No databases found.", nil
	}
	return formatDatabaseList(databases), nil
}

// formatDatabaseList renders databases as a markdown bullet list with a
// count heading.
func formatDatabaseList(databases []Database) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Available databases (%d total):**\n\n", len(databases))
	for i, db := range databases {
		if i > 0 {
			sb.WriteString("\n")
		}
		if db.Description != "" {
			fmt.Fprintf(&sb, "- **%s** - %s", db.Name, db.Description)
		} else {
			fmt.Fprintf(&sb, "- **%s**", db.Name)
		}
	}
	return sb.String()
}
