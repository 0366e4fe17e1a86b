// Package athenamcp provides AWS Athena access for AI agents through the
// Model Context Protocol (MCP).
//
// It exposes three tools — list_databases, query_athena, and
// describe_data_structure — backed by the asynchronous Athena execution
// model: submit the query, poll until a terminal state, fetch the result
// payload, and render it as a bounded pipe-delimited table. Failures are
// classified (configuration, credentials, service, query execution) and
// returned as text responses with corrective guidance appended, so one
// failed tool call never terminates the MCP session.
//
// # Library Usage
//
//	client, err := athenamcp.NewClient(ctx, athenamcp.ClientOptions{
//		Region:  "us-east-1",
//		Profile: "analytics",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine, err := athenamcp.New(client, athenamcp.Config{
//		Athena: athenamcp.AthenaConfig{
//			OutputLocation:  "s3://my-bucket/athena-results/",
//			DefaultDatabase: "analytics",
//		},
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Use directly
//	text, err := engine.ExecuteQuery(ctx, "SELECT * FROM events LIMIT 10", "analytics")
//
//	// Or register as MCP tools
//	router := athenamcp.NewRouter(engine, "", logger)
//	athenamcp.RegisterMCPTools(mcpServer, router)
//
// The poll loop has no ceiling by default — Athena resolves every query
// eventually. query.default_max_wait_seconds and query.max_wait_rules bound
// it per SQL pattern; a hit ceiling surfaces as a timeout error carrying the
// execution id, and the query keeps running server-side.
package athenamcp
