// Package raseed provides an embedded Go client for the raseed receipt
// store: ingestion, wallet passes, and natural-language queries over
// Redis with the JSON and Search modules, without running the HTTP server.
//
//	client, _ := raseed.New(ctx,
//	    raseed.WithRedis("localhost:6379", ""),
//	    raseed.WithGenerator(gen),
//	)
//	defer client.Close()
//
//	rec, pass, _ := client.Receipts().Ingest(ctx, raseed.Receipt{
//	    UserID: "alice@example.com",
//	    Vendor: "Zomato",
//	    Total:  250,
//	})
//	answer, _ := client.Ask(ctx, "alice@example.com", "food expenses last month")
//
// Without a generator the query pipeline still works in degraded mode: it
// falls back to an owner-scoped filter and a count-style answer.
package raseed
