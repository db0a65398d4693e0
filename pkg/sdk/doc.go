// Package searchd provides an embedded Go client for the searchd listing
// search service backed by Redis with the search and JSON modules.
//
// The client connects straight to the database and runs the same catalog,
// ingestion and retrieval services the HTTP API exposes. It is intended for
// seeders, migration jobs and tests that should not depend on a running
// API server.
//
//	client, _ := searchd.New(ctx, searchd.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	client.Categories().Ensure(ctx, searchd.CategoryInfo{
//	    Name: "Running Shoes",
//	    Slug: "running-shoes",
//	    Attributes: []searchd.AttributeInfo{
//	        {Key: "brand", Type: searchd.AttributeString, Options: []string{"Nike", "Asics"}},
//	        {Key: "size", Type: searchd.AttributeNumber},
//	    },
//	})
//	client.Listings().BatchUpsert(ctx, listings)
//	page, _ := client.Search(ctx, "nike under 150", searchd.InCategory("running-shoes"))
package searchd
