// Package ragengine provides a Go client for the rag-insights-engine
// HTTP API.
//
//	client := ragengine.New("http://localhost:8080")
//
//	docs, _ := client.UploadDocs(ctx, map[string]io.Reader{
//	    "notes.txt": file,
//	})
//
//	result, _ := client.RunRAG(ctx, ragengine.RunRAGRequest{
//	    Query:  "What does the paper conclude?",
//	    DocIDs: []string{docs.Uploaded[0].DocID},
//	})
//
//	exp, _ := client.RunExperiment(ctx, ragengine.RunExperimentRequest{
//	    Query:      "What does the paper conclude?",
//	    DocIDs:     []string{docs.Uploaded[0].DocID},
//	    ChunkSizes: []int{256, 512, 1024},
//	})
//
// API errors map to the sentinel errors in this package; check them with
// errors.Is.
package ragengine
