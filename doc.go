// Package gibbsgo is the model and graph-construction layer for a
// parallel, tree-structured blocked Gibbs sampler over discrete
// probabilistic graphical models.
//
// It turns an arbitrary collection of discrete log-domain factors into a
// pairwise Markov random field and carries the per-vertex bookkeeping
// that lets concurrent workers grow disjoint sampling trees over it. The
// numeric belief-propagation updates and the scheduler driving them live
// outside this module; they mutate the graph this module builds,
// checkpoints and reports on.
//
// # Quick Start
//
// Load an Alchemy-format model file and build its graph:
//
//	ctx := context.Background()
//	run, err := gibbsgo.Open(ctx, "model.alchemy",
//	    gibbsgo.WithCheckpointDir("./checkpoints"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer run.Close()
//
//	g := run.Graph() // the engine's working state
//
// Periodically checkpoint and export marginals:
//
//	key, _ := run.Checkpoint(ctx)
//	_ = run.SaveBeliefs(ctx, "beliefs.tsv")
//
// Resume from the newest checkpoint in a shared store:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("runs/"))
//	run, _ := gibbsgo.Open(ctx, "model.alchemy", gibbsgo.WithStore(s3Store))
//	_ = run.RestoreLatest(ctx)
//
// # Packages
//
// The domain packages are usable without the facade:
//
//   - factor: variables, canonical domains, assignments and log-domain
//     potential tables
//   - model: the factorized model and its reverse indices
//   - alchemy: the text model-file parser
//   - mrf: the pairwise graph, vertex/edge records and the tree-growth
//     state machine
//   - checkpoint: the binary checkpoint format and the sequencing manager
//   - report: analysis-facing text exports
//   - blobstore: local, in-memory, S3 and MinIO checkpoint storage
//   - resource: memory, background-worker and I/O budgets
package gibbsgo
