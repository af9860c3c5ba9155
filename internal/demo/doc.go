// Package demo serves a deterministic, in-memory repository over the same
// HTTP API a plakar UI server exposes.
//
// It backs the "plakview demo" command and the end-to-end tests: snapshots
// are generated from a seed, each with a small home directory containing
// text, markdown, source code, images, audio, video, PDF and binary files,
// plus a logs directory large enough to need several pages.
//
//	repo := demo.New("demo", 42, 1)
//	http.ListenAndServe("localhost:3010", repo.Handler())
package demo
