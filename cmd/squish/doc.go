// Package main hosts the squish CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, then hands the
// file arguments to the optimization pipeline (`run`) or surfaces the
// supporting views: the resolved stage plan, classifier tags, external tool
// availability, stored run history, scratch directory hygiene and
// configuration scaffolding.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
