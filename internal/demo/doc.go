// Package demo holds the example components served by the CLI and a
// headless driver that runs them against an in-memory document.
package demo
