// Package view renders events onto a map through the MapSink abstraction.
// Scene is the shipped sink: it records the calls and serializes them as
// JSON for the browser's map widget to replay.
package view
