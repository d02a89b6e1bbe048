// Package harness runs scripted console sessions for conformance testing.
//
// A scenario is a YAML file holding the lines typed into the console plus
// assertions about what it printed and what the object table holds at the
// end. Each scenario runs against a fresh file medium in a temporary
// directory, with sequential ids and a clock that steps one second per
// reading, so the same scenario always produces the same transcript.
//
// Input lines and identities may refer to generated ids as $1, $2, ...:
//
//	lines:
//	  - create State name="California"
//	  - show State $1
//	assertions:
//	  - type: attribute
//	    identity: State.$1
//	    attr: name
//	    value: California
//
// Transcripts can also be compared against golden files (see RunWithGolden).
package harness
