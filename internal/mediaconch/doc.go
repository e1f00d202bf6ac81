// Package mediaconch wraps the external bitstream conformance tool.
//
// Two detection strategies exist behind one Verdict contract: parsing the
// leading pass!/fail! token on stdout (the tool's policy-report CLI) or
// trusting the process exit code (simplified deployments). The strategy is
// selected explicitly in configuration rather than guessed from output.
package mediaconch
