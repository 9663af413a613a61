// Package preflight checks that the directories a run reads from and writes
// to are usable before any file is touched.
//
// The CLI "segprep check" command runs RunAll and prints the results as a
// table; the "run" command calls RunAll first and stops on the first failure
// so a pipeline never dies half-way on a permissions problem.
package preflight
