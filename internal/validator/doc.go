// Package validator sequences one package validation from download through
// relocation and owns the single failure branch.
//
// A run walks a fixed series of states; the first step error short-circuits
// to the failure path. Cleanup and exactly one outcome notification happen on
// every run regardless of where it stopped, and no step ever retries; a
// fresh invocation is the only retry mechanism. The working directory is
// exclusively owned by the invocation that created it, enforced with a
// per-refid file lock.
package validator
