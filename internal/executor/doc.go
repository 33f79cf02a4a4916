// Package executor abstracts spawning of external collaborator processes
// (git, the Dart VM, the SDK updater) so services can be tested against
// fakes. The System implementation shells out via os/exec.
package executor
